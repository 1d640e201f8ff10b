package dashboard

import (
	"strconv"

	"forecast-dashboard/internal/chart"

	"github.com/shopspring/decimal"
)

// Money formats v as a dollar amount rounded half away from zero to cents.
func Money(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// Price formats v to two decimals without a currency sign.
func Price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Percent formats v (already in percent) with an explicit sign.
func Percent(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}

// Round2 rounds v to two decimals.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func tone(v float64) string {
	switch {
	case v > 0:
		return "positive"
	case v < 0:
		return "negative"
	default:
		return ""
	}
}

func chartCards(v *ChartView) []Card {
	cards := []Card{}
	if n := len(v.History); n > 0 {
		last := v.History[n-1]
		change := 0.0
		if last.Open != 0 {
			change = (last.Close - last.Open) / last.Open * 100
		}
		cards = append(cards,
			Card{Label: "Last Close", Value: Money(last.Close)},
			Card{Label: "Interval Change", Value: Percent(change), Tone: tone(change)},
		)
	}
	if s := v.Forecast.Summary; s != nil {
		cards = append(cards,
			Card{Label: "Forecast End", Value: Money(s.EndPrice)},
			Card{Label: "Forecast Change", Value: Percent(s.DeltaPercent), Tone: tone(s.Delta)},
			Card{Label: "Forecast Points", Value: strconv.Itoa(s.Count)},
		)
	}
	return append(cards, statCards(v.Stats, v.Breaches)...)
}

func monitoringCards(v *MonitoringView) []Card {
	cards := []Card{
		{Label: "Active Alerts", Value: strconv.Itoa(len(v.Alerts)), Tone: warnIf(len(v.Alerts) > 0)},
		{Label: "Models Tracked", Value: strconv.Itoa(len(v.Performance))},
	}
	return append(cards, statCards(v.Stats, v.Breaches)...)
}

func portfolioCards(v *PortfolioView) []Card {
	p, perf := v.Portfolio, v.Performance
	return []Card{
		{Label: "Total Value", Value: Money(p.TotalValue)},
		{Label: "Cash", Value: Money(p.CashBalance)},
		{Label: "Return", Value: Percent(perf.TotalReturnPercent), Tone: tone(perf.TotalReturnPercent)},
		{Label: "Return ($)", Value: Money(perf.TotalReturnDollar), Tone: tone(perf.TotalReturnDollar)},
		{Label: "Holdings", Value: strconv.Itoa(len(p.Holdings))},
		{Label: "Trades", Value: strconv.Itoa(perf.NumberOfTrades)},
	}
}

// statCards renders error statistics. Missing statistics show as "n/a"
// rather than zero.
func statCards(st *chart.ErrorStatistics, breaches []chart.Breach) []Card {
	if st == nil {
		return []Card{
			{Label: "MAE", Value: "n/a"},
			{Label: "RMSE", Value: "n/a"},
			{Label: "MAPE", Value: "n/a"},
		}
	}
	flagged := map[string]bool{}
	for _, b := range breaches {
		flagged[b.AlertType] = true
	}

	mape := "n/a"
	if st.MAPEAvailable {
		mape = Price(st.MAPE) + "%"
	}
	return []Card{
		{Label: "MAE", Value: Price(st.MAE)},
		{Label: "RMSE", Value: Price(st.RMSE), Tone: warnIf(flagged["high_rmse"])},
		{Label: "MAPE", Value: mape, Tone: warnIf(flagged["high_mape"])},
		{Label: "Bias", Value: Price(st.Bias), Tone: warnIf(flagged["high_bias"])},
		{Label: "Max Error", Value: Price(st.MaxAbsError)},
		{Label: "Samples", Value: strconv.Itoa(st.TotalErrors)},
	}
}

func warnIf(cond bool) string {
	if cond {
		return "warning"
	}
	return ""
}

// Package demo supplies synthetic market data for when the forecasting
// service cannot be reached. Output is deterministic per symbol so demo charts
// stay put between refreshes; callers must flag it as demo data.
package demo

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"forecast-dashboard/internal/model"
)

// Provider generates stand-in data for the dashboard.
type Provider interface {
	History(symbol string, n int) []model.HistoricalPricePoint
	Forecast(symbol string, history []model.HistoricalPricePoint, horizon int) []model.ForecastPoint
	Errors(history []model.HistoricalPricePoint, forecasts []model.ForecastPoint) []model.PredictionErrorPoint
}

const (
	// confidenceMargin matches the 2% band the service puts around its forecasts.
	confidenceMargin = 0.02
	defaultVol       = 0.01
)

// RandomWalk is a Provider built on a seeded geometric random walk.
type RandomWalk struct {
	vol  float64
	now  func() time.Time
	step time.Duration
}

// NewRandomWalk returns a provider with hourly candles ending at the current
// hour. vol is the per-step volatility; zero selects 1%.
func NewRandomWalk(vol float64) *RandomWalk {
	if vol <= 0 {
		vol = defaultVol
	}
	return &RandomWalk{
		vol:  vol,
		now:  func() time.Time { return time.Now().UTC() },
		step: time.Hour,
	}
}

// WithClock pins the end of generated history, for tests.
func (w *RandomWalk) WithClock(now func() time.Time) *RandomWalk {
	w.now = now
	return w
}

func (w *RandomWalk) rng(symbol string, salt string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(strings.ToUpper(symbol)))
	h.Write([]byte(salt))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// History returns n hourly candles for symbol, oldest first.
func (w *RandomWalk) History(symbol string, n int) []model.HistoricalPricePoint {
	if n <= 0 {
		return []model.HistoricalPricePoint{}
	}
	symbol = strings.ToUpper(symbol)
	r := w.rng(symbol, "history")
	end := w.now().Truncate(w.step)
	price := 50 + r.Float64()*250

	points := make([]model.HistoricalPricePoint, 0, n)
	for i := 0; i < n; i++ {
		open := price
		price = math.Max(0.01, price*(1+r.NormFloat64()*w.vol))
		hi := math.Max(open, price) * (1 + r.Float64()*w.vol/2)
		lo := math.Min(open, price) * (1 - r.Float64()*w.vol/2)

		points = append(points, model.HistoricalPricePoint{
			ID:        symbol + "-demo-" + strconv.Itoa(i),
			Timestamp: model.NewTime(end.Add(-time.Duration(n-1-i) * w.step)),
			Open:      round2(open),
			High:      round2(hi),
			Low:       round2(lo),
			Close:     round2(price),
			Volume:    math.Round(1e5 + r.Float64()*9e5),
		})
	}
	return points
}

// Forecast continues history for horizon hours with a 2% confidence band.
func (w *RandomWalk) Forecast(symbol string, history []model.HistoricalPricePoint, horizon int) []model.ForecastPoint {
	if horizon <= 0 || len(history) == 0 {
		return []model.ForecastPoint{}
	}
	r := w.rng(symbol, "forecast")
	last := history[len(history)-1]
	drift := 0.0
	if first := history[0].Close; first > 0 && len(history) > 1 {
		drift = (last.Close/first - 1) / float64(len(history)-1)
	}

	issued := model.NewTime(w.now())
	price := last.Close
	points := make([]model.ForecastPoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		price = math.Max(0.01, price*(1+drift+r.NormFloat64()*w.vol/4))
		pred := round2(price)
		lo, hi := round2(pred*(1-confidenceMargin)), round2(pred*(1+confidenceMargin))
		points = append(points, model.ForecastPoint{
			ModelID:           "demo",
			ForecastTimestamp: issued,
			TargetTimestamp:   model.NewTime(last.Timestamp.Add(time.Duration(i) * w.step)),
			HorizonHours:      i,
			PredictedPrice:    pred,
			ConfidenceLower:   &lo,
			ConfidenceUpper:   &hi,
		})
	}
	return points
}

// Errors back-tests a naive forecast against history: each close is predicted
// by the previous close nudged towards the first forecast. Error is actual
// minus predicted.
func (w *RandomWalk) Errors(history []model.HistoricalPricePoint, forecasts []model.ForecastPoint) []model.PredictionErrorPoint {
	if len(history) < 2 {
		return []model.PredictionErrorPoint{}
	}
	bias := 0.0
	if len(forecasts) > 0 && history[len(history)-1].Close > 0 {
		bias = forecasts[0].PredictedPrice/history[len(history)-1].Close - 1
	}

	points := make([]model.PredictionErrorPoint, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		predicted := round2(history[i-1].Close * (1 + bias))
		actual := history[i].Close
		points = append(points, model.PredictionErrorPoint{
			Timestamp: history[i].Timestamp,
			Predicted: predicted,
			Actual:    actual,
			Error:     round2(actual - predicted),
		})
	}
	return points
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

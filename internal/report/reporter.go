// Package report writes a forecast accuracy report for one instrument: a
// plain-text summary, a JSON document and a CSV log of prediction errors.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"forecast-dashboard/internal/chart"
	"forecast-dashboard/internal/model"

	"github.com/rs/zerolog/log"
)

// Results is everything one report run collected and computed.
type Results struct {
	Symbol      string
	ModelID     string
	Horizon     int
	GeneratedAt time.Time
	Demo        bool

	History   []model.HistoricalPricePoint
	Forecasts []model.ForecastPoint
	Errors    []model.PredictionErrorPoint

	Scale    chart.Scale
	Forecast *chart.ForecastSummary
	Stats    *chart.ErrorStatistics
	Breaches []chart.Breach
}

// NewResults computes the scale, forecast summary, error statistics and
// threshold breaches for the fetched data.
func NewResults(symbol, modelID string, horizon int, history []model.HistoricalPricePoint,
	forecasts []model.ForecastPoint, errors []model.PredictionErrorPoint, opts chart.Options, th chart.Thresholds,
) *Results {
	r := &Results{
		Symbol:      symbol,
		ModelID:     modelID,
		Horizon:     horizon,
		GeneratedAt: time.Now().UTC(),
		History:     history,
		Forecasts:   forecasts,
		Errors:      errors,
		Scale:       chart.ComputeScale(history, forecasts, opts),
		Forecast:    chart.Summarize(forecasts),
	}
	r.Stats, _ = chart.ComputeErrorStatistics(errors)
	r.Breaches = chart.EvaluateThresholds(r.Stats, th)
	return r
}

// Reporter generates accuracy reports
type Reporter struct {
	results    *Results
	outputPath string
}

// NewReporter creates a new reporter
func NewReporter(results *Results, outputPath string) *Reporter {
	return &Reporter{
		results:    results,
		outputPath: outputPath,
	}
}

// GenerateReport writes every report format into the output directory.
func (r *Reporter) GenerateReport() error {
	if err := os.MkdirAll(r.outputPath, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := r.generateSummary(); err != nil {
		return err
	}

	if err := r.generateJSONReport(); err != nil {
		return err
	}

	if err := r.generateErrorLog(); err != nil {
		return err
	}

	return nil
}

// generateSummary generates a human-readable summary
func (r *Reporter) generateSummary() error {
	summaryPath := filepath.Join(r.outputPath, "report_summary.txt")
	file, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	r.writeSummary(file)

	log.Info().Str("file", summaryPath).Msg("Summary report generated")
	return nil
}

func (r *Reporter) writeSummary(w io.Writer) {
	res := r.results

	fmt.Fprintf(w, "FORECAST ACCURACY REPORT\n")
	fmt.Fprintf(w, "========================\n\n")
	fmt.Fprintf(w, "Symbol: %s\n", res.Symbol)
	fmt.Fprintf(w, "Model: %s\n", res.ModelID)
	fmt.Fprintf(w, "Horizon: %dh\n", res.Horizon)
	fmt.Fprintf(w, "Generated: %s\n", res.GeneratedAt.Format("2006-01-02 15:04:05"))
	if res.Demo {
		fmt.Fprintf(w, "NOTE: service unreachable, figures are from generated demo data\n")
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "PRICE HISTORY\n")
	fmt.Fprintf(w, "-------------\n")
	fmt.Fprintf(w, "Intervals: %d\n", len(res.History))
	if !res.Scale.DateRangeMin.IsZero() {
		fmt.Fprintf(w, "Period: %s to %s\n",
			res.Scale.DateRangeMin.Format("2006-01-02 15:04"),
			res.Scale.DateRangeMax.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "Price Range: %.2f - %.2f\n\n", res.Scale.MinPrice, res.Scale.MaxPrice)

	fmt.Fprintf(w, "FORECAST\n")
	fmt.Fprintf(w, "--------\n")
	if f := res.Forecast; f != nil {
		fmt.Fprintf(w, "Points: %d\n", f.Count)
		fmt.Fprintf(w, "Start: $%.2f\n", f.StartPrice)
		fmt.Fprintf(w, "End: $%.2f\n", f.EndPrice)
		fmt.Fprintf(w, "Change: $%.2f (%.2f%%, %s)\n\n", f.Delta, f.DeltaPercent, f.Direction)
	} else {
		fmt.Fprintf(w, "No forecast available\n\n")
	}

	fmt.Fprintf(w, "ERROR STATISTICS\n")
	fmt.Fprintf(w, "----------------\n")
	st := res.Stats
	if st == nil {
		fmt.Fprintf(w, "No prediction errors recorded\n")
		return
	}
	fmt.Fprintf(w, "Samples: %d\n", st.TotalErrors)
	fmt.Fprintf(w, "MAE: %.4f\n", st.MAE)
	fmt.Fprintf(w, "RMSE: %.4f\n", st.RMSE)
	if st.MAPEAvailable {
		fmt.Fprintf(w, "MAPE: %.2f%% (%d excluded)\n", st.MAPE, st.MAPEExcluded)
	} else {
		fmt.Fprintf(w, "MAPE: n/a\n")
	}
	fmt.Fprintf(w, "Bias: %.4f\n", st.Bias)
	fmt.Fprintf(w, "Median Abs Error: %.4f\n", st.MedianAbsError)
	fmt.Fprintf(w, "Max Abs Error: %.4f\n", st.MaxAbsError)
	fmt.Fprintf(w, "Min Abs Error: %.4f\n", st.MinAbsError)
	fmt.Fprintf(w, "Std Dev Abs Error: %.4f\n", st.StdDevAbsError)

	if len(res.Breaches) > 0 {
		fmt.Fprintf(w, "\nTHRESHOLD BREACHES\n")
		fmt.Fprintf(w, "------------------\n")
		for _, b := range res.Breaches {
			fmt.Fprintf(w, "[%s] %s\n", b.Severity, b.Message)
		}
	}

	if daily := r.calculateDailyErrors(); len(daily) > 0 {
		fmt.Fprintf(w, "\nERRORS BY DAY\n")
		fmt.Fprintf(w, "-------------\n")
		for _, d := range daily {
			fmt.Fprintf(w, "%s: %d samples, MAE %.4f, bias %.4f\n",
				d.Date.Format("2006-01-02"), d.Samples, d.MAE, d.Bias)
		}
	}
}

// generateJSONReport generates a JSON report with all data
func (r *Reporter) generateJSONReport() error {
	jsonPath := filepath.Join(r.outputPath, "report.json")
	res := r.results

	report := map[string]interface{}{
		"summary": map[string]interface{}{
			"symbol":       res.Symbol,
			"model_id":     res.ModelID,
			"horizon":      res.Horizon,
			"demo":         res.Demo,
			"history_size": len(res.History),
			"scale":        res.Scale,
			"forecast":     res.Forecast,
		},
		"statistics":   res.Stats,
		"breaches":     res.Breaches,
		"daily":        r.calculateDailyErrors(),
		"forecasts":    res.Forecasts,
		"errors":       res.Errors,
		"generated_at": res.GeneratedAt,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}

	log.Info().Str("file", jsonPath).Msg("JSON report generated")
	return nil
}

// generateErrorLog generates a CSV log of every prediction error
func (r *Reporter) generateErrorLog() error {
	csvPath := filepath.Join(r.outputPath, "errors.csv")
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Timestamp", "Predicted", "Actual", "Error", "Abs Error", "Pct Error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, e := range r.results.Errors {
		pct := ""
		if e.Actual != 0 {
			pct = fmt.Sprintf("%.2f", math.Abs(e.Error)/math.Abs(e.Actual)*100)
		}
		record := []string{
			e.Timestamp.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.2f", e.Predicted),
			fmt.Sprintf("%.2f", e.Actual),
			fmt.Sprintf("%.4f", e.Error),
			fmt.Sprintf("%.4f", math.Abs(e.Error)),
			pct,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}

	log.Info().Str("file", csvPath).Int("rows", len(r.results.Errors)).Msg("Error log generated")
	return nil
}

// DailyErrors aggregates prediction errors for one calendar day (UTC).
type DailyErrors struct {
	Date    time.Time `json:"date"`
	Samples int       `json:"samples"`
	MAE     float64   `json:"mae"`
	Bias    float64   `json:"bias"`
}

// calculateDailyErrors groups errors by day in date order
func (r *Reporter) calculateDailyErrors() []DailyErrors {
	byDay := make(map[string][]model.PredictionErrorPoint)
	for _, e := range r.results.Errors {
		if e.Timestamp.IsZero() {
			continue
		}
		day := e.Timestamp.UTC().Format("2006-01-02")
		byDay[day] = append(byDay[day], e)
	}

	var dates []string
	for date := range byDay {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]DailyErrors, 0, len(dates))
	for _, dateStr := range dates {
		st, ok := chart.ComputeErrorStatistics(byDay[dateStr])
		if !ok {
			continue
		}
		date, _ := time.Parse("2006-01-02", dateStr)
		out = append(out, DailyErrors{Date: date, Samples: st.TotalErrors, MAE: st.MAE, Bias: st.Bias})
	}
	return out
}

// PrintSummary prints a summary to console
func (r *Reporter) PrintSummary() {
	res := r.results
	fmt.Println("\n=== FORECAST REPORT ===")
	fmt.Printf("Symbol: %s  Model: %s  Horizon: %dh\n", res.Symbol, res.ModelID, res.Horizon)
	if f := res.Forecast; f != nil {
		fmt.Printf("Forecast: $%.2f -> $%.2f (%.2f%%)\n", f.StartPrice, f.EndPrice, f.DeltaPercent)
	}
	if st := res.Stats; st != nil {
		mape := "n/a"
		if st.MAPEAvailable {
			mape = strconv.FormatFloat(st.MAPE, 'f', 2, 64) + "%"
		}
		fmt.Printf("Samples: %d  MAE: %.4f  RMSE: %.4f  MAPE: %s  Bias: %.4f\n",
			st.TotalErrors, st.MAE, st.RMSE, mape, st.Bias)
	} else {
		fmt.Println("No prediction errors recorded")
	}
	for _, b := range res.Breaches {
		fmt.Printf("! %s\n", b.Message)
	}
	fmt.Println("=======================")
}


package chart

import (
	"math"
	"sort"

	"forecast-dashboard/internal/model"
)

// ErrorStatistics summarises prediction errors. MAE and AvgAbsError are the
// same number exposed under both names the service uses.
type ErrorStatistics struct {
	TotalErrors    int     `json:"total_errors"`
	AvgAbsError    float64 `json:"avg_abs_error"`
	MAE            float64 `json:"mae"`
	MaxAbsError    float64 `json:"max_abs_error"`
	MinAbsError    float64 `json:"min_abs_error"`
	MedianAbsError float64 `json:"median_abs_error"`
	StdDevAbsError float64 `json:"std_dev_abs_error"`
	RMSE           float64 `json:"rmse"`
	MAPE           float64 `json:"mape"`
	MAPEAvailable  bool    `json:"mape_available"`
	// MAPEExcluded counts points left out of MAPE because actual was zero or
	// not finite.
	MAPEExcluded int     `json:"mape_excluded"`
	Bias         float64 `json:"bias"`
}

// ComputeErrorStatistics skips points whose error is not finite. It reports
// false when nothing is left, since zero would read as a perfect model.
func ComputeErrorStatistics(points []model.PredictionErrorPoint) (*ErrorStatistics, bool) {
	var (
		n                  int
		sumAbs             float64
		sumSq, sumErr      float64
		maxAbs             float64
		minAbs             = math.Inf(1)
		sumPct             float64
		pctCount, excluded int
	)
	abs := make([]float64, 0, len(points))

	for _, p := range points {
		if isBad(p.Error) {
			continue
		}
		a := math.Abs(p.Error)
		n++
		sumAbs += a
		sumSq += p.Error * p.Error
		sumErr += p.Error
		maxAbs = math.Max(maxAbs, a)
		minAbs = math.Min(minAbs, a)
		abs = append(abs, a)

		if p.Actual == 0 || isBad(p.Actual) {
			excluded++
			continue
		}
		sumPct += a / math.Abs(p.Actual)
		pctCount++
	}

	if n == 0 {
		return nil, false
	}

	count := float64(n)
	mean := sumAbs / count
	st := &ErrorStatistics{
		TotalErrors:    n,
		AvgAbsError:    mean,
		MAE:            mean,
		MaxAbsError:    maxAbs,
		MinAbsError:    minAbs,
		MedianAbsError: median(abs),
		RMSE:           math.Sqrt(sumSq / count),
		Bias:           sumErr / count,
		MAPEExcluded:   excluded,
	}
	var sumDev float64
	for _, a := range abs {
		sumDev += (a - mean) * (a - mean)
	}
	st.StdDevAbsError = math.Sqrt(sumDev / count)
	if pctCount > 0 {
		st.MAPE = sumPct / float64(pctCount) * 100
		st.MAPEAvailable = true
	}
	return st, true
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}

package chart

import (
	"fmt"
	"math"
)

// Thresholds at which locally computed statistics are flagged. They match
// the limits the monitoring service alerts on.
type Thresholds struct {
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"`
	Bias float64 `json:"bias"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{RMSE: 10, MAPE: 15, Bias: 5}
}

// Breach is a statistic over its threshold.
type Breach struct {
	AlertType string  `json:"alert_type"`
	Severity  string  `json:"severity"`
	Threshold float64 `json:"threshold"`
	Value     float64 `json:"value"`
	Message   string  `json:"message"`
}

// EvaluateThresholds lists every breach in st. A nil st has none.
func EvaluateThresholds(st *ErrorStatistics, th Thresholds) []Breach {
	var out []Breach
	if st == nil {
		return out
	}
	if st.RMSE > th.RMSE {
		out = append(out, breach("high_rmse", "RMSE", th.RMSE, st.RMSE))
	}
	if st.MAPEAvailable && st.MAPE > th.MAPE {
		out = append(out, breach("high_mape", "MAPE", th.MAPE, st.MAPE))
	}
	if math.Abs(st.Bias) > th.Bias {
		out = append(out, breach("high_bias", "bias", th.Bias, st.Bias))
	}
	return out
}

func breach(kind, label string, threshold, value float64) Breach {
	return Breach{
		AlertType: kind,
		Severity:  "warning",
		Threshold: threshold,
		Value:     value,
		Message:   fmt.Sprintf("%s %.2f exceeds threshold %.2f", label, value, threshold),
	}
}

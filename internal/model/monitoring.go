package model

// AccuracyMetrics mirrors the metric block the service records per evaluation.
type AccuracyMetrics struct {
	MAE                 float64 `json:"mae"`
	RMSE                float64 `json:"rmse"`
	MAPE                float64 `json:"mape"`
	Bias                float64 `json:"bias"`
	StdError            float64 `json:"std_error"`
	MaxError            float64 `json:"max_error"`
	MinError            float64 `json:"min_error"`
	ErrorRange          float64 `json:"error_range"`
	MedianAbsoluteError float64 `json:"median_absolute_error"`
	RSquared            float64 `json:"r_squared"`
	DirectionAccuracy   float64 `json:"direction_accuracy"`
	TheilsU             float64 `json:"theils_u"`
}

// Performance trends reported by the service.
const (
	TrendImproving        = "improving"
	TrendStable           = "stable"
	TrendDegrading        = "degrading"
	TrendInsufficientData = "insufficient_data"
	TrendUnknown          = "unknown"
)

// ModelPerformance is the per-model-type entry of a performance summary.
type ModelPerformance struct {
	RecentMetrics    AccuracyMetrics `json:"recent_metrics"`
	TotalEvaluations int             `json:"total_evaluations"`
	LastEvaluation   Time            `json:"last_evaluation"`
	Trend            string          `json:"trend"`
}

// PerformanceSummary maps model type to its performance entry.
type PerformanceSummary map[string]ModelPerformance

// Alert is an accuracy alert raised by the monitoring system.
type Alert struct {
	ID          string  `json:"id"`
	Symbol      string  `json:"symbol"`
	ModelType   string  `json:"model_type"`
	AlertType   string  `json:"alert_type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"`
	Threshold   float64 `json:"threshold"`
	ActualValue float64 `json:"actual_value"`
	Timestamp   Time    `json:"timestamp"`
	IsResolved  bool    `json:"is_resolved"`
	ResolvedAt  Time    `json:"resolved_at"`
}

// ResolveResult is returned when an alert is resolved.
type ResolveResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// MetricsRecord is one stored evaluation of a model.
type MetricsRecord struct {
	Symbol            string          `json:"symbol"`
	ModelType         string          `json:"model_type"`
	Timestamp         Time            `json:"timestamp"`
	ForecastTimestamp Time            `json:"forecast_timestamp"`
	Metrics           AccuracyMetrics `json:"metrics"`
	SampleSize        int             `json:"sample_size"`
}

// TrainingRange describes the data a model version was trained on.
type TrainingRange struct {
	Symbol     string `json:"symbol"`
	StartDate  Time   `json:"start_date"`
	EndDate    Time   `json:"end_date"`
	DataPoints int    `json:"data_points"`
}

// ModelVersion is a stored trained model.
type ModelVersion struct {
	VersionID          string                 `json:"version_id"`
	ModelType          string                 `json:"model_type"`
	Symbol             string                 `json:"symbol"`
	ModelParams        map[string]interface{} `json:"model_params,omitempty"`
	PerformanceMetrics map[string]float64     `json:"performance_metrics,omitempty"`
	TrainingDataRange  TrainingRange          `json:"training_data_range"`
	CreatedAt          Time                   `json:"created_at"`
	IsActive           bool                   `json:"is_active"`
}

// RetrainRequest asks the service to retrain a model for a symbol.
type RetrainRequest struct {
	Symbol    string `json:"symbol"`
	ModelType string `json:"model_type"`
}

// RetrainResult is the outcome of a retrain.
type RetrainResult struct {
	Retrained bool   `json:"retrained"`
	Message   string `json:"message"`
	VersionID string `json:"version_id"`
	Timestamp Time   `json:"timestamp"`
}

// IncrementalUpdateResult is the outcome of an incremental model update.
type IncrementalUpdateResult struct {
	Updated    bool   `json:"updated"`
	Message    string `json:"message"`
	OldVersion string `json:"old_version"`
	NewVersion string `json:"new_version"`
}

// PerformanceHistoryEntry is one point of a model's performance history.
type PerformanceHistoryEntry struct {
	Symbol    string             `json:"symbol"`
	ModelType string             `json:"model_type"`
	Timestamp Time               `json:"timestamp"`
	Metrics   map[string]float64 `json:"metrics"`
}

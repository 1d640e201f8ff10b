// Package model holds the data shapes exchanged with the forecasting service
// and passed between the data client, the chart geometry and the dashboard views.
package model

// HistoricalPricePoint is one OHLCV interval for an instrument.
type HistoricalPricePoint struct {
	ID           string  `json:"id,omitempty"`
	InstrumentID string  `json:"instrument_id,omitempty"`
	Timestamp    Time    `json:"timestamp"`
	Open         float64 `json:"open"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	Close        float64 `json:"close"`
	Volume       float64 `json:"volume"`
}

// ForecastPoint is a single model prediction for a future timestamp.
type ForecastPoint struct {
	ID                string   `json:"id,omitempty"`
	InstrumentID      string   `json:"instrument_id,omitempty"`
	ModelID           string   `json:"model_id,omitempty"`
	ForecastTimestamp Time     `json:"forecast_timestamp"`
	TargetTimestamp   Time     `json:"target_timestamp"`
	HorizonHours      int      `json:"horizon_hours,omitempty"`
	PredictedPrice    float64  `json:"predicted_price"`
	ConfidenceLower   *float64 `json:"confidence_lower,omitempty"`
	ConfidenceUpper   *float64 `json:"confidence_upper,omitempty"`
	ActualPrice       *float64 `json:"actual_price,omitempty"`
}

// HasBand reports whether both confidence bounds are present.
func (f ForecastPoint) HasBand() bool {
	return f.ConfidenceLower != nil && f.ConfidenceUpper != nil
}

// PredictionErrorPoint pairs a prediction with the realised value.
// Error is Actual - Predicted.
type PredictionErrorPoint struct {
	Timestamp Time    `json:"timestamp"`
	Predicted float64 `json:"predicted"`
	Actual    float64 `json:"actual"`
	Error     float64 `json:"error"`
}

// Instrument is a tradable symbol known to the service.
type Instrument struct {
	ID       string `json:"id,omitempty"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Type     string `json:"type,omitempty"`
	Exchange string `json:"exchange,omitempty"`
	Currency string `json:"currency,omitempty"`
	IsActive bool   `json:"is_active"`
}

// ModelScores are the headline accuracy numbers attached to a model listing.
type ModelScores struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	MAPE float64 `json:"mape"`
}

// ForecastModel describes a forecasting model offered by the service.
type ForecastModel struct {
	ID                 string                 `json:"id"`
	Name               string                 `json:"name"`
	Type               string                 `json:"type,omitempty"`
	Description        string                 `json:"description,omitempty"`
	Hyperparameters    map[string]interface{} `json:"hyperparameters,omitempty"`
	PerformanceMetrics ModelScores            `json:"performance_metrics"`
	IsActive           bool                   `json:"is_active"`
	CreatedAt          Time                   `json:"created_at"`
	UpdatedAt          Time                   `json:"updated_at"`
}

// ForecastRequest is the body of a forecast generation call.
// Horizon is expressed in hours.
type ForecastRequest struct {
	Symbol  string `json:"symbol"`
	Horizon int    `json:"horizon"`
	ModelID string `json:"model_id"`
}

// AdaptiveForecast is the response of the adaptive forecast endpoint.
type AdaptiveForecast struct {
	Forecasts      []ForecastPoint `json:"forecasts"`
	ModelUsed      string          `json:"model_used"`
	AdaptiveSystem bool            `json:"adaptive_system"`
}

// HealthStatus is the service health payload.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp Time   `json:"timestamp"`
	Service   string `json:"service"`
}

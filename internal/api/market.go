package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"forecast-dashboard/internal/model"

	"github.com/rs/zerolog/log"
)

// Instruments lists the instruments known to the service.
func (c *Client) Instruments(ctx context.Context) ([]model.Instrument, error) {
	const endpoint = "instruments"
	body, err := c.get(ctx, endpoint, "/instruments", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Instrument](c, endpoint, body), nil
}

// HistoricalData fetches the price history for symbol, sorted by timestamp ascending.
func (c *Client) HistoricalData(ctx context.Context, symbol string) ([]model.HistoricalPricePoint, error) {
	const endpoint = "historical-data"
	body, err := c.get(ctx, endpoint, "/historical-data/"+url.PathEscape(symbol), nil)
	if err != nil {
		return nil, err
	}

	points := decodeList[model.HistoricalPricePoint](c, endpoint, body)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp.Time)
	})
	return points, nil
}

// Models lists the available forecasting models.
func (c *Client) Models(ctx context.Context) ([]model.ForecastModel, error) {
	const endpoint = "models"
	body, err := c.get(ctx, endpoint, "/models", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.ForecastModel](c, endpoint, body), nil
}

// GenerateForecast asks the service for a forecast of req.Horizon hours.
func (c *Client) GenerateForecast(ctx context.Context, req model.ForecastRequest) ([]model.ForecastPoint, error) {
	const endpoint = "forecast"
	if req.Symbol == "" {
		return nil, fmt.Errorf("generate forecast: symbol is required")
	}

	body, err := c.post(ctx, endpoint, "/forecast", req)
	if err != nil {
		return nil, err
	}

	points := decodeList[model.ForecastPoint](c, endpoint, body)
	log.Info().
		Str("symbol", req.Symbol).
		Str("model", req.ModelID).
		Int("horizon", req.Horizon).
		Int("points", len(points)).
		Msg("forecast generated")
	return points, nil
}

// AdaptiveForecast runs the service's adaptive ensemble for symbol.
func (c *Client) AdaptiveForecast(ctx context.Context, symbol string, horizon int) (model.AdaptiveForecast, error) {
	const endpoint = "adaptive-forecast"
	payload := map[string]interface{}{"symbol": symbol, "horizon": horizon}

	body, err := c.post(ctx, endpoint, "/model/adaptive-forecast", payload)
	if err != nil {
		return model.AdaptiveForecast{}, err
	}

	var envelope struct {
		Forecasts      json.RawMessage `json:"forecasts"`
		ModelUsed      string          `json:"model_used"`
		AdaptiveSystem bool            `json:"adaptive_system"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.recorder.PayloadNormalized(endpoint)
		return model.AdaptiveForecast{Forecasts: []model.ForecastPoint{}}, nil
	}

	return model.AdaptiveForecast{
		Forecasts:      decodeList[model.ForecastPoint](c, endpoint, envelope.Forecasts),
		ModelUsed:      envelope.ModelUsed,
		AdaptiveSystem: envelope.AdaptiveSystem,
	}, nil
}

// Health checks the service. It never fails: any error reports unhealthy.
func (c *Client) Health(ctx context.Context) (model.HealthStatus, bool) {
	const endpoint = "health"
	body, err := c.get(ctx, endpoint, "/health", nil)
	if err != nil {
		c.recorder.FailureSwallowed(endpoint)
		log.Warn().Err(err).Msg("health check failed")
		return model.HealthStatus{}, false
	}

	var status model.HealthStatus
	if err := json.Unmarshal(body, &status); err != nil {
		c.recorder.PayloadNormalized(endpoint)
		return model.HealthStatus{}, false
	}
	return status, status.Status == "healthy" || status.Status == "ok"
}

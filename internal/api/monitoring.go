package api

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"

	"forecast-dashboard/internal/model"

	"github.com/rs/zerolog/log"
)

// PredictionErrors fetches the prediction error history for symbol.
// This endpoint is soft: any failure yields an empty slice and no error.
// Points are returned oldest first.
func (c *Client) PredictionErrors(ctx context.Context, symbol string) []model.PredictionErrorPoint {
	const endpoint = "monitoring-errors"
	body, err := c.get(ctx, endpoint, "/monitoring/errors/"+url.PathEscape(symbol), nil)
	if err != nil {
		c.recorder.FailureSwallowed(endpoint)
		log.Warn().Err(err).Str("symbol", symbol).Msg("prediction error history unavailable")
		return []model.PredictionErrorPoint{}
	}

	raw, ok := rawList(body)
	if !ok {
		c.recorder.PayloadNormalized(endpoint)
		return []model.PredictionErrorPoint{}
	}

	points := make([]model.PredictionErrorPoint, 0, len(raw))
	for _, item := range raw {
		if p, ok := coerceErrorPoint(item); ok {
			points = append(points, p)
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp.Time)
	})
	return points
}

// MonitoringPerformance fetches the per-model performance summary for symbol.
func (c *Client) MonitoringPerformance(ctx context.Context, symbol string) (model.PerformanceSummary, error) {
	summary := model.PerformanceSummary{}
	if err := c.getJSON(ctx, "monitoring-performance", "/monitoring/performance/"+url.PathEscape(symbol), &summary); err != nil {
		return model.PerformanceSummary{}, err
	}
	return summary, nil
}

// Alerts lists unresolved accuracy alerts.
func (c *Client) Alerts(ctx context.Context) ([]model.Alert, error) {
	const endpoint = "monitoring-alerts"
	body, err := c.get(ctx, endpoint, "/monitoring/alerts", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Alert](c, endpoint, body), nil
}

// ResolveAlert marks the alert as resolved.
func (c *Client) ResolveAlert(ctx context.Context, alertID string) (model.ResolveResult, error) {
	var res model.ResolveResult
	err := c.postJSON(ctx, "monitoring-resolve", "/monitoring/alerts/"+url.PathEscape(alertID)+"/resolve", nil, &res)
	return res, err
}

// MetricsHistory lists stored evaluations for symbol, optionally filtered by model type.
func (c *Client) MetricsHistory(ctx context.Context, symbol, modelType string) ([]model.MetricsRecord, error) {
	const endpoint = "monitoring-metrics"
	var query map[string]string
	if modelType != "" {
		query = map[string]string{"model_type": modelType}
	}

	body, err := c.get(ctx, endpoint, "/monitoring/metrics/"+url.PathEscape(symbol), query)
	if err != nil {
		return nil, err
	}
	return decodeList[model.MetricsRecord](c, endpoint, body), nil
}

// PerformanceHistory fetches the performance history per model type for symbol.
func (c *Client) PerformanceHistory(ctx context.Context, symbol string) (map[string][]model.PerformanceHistoryEntry, error) {
	const endpoint = "performance-history"
	body, err := c.get(ctx, endpoint, "/model/performance-history/"+url.PathEscape(symbol), nil)
	if err != nil {
		return nil, err
	}

	history := map[string][]model.PerformanceHistoryEntry{}
	var byType map[string]json.RawMessage
	if err := json.Unmarshal(body, &byType); err != nil {
		c.recorder.PayloadNormalized(endpoint)
		return history, nil
	}
	for modelType, raw := range byType {
		history[modelType] = decodeList[model.PerformanceHistoryEntry](c, endpoint, raw)
	}
	return history, nil
}

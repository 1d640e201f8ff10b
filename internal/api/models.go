package api

import (
	"context"
	"net/url"

	"forecast-dashboard/internal/model"

	"github.com/rs/zerolog/log"
)

// Retrain triggers a full retrain of req.ModelType for req.Symbol.
func (c *Client) Retrain(ctx context.Context, req model.RetrainRequest) (model.RetrainResult, error) {
	var res model.RetrainResult
	if err := c.postJSON(ctx, "model-retrain", "/model/retrain", req, &res); err != nil {
		return model.RetrainResult{}, err
	}
	log.Info().
		Str("symbol", req.Symbol).
		Str("model_type", req.ModelType).
		Str("version", res.VersionID).
		Msg("model retrained")
	return res, nil
}

// IncrementalUpdate fine-tunes the latest model version with recent data.
func (c *Client) IncrementalUpdate(ctx context.Context, req model.RetrainRequest) (model.IncrementalUpdateResult, error) {
	var res model.IncrementalUpdateResult
	if err := c.postJSON(ctx, "model-incremental-update", "/model/incremental-update", req, &res); err != nil {
		return model.IncrementalUpdateResult{}, err
	}
	return res, nil
}

// ModelVersions lists stored model versions for symbol, newest first.
func (c *Client) ModelVersions(ctx context.Context, symbol string) ([]model.ModelVersion, error) {
	const endpoint = "model-versions"
	body, err := c.get(ctx, endpoint, "/model/versions/"+url.PathEscape(symbol), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.ModelVersion](c, endpoint, body), nil
}

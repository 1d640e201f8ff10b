package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"forecast-dashboard/internal/model"
)

// CreatePortfolio creates or resets the portfolio for req.UserID.
func (c *Client) CreatePortfolio(ctx context.Context, req model.CreatePortfolioRequest) (model.Portfolio, error) {
	var p model.Portfolio
	err := c.postJSON(ctx, "portfolio-create", "/portfolio/create", req, &p)
	return withHoldings(p), err
}

// Portfolio fetches the current portfolio of userID.
func (c *Client) Portfolio(ctx context.Context, userID string) (model.Portfolio, error) {
	var p model.Portfolio
	err := c.getJSON(ctx, "portfolio", "/portfolio/"+url.PathEscape(userID), &p)
	return withHoldings(p), err
}

// Trade executes a buy or sell against the simulated portfolio.
func (c *Client) Trade(ctx context.Context, req model.TradeRequest) (model.TradeResult, error) {
	if req.Action != model.ActionBuy && req.Action != model.ActionSell {
		return model.TradeResult{}, fmt.Errorf("trade: invalid action %q", req.Action)
	}

	var res model.TradeResult
	if err := c.postJSON(ctx, "portfolio-trade", "/portfolio/trade", req, &res); err != nil {
		return model.TradeResult{}, err
	}
	if res.NewHoldings == nil {
		res.NewHoldings = map[string]float64{}
	}
	return res, nil
}

// PortfolioPerformance fetches return metrics for userID.
func (c *Client) PortfolioPerformance(ctx context.Context, userID string) (model.PortfolioPerformance, error) {
	var perf model.PortfolioPerformance
	err := c.getJSON(ctx, "portfolio-performance", "/portfolio/performance/"+url.PathEscape(userID), &perf)
	return perf, err
}

func withHoldings(p model.Portfolio) model.Portfolio {
	if p.Holdings == nil {
		p.Holdings = map[string]float64{}
	}
	return p
}

// getJSON decodes an object response into dest. A body that is not a
// decodable object leaves dest at its zero value.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, dest interface{}) error {
	body, err := c.get(ctx, endpoint, path, nil)
	if err != nil {
		return err
	}
	c.decodeObject(endpoint, body, dest)
	return nil
}

func (c *Client) postJSON(ctx context.Context, endpoint, path string, payload, dest interface{}) error {
	body, err := c.post(ctx, endpoint, path, payload)
	if err != nil {
		return err
	}
	c.decodeObject(endpoint, body, dest)
	return nil
}

func (c *Client) decodeObject(endpoint string, body []byte, dest interface{}) {
	if err := json.Unmarshal(body, dest); err != nil {
		c.recorder.PayloadNormalized(endpoint)
	}
}

// Package api is the typed client for the forecasting service.
//
// Endpoints that drive primary dashboard state are strict and return an
// *Error on transport failure or non-2xx status. The prediction error history
// and the health check are soft: failures degrade to an empty or false result
// so optional panels never take the dashboard down. Every collection endpoint
// returns a non-nil slice, even for malformed payloads.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"forecast-dashboard/internal/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultTimeout = 10 * time.Second

// Recorder receives per-request observations.
type Recorder interface {
	ObserveRequest(endpoint, outcome string, elapsed time.Duration)
	PayloadNormalized(endpoint string)
	FailureSwallowed(endpoint string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(string, string, time.Duration) {}
func (nopRecorder) PayloadNormalized(string)                     {}
func (nopRecorder) FailureSwallowed(string)                      {}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the transport timeout for every request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.rest.SetTimeout(timeout)
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.rest.SetHeader("User-Agent", ua)
	}
}

// Client talks to the forecasting service.
type Client struct {
	base     string
	rest     *resty.Client
	recorder Recorder
}

// New creates a client for the service at base, e.g. "http://localhost:5000".
func New(base string, opts ...Option) *Client {
	r := resty.New()
	r.SetTimeout(defaultTimeout)
	r.SetHeader("Accept", "application/json")

	c := &Client{
		base:     strings.TrimRight(base, "/"),
		rest:     r,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service origin.
func (c *Client) BaseURL() string {
	return c.base
}

// call issues one request and returns the raw body of a 2xx answer.
func (c *Client) call(ctx context.Context, endpoint, method, path string, body interface{}, query map[string]string) ([]byte, error) {
	start := time.Now()
	url := c.base + path

	req := c.rest.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		c.recorder.ObserveRequest(endpoint, metrics.OutcomeFailed, time.Since(start))
		return nil, &Error{Op: endpoint, Method: method, URL: url, Err: err}
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		c.recorder.ObserveRequest(endpoint, metrics.OutcomeHTTP, time.Since(start))
		return nil, &Error{
			Op:         endpoint,
			Method:     method,
			URL:        url,
			StatusCode: status,
			Message:    errorMessage(resp.Body()),
		}
	}

	c.recorder.ObserveRequest(endpoint, metrics.OutcomeOK, time.Since(start))
	log.Debug().
		Str("endpoint", endpoint).
		Int("status", status).
		Dur("elapsed", time.Since(start)).
		Msg("api request completed")
	return resp.Body(), nil
}

// get is call for GET without body.
func (c *Client) get(ctx context.Context, endpoint, path string, query map[string]string) ([]byte, error) {
	return c.call(ctx, endpoint, http.MethodGet, path, nil, query)
}

// post is call for POST with a JSON body.
func (c *Client) post(ctx context.Context, endpoint, path string, body interface{}) ([]byte, error) {
	if body == nil {
		body = struct{}{}
	}
	return c.call(ctx, endpoint, http.MethodPost, path, body, nil)
}

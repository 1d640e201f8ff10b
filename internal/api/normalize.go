package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"forecast-dashboard/internal/model"

	"github.com/rs/zerolog/log"
)

// decodeList decodes a JSON array of T. A payload that is not an array yields
// an empty slice; elements that fail to decode are skipped.
func decodeList[T any](c *Client, endpoint string, data []byte) []T {
	raw, ok := rawList(data)
	if !ok {
		log.Debug().Str("endpoint", endpoint).Msg("non-array payload normalized to empty list")
		c.recorder.PayloadNormalized(endpoint)
		return []T{}
	}

	out := make([]T, 0, len(raw))
	skipped := 0
	for _, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	if skipped > 0 {
		log.Debug().Str("endpoint", endpoint).Int("skipped", skipped).Msg("dropped malformed list elements")
	}
	return out
}

// rawList splits an array payload. The second result is false when the
// payload is not a JSON array.
func rawList(data []byte) ([]json.RawMessage, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, false
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	return raw, true
}

// coerceErrorPoint maps one error-history element onto the canonical
// {predicted, actual, error} shape. Numbers may arrive as JSON numbers or
// numeric strings. A missing error is computed as actual - predicted.
func coerceErrorPoint(raw json.RawMessage) (model.PredictionErrorPoint, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.PredictionErrorPoint{}, false
	}

	var p model.PredictionErrorPoint
	if ts, ok := fields["timestamp"]; ok {
		_ = json.Unmarshal(ts, &p.Timestamp)
	}

	predicted, hasPredicted := numberField(fields, "predicted", "prediction", "predicted_price")
	actual, hasActual := numberField(fields, "actual", "actual_price")
	errValue, hasError := numberField(fields, "error")

	switch {
	case hasError:
		p.Error = errValue
	case hasPredicted && hasActual:
		p.Error = actual - predicted
	default:
		return model.PredictionErrorPoint{}, false
	}
	p.Predicted = predicted
	p.Actual = actual
	return p, true
}

// numberField returns the first key present as a finite number.
func numberField(fields map[string]json.RawMessage, keys ...string) (float64, bool) {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if v, ok := parseNumber(raw); ok {
			return v, true
		}
	}
	return 0, false
}

func parseNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
	} else {
		s = string(raw)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

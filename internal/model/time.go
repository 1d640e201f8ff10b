package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// timeLayouts lists the timestamp formats the forecasting service emits.
// Python isoformat() drops the zone for naive datetimes, so zone-less
// layouts are parsed as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time is a time.Time that decodes leniently from JSON.
// Unparseable values decode to the zero time instead of failing the payload.
type Time struct {
	time.Time
}

// NewTime wraps t.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// ParseTime parses s using the known upstream layouts.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// UnmarshalJSON accepts strings in any of timeLayouts or unix seconds/milliseconds numbers.
func (t *Time) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			t.Time = time.Time{}
			return nil
		}
		parsed, _ := ParseTime(s)
		t.Time = parsed
		return nil
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = fromEpoch(n)
	return nil
}

// MarshalJSON writes RFC3339, or null for the zero time.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// fromEpoch treats values above 1e12 as milliseconds.
func fromEpoch(n float64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(int64(n)).UTC()
	}
	return time.Unix(int64(n), 0).UTC()
}

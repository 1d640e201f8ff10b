package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTime_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339 zulu", `"2024-03-01T00:00:00Z"`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"rfc3339 offset", `"2024-03-01T02:00:00+02:00"`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"naive isoformat", `"2024-03-01T10:30:00"`, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"naive with micros", `"2024-03-01T10:30:00.250000"`, time.Date(2024, 3, 1, 10, 30, 0, 250000000, time.UTC)},
		{"date only", `"2024-03-01"`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"unix seconds", `1709251200`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"unix millis", `1709251200000`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"null", `null`, time.Time{}},
		{"garbage", `"yesterday"`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Time
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.True(t, tt.want.Equal(got.Time), "want %v, got %v", tt.want, got.Time)
		})
	}
}

func TestTime_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewTime(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T12:00:00Z"`, string(data))

	data, err = json.Marshal(Time{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestForecastPoint_HasBand(t *testing.T) {
	lo, hi := 98.0, 102.0
	assert.True(t, ForecastPoint{ConfidenceLower: &lo, ConfidenceUpper: &hi}.HasBand())
	assert.False(t, ForecastPoint{ConfidenceLower: &lo}.HasBand())
	assert.False(t, ForecastPoint{}.HasBand())
}

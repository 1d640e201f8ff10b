package demo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
}

func TestHistory_DeterministicPerSymbol(t *testing.T) {
	p := NewRandomWalk(0).WithClock(fixedClock)

	a := p.History("AAPL", 30)
	b := p.History("aapl", 30)
	c := p.History("MSFT", 30)

	require.Len(t, a, 30)
	assert.Equal(t, a, b)
	assert.Equal(t, "AAPL-demo-0", b[0].ID)
	assert.NotEqual(t, a[len(a)-1].Close, c[len(c)-1].Close)
}

func TestHistory_Shape(t *testing.T) {
	p := NewRandomWalk(0.02).WithClock(fixedClock)
	points := p.History("BTC", 48)

	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), points[len(points)-1].Timestamp.Time)
	for i, pt := range points {
		assert.GreaterOrEqual(t, pt.High, pt.Open)
		assert.GreaterOrEqual(t, pt.High, pt.Close)
		assert.LessOrEqual(t, pt.Low, pt.Open)
		assert.LessOrEqual(t, pt.Low, pt.Close)
		assert.Greater(t, pt.Low, 0.0)
		if i > 0 {
			assert.True(t, pt.Timestamp.After(points[i-1].Timestamp.Time))
		}
	}

	assert.Empty(t, p.History("BTC", 0))
}

func TestForecast(t *testing.T) {
	p := NewRandomWalk(0).WithClock(fixedClock)
	history := p.History("AAPL", 24)

	forecasts := p.Forecast("AAPL", history, 12)
	require.Len(t, forecasts, 12)

	last := history[len(history)-1].Timestamp.Time
	for i, f := range forecasts {
		require.True(t, f.HasBand())
		assert.LessOrEqual(t, *f.ConfidenceLower, f.PredictedPrice)
		assert.GreaterOrEqual(t, *f.ConfidenceUpper, f.PredictedPrice)
		assert.Equal(t, last.Add(time.Duration(i+1)*time.Hour), f.TargetTimestamp.Time)
		assert.Equal(t, i+1, f.HorizonHours)
	}

	assert.Empty(t, p.Forecast("AAPL", nil, 12))
	assert.Empty(t, p.Forecast("AAPL", history, 0))
}

func TestErrors(t *testing.T) {
	p := NewRandomWalk(0).WithClock(fixedClock)
	history := p.History("AAPL", 10)
	errs := p.Errors(history, p.Forecast("AAPL", history, 3))

	require.Len(t, errs, 9)
	for i, e := range errs {
		assert.Equal(t, history[i+1].Timestamp, e.Timestamp)
		assert.InDelta(t, e.Actual-e.Predicted, e.Error, 0.011)
	}
	assert.Empty(t, p.Errors(history[:1], nil))
}

package dashboard

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"forecast-dashboard/internal/chart"
	"forecast-dashboard/internal/demo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadChart_Generate(t *testing.T) {
	svc := newFakeService()
	l := NewLoader(svc, nil, testLoaderConfig(), nil)

	v, err := l.LoadChart(context.Background(), ChartRequest{Selection: defaultSelection(), Generate: true})
	require.NoError(t, err)

	assert.False(t, v.Demo)
	assert.Len(t, v.Candles, 5)
	assert.Len(t, v.Forecast.Points, 3)
	require.NotNil(t, v.Forecast.Summary)
	assert.Equal(t, 3, v.Forecast.Summary.Count)
	assert.NotEmpty(t, v.Forecast.Path)
	assert.Len(t, v.Overlay.Bars, 2)
	require.NotNil(t, v.Stats)
	assert.Equal(t, 2, v.Stats.TotalErrors)
	assert.Empty(t, v.Failures)
	assert.NotEmpty(t, v.Cards)

	assert.Equal(t, "AAPL", svc.lastForecast.Symbol)
	assert.Equal(t, 24, svc.lastForecast.Horizon)
	assert.Equal(t, "ensemble", svc.lastForecast.ModelID)
}

func TestLoadChart_KeepsGivenForecasts(t *testing.T) {
	svc := newFakeService()
	l := NewLoader(svc, nil, testLoaderConfig(), nil)

	given := sampleForecasts(2)
	v, err := l.LoadChart(context.Background(), ChartRequest{Selection: defaultSelection(), Forecasts: given})
	require.NoError(t, err)

	assert.Zero(t, svc.callCount("forecast"), "refresh must not regenerate forecasts")
	assert.Equal(t, given, v.Forecasts)
}

func TestLoadChart_NoForecast(t *testing.T) {
	l := NewLoader(newFakeService(), nil, testLoaderConfig(), nil)

	v, err := l.LoadChart(context.Background(), ChartRequest{Selection: defaultSelection()})
	require.NoError(t, err)
	assert.Empty(t, v.Forecasts)
	assert.Nil(t, v.Forecast.Summary)
	assert.Empty(t, v.Forecast.Path)
}

func TestLoadChart_ForecastFailureIsNotFatal(t *testing.T) {
	svc := newFakeService()
	svc.forecastErr = upstreamStatus("forecast", http.StatusBadRequest, "Symbol is required")
	l := NewLoader(svc, nil, testLoaderConfig(), nil)

	v, err := l.LoadChart(context.Background(), ChartRequest{Selection: defaultSelection(), Generate: true})
	require.NoError(t, err)

	assert.Len(t, v.Candles, 5)
	assert.Empty(t, v.Forecasts)
	require.Len(t, v.Failures, 1)
	assert.Equal(t, "forecast", v.Failures[0].Source)
}

func TestLoadChart_HistoryFailureWithoutDemo(t *testing.T) {
	svc := newFakeService()
	svc.historyErr = unavailable("historical-data")
	l := NewLoader(svc, nil, testLoaderConfig(), nil)

	_, err := l.LoadChart(context.Background(), ChartRequest{Selection: defaultSelection()})
	assert.Error(t, err)
}

func TestLoadChart_DemoFallback(t *testing.T) {
	svc := newFakeService()
	svc.historyErr = unavailable("historical-data")
	provider := demo.NewRandomWalk(0.01).WithClock(func() time.Time { return t0 })
	l := NewLoader(svc, provider, testLoaderConfig(), nil)

	v, err := l.LoadChart(context.Background(), ChartRequest{Selection: defaultSelection(), Generate: true})
	require.NoError(t, err)

	assert.True(t, v.Demo)
	assert.Len(t, v.History, demoHistoryPoints)
	assert.Len(t, v.Candles, 50, "display is capped")
	assert.Len(t, v.Forecasts, 24)
	assert.Zero(t, svc.callCount("forecast"), "demo mode does not call the service for forecasts")
	assert.True(t, v.ErrorsDemo)
	assert.NotEmpty(t, v.Errors)
}

func TestLoadChart_DemoNotUsedForClientErrors(t *testing.T) {
	svc := newFakeService()
	svc.historyErr = upstreamStatus("historical-data", http.StatusNotFound, "Instrument not found")
	l := NewLoader(svc, demo.NewRandomWalk(0.01), testLoaderConfig(), nil)

	_, err := l.LoadChart(context.Background(), ChartRequest{Selection: defaultSelection()})
	assert.Error(t, err)
}

func TestLoadChart_EmptyHistoryFallsBackToDefaultScale(t *testing.T) {
	svc := newFakeService()
	svc.history = nil
	svc.errorPoints = nil
	l := NewLoader(svc, nil, testLoaderConfig(), nil)

	v, err := l.LoadChart(context.Background(), ChartRequest{Selection: defaultSelection(), Generate: true})
	require.NoError(t, err)

	assert.True(t, v.Scale.Fallback)
	assert.Equal(t, 0.0, v.Scale.MinPrice)
	assert.Equal(t, 100.0, v.Scale.MaxPrice)
	assert.Empty(t, v.Candles)
	assert.Nil(t, v.Stats)
	assert.Empty(t, v.Forecast.Points)
	require.NotNil(t, v.Forecast.Summary)
	assert.Equal(t, 3, v.Forecast.Summary.Count)
}

func TestLoadMonitoring_SettlesAllWithPartialFailures(t *testing.T) {
	svc := newFakeService()
	svc.performanceErr = unavailable("monitoring-performance")
	svc.alertsErr = upstreamStatus("alerts", http.StatusInternalServerError, "boom")
	l := NewLoader(svc, nil, testLoaderConfig(), nil)

	v := l.LoadMonitoring(context.Background(), "AAPL")

	for _, name := range []string{"performance", "errors", "alerts", "metrics"} {
		assert.Equal(t, 1, svc.callCount(name), "%s must be fetched", name)
	}

	assert.Empty(t, v.Performance)
	assert.NotNil(t, v.Performance)
	assert.Empty(t, v.Alerts)
	assert.NotNil(t, v.Alerts)
	assert.Len(t, v.Errors, 2)
	assert.Len(t, v.Metrics, 1)

	sources := make([]string, 0, len(v.Failures))
	for _, f := range v.Failures {
		sources = append(sources, f.Source)
	}
	assert.ElementsMatch(t, []string{"performance", "alerts"}, sources)
	require.NotNil(t, v.Stats)
}

func TestLoadMonitoring_FiltersAlertsBySymbol(t *testing.T) {
	svc := newFakeService()
	l := NewLoader(svc, nil, testLoaderConfig(), nil)

	v := l.LoadMonitoring(context.Background(), "aapl")
	require.Len(t, v.Alerts, 1)
	assert.Equal(t, "a1", v.Alerts[0].ID)
	assert.Empty(t, v.Failures)
}

func TestLoadMonitoring_BreachesFlagged(t *testing.T) {
	svc := newFakeService()
	svc.errorPoints[0].Error = 30
	svc.errorPoints[0].Actual = 130
	l := NewLoader(svc, nil, testLoaderConfig(), nil)

	v := l.LoadMonitoring(context.Background(), "AAPL")
	require.NotEmpty(t, v.Breaches)

	types := map[string]bool{}
	for _, b := range v.Breaches {
		types[b.AlertType] = true
	}
	assert.True(t, types["high_rmse"])
}

func TestLoadPortfolio(t *testing.T) {
	svc := newFakeService()
	l := NewLoader(svc, nil, testLoaderConfig(), nil)

	v := l.LoadPortfolio(context.Background(), "default")
	assert.Equal(t, 9000.0, v.Portfolio.CashBalance)
	assert.Equal(t, 2.5, v.Performance.TotalReturnPercent)
	assert.Empty(t, v.Failures)

	svc.portfolioErr = errors.New("down")
	v = l.LoadPortfolio(context.Background(), "default")
	require.Len(t, v.Failures, 1)
	assert.Equal(t, "portfolio", v.Failures[0].Source)
	assert.NotNil(t, v.Portfolio.Holdings)
	assert.Equal(t, 10250.0, v.Performance.CurrentValue)
}

func TestNewLoader_Defaults(t *testing.T) {
	l := NewLoader(newFakeService(), nil, LoaderConfig{}, nil)
	assert.Equal(t, chart.DefaultOptions(), l.cfg.Chart)
	assert.Equal(t, chart.DefaultThresholds(), l.cfg.Thresholds)
	assert.False(t, l.DemoEnabled())
}

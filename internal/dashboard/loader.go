package dashboard

import (
	"context"
	"strings"
	"sync"
	"time"

	"forecast-dashboard/internal/api"
	"forecast-dashboard/internal/chart"
	"forecast-dashboard/internal/demo"
	"forecast-dashboard/internal/metrics"
	"forecast-dashboard/internal/model"

	"github.com/rs/zerolog/log"
)

// Service is the forecasting service as seen by the dashboard. *api.Client
// implements it.
type Service interface {
	Instruments(ctx context.Context) ([]model.Instrument, error)
	Models(ctx context.Context) ([]model.ForecastModel, error)
	HistoricalData(ctx context.Context, symbol string) ([]model.HistoricalPricePoint, error)
	GenerateForecast(ctx context.Context, req model.ForecastRequest) ([]model.ForecastPoint, error)
	PredictionErrors(ctx context.Context, symbol string) []model.PredictionErrorPoint
	MonitoringPerformance(ctx context.Context, symbol string) (model.PerformanceSummary, error)
	Alerts(ctx context.Context) ([]model.Alert, error)
	ResolveAlert(ctx context.Context, alertID string) (model.ResolveResult, error)
	MetricsHistory(ctx context.Context, symbol, modelType string) ([]model.MetricsRecord, error)
	CreatePortfolio(ctx context.Context, req model.CreatePortfolioRequest) (model.Portfolio, error)
	Portfolio(ctx context.Context, userID string) (model.Portfolio, error)
	Trade(ctx context.Context, req model.TradeRequest) (model.TradeResult, error)
	PortfolioPerformance(ctx context.Context, userID string) (model.PortfolioPerformance, error)
	Retrain(ctx context.Context, req model.RetrainRequest) (model.RetrainResult, error)
	IncrementalUpdate(ctx context.Context, req model.RetrainRequest) (model.IncrementalUpdateResult, error)
	ModelVersions(ctx context.Context, symbol string) ([]model.ModelVersion, error)
	Health(ctx context.Context) (model.HealthStatus, bool)
}

const (
	demoHistoryPoints = 100

	overlayGap    = 10.0
	overlayHeight = 100.0

	priceTickCount = 5
	timeTickCount  = 6
)

// LoaderConfig controls how views are built.
type LoaderConfig struct {
	Chart      chart.Options
	DisplayCap int
	Tolerance  time.Duration
	Thresholds chart.Thresholds
}

// Loader fetches data from the service and turns it into views. It never
// touches the store; callers commit what it returns.
type Loader struct {
	svc      Service
	demo     demo.Provider
	cfg      LoaderConfig
	recorder metrics.ViewRecorder
}

// NewLoader builds a loader. provider may be nil, which disables demo data.
func NewLoader(svc Service, provider demo.Provider, cfg LoaderConfig, rec metrics.ViewRecorder) *Loader {
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	if cfg.Chart.Width == 0 || cfg.Chart.Height == 0 {
		cfg.Chart = chart.DefaultOptions()
	}
	if cfg.Thresholds == (chart.Thresholds{}) {
		cfg.Thresholds = chart.DefaultThresholds()
	}
	return &Loader{svc: svc, demo: provider, cfg: cfg, recorder: rec}
}

// DemoEnabled reports whether the loader may substitute demo data.
func (l *Loader) DemoEnabled() bool {
	return l.demo != nil
}

// ChartRequest describes one chart refresh.
type ChartRequest struct {
	Selection Selection
	// Generate asks the service for a fresh forecast. Otherwise Forecasts,
	// typically the ones already on screen, are drawn as given.
	Generate  bool
	Forecasts []model.ForecastPoint
}

// LoadChart builds the chart view for req. History is required: without it
// (and without demo data to stand in) the view fails. A failed forecast only
// leaves the forecast region empty.
func (l *Loader) LoadChart(ctx context.Context, req ChartRequest) (ChartView, error) {
	start := time.Now()
	sel := req.Selection
	v := ChartView{Selection: sel, Failures: []Failure{}}

	history, err := l.svc.HistoricalData(ctx, sel.Symbol)
	if err != nil {
		if !l.useDemo(err) {
			l.recorder.ViewFailure(string(ViewChart), "history")
			return ChartView{}, err
		}
		log.Warn().Err(err).Str("symbol", sel.Symbol).Msg("service unavailable, using demo history")
		l.recorder.DemoFallback()
		history = l.demo.History(sel.Symbol, demoHistoryPoints)
		v.Demo = true
	}
	v.History = history

	switch {
	case req.Generate:
		v.Forecasts = l.loadForecast(ctx, &v)
	case req.Forecasts != nil:
		v.Forecasts = req.Forecasts
	default:
		v.Forecasts = []model.ForecastPoint{}
	}

	if v.Demo {
		v.Errors = []model.PredictionErrorPoint{}
	} else {
		v.Errors = l.svc.PredictionErrors(ctx, sel.Symbol)
	}
	if len(v.Errors) == 0 && l.demo != nil && len(v.History) > 1 {
		v.Errors = l.demo.Errors(v.History, v.Forecasts)
		v.ErrorsDemo = true
	}

	l.layoutChart(&v)
	v.UpdatedAt = time.Now().UTC()

	l.recorder.ChartRendered(len(v.Candles))
	l.recorder.ViewRefreshed(string(ViewChart), time.Since(start))
	return v, nil
}

func (l *Loader) loadForecast(ctx context.Context, v *ChartView) []model.ForecastPoint {
	sel := v.Selection
	if v.Demo {
		return l.demo.Forecast(sel.Symbol, v.History, sel.Horizon)
	}

	forecasts, err := l.svc.GenerateForecast(ctx, model.ForecastRequest{
		Symbol:  sel.Symbol,
		Horizon: sel.Horizon,
		ModelID: sel.ModelID,
	})
	if err == nil {
		return forecasts
	}

	if l.useDemo(err) {
		log.Warn().Err(err).Str("symbol", sel.Symbol).Msg("forecast unavailable, using demo forecast")
		l.recorder.DemoFallback()
		v.Demo = true
		return l.demo.Forecast(sel.Symbol, v.History, sel.Horizon)
	}

	l.recorder.ViewFailure(string(ViewChart), "forecast")
	v.Failures = append(v.Failures, Failure{Source: "forecast", Message: err.Error()})
	return []model.ForecastPoint{}
}

func (l *Loader) useDemo(err error) bool {
	return l.demo != nil && api.IsUnavailable(err)
}

func (l *Loader) layoutChart(v *ChartView) {
	opts := l.cfg.Chart
	display := chart.Tail(v.History, l.cfg.DisplayCap)

	v.Scale = chart.ComputeScale(display, v.Forecasts, opts)
	v.Candles = chart.LayoutCandles(display, v.Scale)

	var anchor *chart.Candle
	if n := len(v.Candles); n > 0 {
		anchor = &v.Candles[n-1]
	}
	placed := v.Forecasts
	if v.Scale.Fallback {
		// A placeholder scale has no room for real prices.
		placed = nil
	}
	v.Forecast = chart.LayoutForecast(placed, v.Scale, anchor)
	v.Forecast.Summary = chart.Summarize(v.Forecasts)
	v.PriceTicks = chart.PriceTicks(v.Scale, priceTickCount)
	v.TimeTicks = chart.TimeTicks(v.Scale, timeTickCount, "")

	v.Stats, _ = chart.ComputeErrorStatistics(v.Errors)
	v.Breaches = chart.EvaluateThresholds(v.Stats, l.cfg.Thresholds)

	maxAbs := 0.0
	if v.Stats != nil {
		maxAbs = v.Stats.MaxAbsError
	}
	width := chart.MinCandleWidth
	if len(v.Candles) > 0 {
		width = v.Candles[0].Width
	}
	matches := chart.Correlate(v.Candles, v.Errors, l.cfg.Tolerance)
	v.Overlay = chart.LayoutErrorOverlay(matches, maxAbs, opts.Height+overlayGap, overlayHeight, width)

	v.Cards = chartCards(v)
}

// LoadMonitoring fetches performance, errors, alerts and metrics history
// concurrently. Every fetch is awaited; one that fails leaves its field empty
// and is listed in Failures. It never returns an error.
func (l *Loader) LoadMonitoring(ctx context.Context, symbol string) MonitoringView {
	start := time.Now()
	v := MonitoringView{
		Symbol:      symbol,
		Performance: model.PerformanceSummary{},
		Errors:      []model.PredictionErrorPoint{},
		Alerts:      []model.Alert{},
		Metrics:     []model.MetricsRecord{},
	}

	var (
		wg                         sync.WaitGroup
		perfErr, alertErr, metrErr error
		performance                model.PerformanceSummary
		alerts                     []model.Alert
		records                    []model.MetricsRecord
		errs                       []model.PredictionErrorPoint
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		performance, perfErr = l.svc.MonitoringPerformance(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		errs = l.svc.PredictionErrors(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		alerts, alertErr = l.svc.Alerts(ctx)
	}()
	go func() {
		defer wg.Done()
		records, metrErr = l.svc.MetricsHistory(ctx, symbol, "")
	}()
	wg.Wait()

	settle := func(source string, err error) bool {
		if err == nil {
			return true
		}
		log.Warn().Err(err).Str("symbol", symbol).Str("source", source).Msg("monitoring fetch failed")
		l.recorder.ViewFailure(string(ViewMonitoring), source)
		v.Failures = append(v.Failures, Failure{Source: source, Message: err.Error()})
		return false
	}

	if settle("performance", perfErr) && performance != nil {
		v.Performance = performance
	}
	if errs != nil {
		v.Errors = errs
	}
	if settle("alerts", alertErr) && alerts != nil {
		v.Alerts = filterAlerts(alerts, symbol)
	}
	if settle("metrics", metrErr) && records != nil {
		v.Metrics = records
	}
	if v.Failures == nil {
		v.Failures = []Failure{}
	}

	v.Stats, _ = chart.ComputeErrorStatistics(v.Errors)
	v.Breaches = chart.EvaluateThresholds(v.Stats, l.cfg.Thresholds)
	v.Cards = monitoringCards(&v)
	v.UpdatedAt = time.Now().UTC()

	l.recorder.ViewRefreshed(string(ViewMonitoring), time.Since(start))
	return v
}

// LoadPortfolio fetches the portfolio and its performance concurrently with
// the same settle-all policy as LoadMonitoring.
func (l *Loader) LoadPortfolio(ctx context.Context, userID string) PortfolioView {
	start := time.Now()
	v := PortfolioView{UserID: userID, Portfolio: model.Portfolio{UserID: userID, Holdings: map[string]float64{}}}

	var (
		wg               sync.WaitGroup
		portfolio        model.Portfolio
		perf             model.PortfolioPerformance
		portErr, perfErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		portfolio, portErr = l.svc.Portfolio(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		perf, perfErr = l.svc.PortfolioPerformance(ctx, userID)
	}()
	wg.Wait()

	v.Failures = []Failure{}
	if portErr != nil {
		l.recorder.ViewFailure(string(ViewPortfolio), "portfolio")
		v.Failures = append(v.Failures, Failure{Source: "portfolio", Message: portErr.Error()})
	} else {
		v.Portfolio = portfolio
	}
	if perfErr != nil {
		l.recorder.ViewFailure(string(ViewPortfolio), "performance")
		v.Failures = append(v.Failures, Failure{Source: "performance", Message: perfErr.Error()})
	} else {
		v.Performance = perf
	}

	v.Cards = portfolioCards(&v)
	v.UpdatedAt = time.Now().UTC()
	l.recorder.ViewRefreshed(string(ViewPortfolio), time.Since(start))
	return v
}

// filterAlerts keeps alerts for symbol. The service returns alerts for
// every symbol.
func filterAlerts(alerts []model.Alert, symbol string) []model.Alert {
	out := make([]model.Alert, 0, len(alerts))
	for _, a := range alerts {
		if a.Symbol == "" || strings.EqualFold(a.Symbol, symbol) {
			out = append(out, a)
		}
	}
	return out
}

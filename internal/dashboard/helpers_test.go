package dashboard

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"forecast-dashboard/internal/api"
	"forecast-dashboard/internal/model"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// fakeService is an in-memory Service. Zero-value error fields mean success.
type fakeService struct {
	mu    sync.Mutex
	calls map[string]int

	history     []model.HistoricalPricePoint
	forecasts   []model.ForecastPoint
	errorPoints []model.PredictionErrorPoint
	performance model.PerformanceSummary
	alerts      []model.Alert
	records     []model.MetricsRecord
	portfolio   model.Portfolio
	perf        model.PortfolioPerformance
	healthy     bool

	historyErr     error
	forecastErr    error
	performanceErr error
	alertsErr      error
	metricsErr     error
	portfolioErr   error
	tradeErr       error
	instrumentsErr error

	lastForecast model.ForecastRequest
	lastTrade    model.TradeRequest
	lastRetrain  model.RetrainRequest

	// historyGate, when set, blocks HistoricalData until closed.
	historyGate chan struct{}
}

func newFakeService() *fakeService {
	return &fakeService{
		calls:       map[string]int{},
		history:     sampleHistory(5),
		forecasts:   sampleForecasts(3),
		errorPoints: sampleErrors(),
		performance: model.PerformanceSummary{"lstm": {TotalEvaluations: 4, Trend: model.TrendStable}},
		alerts: []model.Alert{
			{ID: "a1", Symbol: "AAPL", AlertType: "high_rmse", Severity: "warning"},
			{ID: "a2", Symbol: "MSFT", AlertType: "high_mape", Severity: "warning"},
		},
		records:   []model.MetricsRecord{{Symbol: "AAPL", ModelType: "lstm"}},
		portfolio: model.Portfolio{UserID: "default", CashBalance: 9000, TotalValue: 10250, Holdings: map[string]float64{"AAPL": 5}},
		perf:      model.PortfolioPerformance{InitialCapital: 10000, CurrentValue: 10250, TotalReturnPercent: 2.5, TotalReturnDollar: 250, NumberOfTrades: 1},
		healthy:   true,
	}
}

func (f *fakeService) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeService) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeService) Instruments(ctx context.Context) ([]model.Instrument, error) {
	f.count("instruments")
	if f.instrumentsErr != nil {
		return nil, f.instrumentsErr
	}
	return []model.Instrument{{Symbol: "AAPL", IsActive: true}, {Symbol: "MSFT", IsActive: true}}, nil
}

func (f *fakeService) Models(ctx context.Context) ([]model.ForecastModel, error) {
	f.count("models")
	return []model.ForecastModel{{ID: "ensemble", Name: "Ensemble", IsActive: true}}, nil
}

func (f *fakeService) HistoricalData(ctx context.Context, symbol string) ([]model.HistoricalPricePoint, error) {
	f.count("history")
	if f.historyGate != nil {
		select {
		case <-f.historyGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *fakeService) GenerateForecast(ctx context.Context, req model.ForecastRequest) ([]model.ForecastPoint, error) {
	f.count("forecast")
	f.mu.Lock()
	f.lastForecast = req
	f.mu.Unlock()
	if f.forecastErr != nil {
		return nil, f.forecastErr
	}
	return f.forecasts, nil
}

func (f *fakeService) PredictionErrors(ctx context.Context, symbol string) []model.PredictionErrorPoint {
	f.count("errors")
	return f.errorPoints
}

func (f *fakeService) MonitoringPerformance(ctx context.Context, symbol string) (model.PerformanceSummary, error) {
	f.count("performance")
	if f.performanceErr != nil {
		return nil, f.performanceErr
	}
	return f.performance, nil
}

func (f *fakeService) Alerts(ctx context.Context) ([]model.Alert, error) {
	f.count("alerts")
	if f.alertsErr != nil {
		return nil, f.alertsErr
	}
	return f.alerts, nil
}

func (f *fakeService) ResolveAlert(ctx context.Context, alertID string) (model.ResolveResult, error) {
	f.count("resolve")
	if alertID == "missing" {
		return model.ResolveResult{Success: false, Error: "Alert not found"}, nil
	}
	return model.ResolveResult{Success: true}, nil
}

func (f *fakeService) MetricsHistory(ctx context.Context, symbol, modelType string) ([]model.MetricsRecord, error) {
	f.count("metrics")
	if f.metricsErr != nil {
		return nil, f.metricsErr
	}
	return f.records, nil
}

func (f *fakeService) CreatePortfolio(ctx context.Context, req model.CreatePortfolioRequest) (model.Portfolio, error) {
	f.count("create")
	return model.Portfolio{UserID: req.UserID, CashBalance: req.InitialCapital, TotalValue: req.InitialCapital, Holdings: map[string]float64{}}, nil
}

func (f *fakeService) Portfolio(ctx context.Context, userID string) (model.Portfolio, error) {
	f.count("portfolio")
	if f.portfolioErr != nil {
		return model.Portfolio{}, f.portfolioErr
	}
	return f.portfolio, nil
}

func (f *fakeService) Trade(ctx context.Context, req model.TradeRequest) (model.TradeResult, error) {
	f.count("trade")
	f.mu.Lock()
	f.lastTrade = req
	f.mu.Unlock()
	if f.tradeErr != nil {
		return model.TradeResult{}, f.tradeErr
	}
	return model.TradeResult{Success: true, NewCashBalance: 8500, TotalValue: 10250}, nil
}

func (f *fakeService) PortfolioPerformance(ctx context.Context, userID string) (model.PortfolioPerformance, error) {
	f.count("portfolio-performance")
	return f.perf, nil
}

func (f *fakeService) Retrain(ctx context.Context, req model.RetrainRequest) (model.RetrainResult, error) {
	f.count("retrain")
	f.mu.Lock()
	f.lastRetrain = req
	f.mu.Unlock()
	return model.RetrainResult{Retrained: true, VersionID: "v2"}, nil
}

func (f *fakeService) IncrementalUpdate(ctx context.Context, req model.RetrainRequest) (model.IncrementalUpdateResult, error) {
	f.count("incremental")
	f.mu.Lock()
	f.lastRetrain = req
	f.mu.Unlock()
	return model.IncrementalUpdateResult{Updated: true, OldVersion: "v1", NewVersion: "v2"}, nil
}

func (f *fakeService) ModelVersions(ctx context.Context, symbol string) ([]model.ModelVersion, error) {
	f.count("versions")
	return []model.ModelVersion{{VersionID: "v1", Symbol: symbol, ModelType: "lstm"}}, nil
}

func (f *fakeService) Health(ctx context.Context) (model.HealthStatus, bool) {
	f.count("health")
	if !f.healthy {
		return model.HealthStatus{}, false
	}
	return model.HealthStatus{Status: "healthy", Service: "forecasting"}, true
}

func unavailable(op string) error {
	return &api.Error{Op: op, Method: http.MethodGet, URL: "http://localhost:5000/" + op, Err: errors.New("connection refused")}
}

func upstreamStatus(op string, status int, msg string) error {
	return &api.Error{Op: op, Method: http.MethodGet, StatusCode: status, Message: msg}
}

func sampleHistory(n int) []model.HistoricalPricePoint {
	out := make([]model.HistoricalPricePoint, n)
	for i := range out {
		base := 100 + float64(i)
		out[i] = model.HistoricalPricePoint{
			Timestamp: model.NewTime(t0.Add(time.Duration(i) * time.Hour)),
			Open:      base,
			High:      base + 2,
			Low:       base - 2,
			Close:     base + 1,
			Volume:    1000,
		}
	}
	return out
}

func sampleForecasts(n int) []model.ForecastPoint {
	out := make([]model.ForecastPoint, n)
	for i := range out {
		out[i] = model.ForecastPoint{
			ModelID:         "ensemble",
			TargetTimestamp: model.NewTime(t0.Add(time.Duration(5+i) * time.Hour)),
			PredictedPrice:  106 + float64(i),
		}
	}
	return out
}

func sampleErrors() []model.PredictionErrorPoint {
	return []model.PredictionErrorPoint{
		{Timestamp: model.NewTime(t0), Predicted: 100, Actual: 101, Error: 1},
		{Timestamp: model.NewTime(t0.Add(2 * time.Hour)), Predicted: 104, Actual: 103, Error: -1},
	}
}

func testLoaderConfig() LoaderConfig {
	return LoaderConfig{DisplayCap: 50, Tolerance: 12 * time.Hour}
}

func defaultSelection() Selection {
	return Selection{Symbol: "AAPL", ModelID: "ensemble", Horizon: 24, UserID: "default"}
}

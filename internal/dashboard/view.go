package dashboard

import (
	"strconv"
	"strings"
	"time"

	"forecast-dashboard/internal/chart"
	"forecast-dashboard/internal/model"
)

// ViewKind names one of the dashboard tabs.
type ViewKind string

const (
	ViewChart      ViewKind = "chart"
	ViewMonitoring ViewKind = "monitoring"
	ViewPortfolio  ViewKind = "portfolio"
)

// Selection is what the user is currently looking at.
type Selection struct {
	Symbol  string `json:"symbol"`
	ModelID string `json:"model_id"`
	Horizon int    `json:"horizon"`
	UserID  string `json:"user_id"`
}

// Key identifies the selection for a view. A response is only applied while
// the key it was requested under is still current.
func (s Selection) Key(view ViewKind) string {
	switch view {
	case ViewMonitoring:
		return strings.ToUpper(s.Symbol)
	case ViewPortfolio:
		return s.UserID
	default:
		return strings.ToUpper(s.Symbol) + "|" + s.ModelID + "|" + strconv.Itoa(s.Horizon)
	}
}

// Failure records a fetch that failed while the rest of a view loaded.
type Failure struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Card is a formatted headline metric.
type Card struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Tone  string `json:"tone,omitempty"` // positive, negative, warning
}

// ChartView is the price chart tab: history, forecast and error overlay.
type ChartView struct {
	Selection  Selection                    `json:"selection"`
	Demo       bool                         `json:"demo"`
	History    []model.HistoricalPricePoint `json:"history"`
	Forecasts  []model.ForecastPoint        `json:"forecasts"`
	Errors     []model.PredictionErrorPoint `json:"errors"`
	ErrorsDemo bool                         `json:"errors_demo"`

	Scale      chart.Scale            `json:"scale"`
	Candles    []chart.Candle         `json:"candles"`
	Forecast   chart.ForecastLayout   `json:"forecast"`
	PriceTicks []chart.Tick           `json:"price_ticks"`
	TimeTicks  []chart.Tick           `json:"time_ticks"`
	Overlay    chart.Overlay          `json:"overlay"`
	Stats      *chart.ErrorStatistics `json:"stats,omitempty"`
	Breaches   []chart.Breach         `json:"breaches"`

	Cards     []Card    `json:"cards"`
	Failures  []Failure `json:"failures"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MonitoringView is the model accuracy tab.
type MonitoringView struct {
	Symbol      string                       `json:"symbol"`
	Performance model.PerformanceSummary     `json:"performance"`
	Errors      []model.PredictionErrorPoint `json:"errors"`
	Alerts      []model.Alert                `json:"alerts"`
	Metrics     []model.MetricsRecord        `json:"metrics"`
	Stats       *chart.ErrorStatistics       `json:"stats,omitempty"`
	Breaches    []chart.Breach               `json:"breaches"`
	Cards       []Card                       `json:"cards"`
	Failures    []Failure                    `json:"failures"`
	UpdatedAt   time.Time                    `json:"updated_at"`
}

// PortfolioView is the simulated trading tab.
type PortfolioView struct {
	UserID      string                     `json:"user_id"`
	Portfolio   model.Portfolio            `json:"portfolio"`
	Performance model.PortfolioPerformance `json:"performance"`
	Cards       []Card                     `json:"cards"`
	Failures    []Failure                  `json:"failures"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// Update is what the broadcaster pushes to websocket clients.
type Update struct {
	View ViewKind    `json:"view"`
	Key  string      `json:"key"`
	Seq  uint64      `json:"seq"`
	Data interface{} `json:"data"`
}

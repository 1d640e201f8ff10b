package chart

import (
	"fmt"
	"math"
	"strings"

	"forecast-dashboard/internal/model"
)

// Candle sizing. Width is innerWidth/count scaled by CandleDensity and
// clamped to [MinCandleWidth, MaxCandleWidth].
const (
	CandleDensity  = 0.9
	MinCandleWidth = 8.0
	MaxCandleWidth = 15.0

	// MarkerThreshold is the forecast count above which only the first,
	// middle and last points are drawn as markers.
	MarkerThreshold = 3
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Candle is the pixel geometry of one historical interval.
type Candle struct {
	Point      model.HistoricalPricePoint `json:"point"`
	X          float64                    `json:"x"`
	Width      float64                    `json:"width"`
	BodyTop    float64                    `json:"body_top"`
	BodyBottom float64                    `json:"body_bottom"`
	WickTop    float64                    `json:"wick_top"`
	WickBottom float64                    `json:"wick_bottom"`
	Direction  Direction                  `json:"direction"`
}

// BodyHeight is never zero so doji candles stay visible.
func (c Candle) BodyHeight() float64 {
	return math.Max(1, c.BodyBottom-c.BodyTop)
}

// Band is a confidence interval in pixel space.
type Band struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Height is the band's extent, at least one pixel so a flat band stays visible.
func (b Band) Height() float64 {
	return math.Max(1, b.Bottom-b.Top)
}

// ForecastMark is the pixel geometry of one forecast point.
type ForecastMark struct {
	Point    model.ForecastPoint `json:"point"`
	X        float64             `json:"x"`
	Y        float64             `json:"y"`
	Forecast bool                `json:"forecast"`
	Marker   bool                `json:"marker"`
	Band     *Band               `json:"band,omitempty"`
}

// ForecastSummary describes the whole forecast, not just the drawn markers.
type ForecastSummary struct {
	StartPrice   float64   `json:"start_price"`
	EndPrice     float64   `json:"end_price"`
	Delta        float64   `json:"delta"`
	DeltaPercent float64   `json:"delta_percent"`
	Count        int       `json:"count"`
	Direction    Direction `json:"direction"`
}

// ForecastLayout is everything needed to draw the forecast region.
type ForecastLayout struct {
	Points  []ForecastMark   `json:"points"`
	Path    string           `json:"path"`
	Summary *ForecastSummary `json:"summary,omitempty"`
}

// Markers returns the points flagged as markers.
func (l ForecastLayout) Markers() []ForecastMark {
	var out []ForecastMark
	for _, p := range l.Points {
		if p.Marker {
			out = append(out, p)
		}
	}
	return out
}

// Tail keeps the most recent n points. n <= 0 keeps everything.
func Tail[T any](points []T, n int) []T {
	if n <= 0 || len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}

// CandleWidth returns the clamped candle width for count candles.
func CandleWidth(innerWidth float64, count int) float64 {
	if count <= 0 || innerWidth <= 0 {
		return MinCandleWidth
	}
	w := innerWidth / float64(count) * CandleDensity
	return math.Min(MaxCandleWidth, math.Max(MinCandleWidth, w))
}

// LayoutCandles positions history on s. X is the candle centre. Points
// without a timestamp are left out.
func LayoutCandles(history []model.HistoricalPricePoint, s Scale) []Candle {
	placed := make([]model.HistoricalPricePoint, 0, len(history))
	for _, p := range history {
		if !p.Timestamp.IsZero() {
			placed = append(placed, p)
		}
	}

	candles := make([]Candle, 0, len(placed))
	width := CandleWidth(s.InnerWidth(), len(placed))

	for _, p := range placed {
		yOpen, yClose := s.Y(p.Open), s.Y(p.Close)
		dir := Up
		if p.Close < p.Open {
			dir = Down
		}
		candles = append(candles, Candle{
			Point:      p,
			X:          s.X(p.Timestamp.Time),
			Width:      width,
			BodyTop:    math.Min(yOpen, yClose),
			BodyBottom: math.Max(yOpen, yClose),
			WickTop:    s.Y(p.High),
			WickBottom: s.Y(p.Low),
			Direction:  dir,
		})
	}
	return candles
}

// LayoutForecast positions forecasts on s. A non-nil anchor starts the
// connector path at that candle's close. Points without a target timestamp
// are left out of the marks but still count towards the summary.
func LayoutForecast(forecasts []model.ForecastPoint, s Scale, anchor *Candle) ForecastLayout {
	placed := make([]model.ForecastPoint, 0, len(forecasts))
	for _, f := range forecasts {
		if !f.TargetTimestamp.IsZero() {
			placed = append(placed, f)
		}
	}

	layout := ForecastLayout{Points: make([]ForecastMark, 0, len(placed))}
	n := len(placed)

	for i, f := range placed {
		mark := ForecastMark{
			Point:    f,
			X:        s.X(f.TargetTimestamp.Time),
			Y:        s.Y(f.PredictedPrice),
			Forecast: true,
			Marker:   isMarker(i, n),
		}
		if f.HasBand() && !isBad(*f.ConfidenceLower) && !isBad(*f.ConfidenceUpper) {
			top, bottom := s.Y(*f.ConfidenceUpper), s.Y(*f.ConfidenceLower)
			mark.Band = &Band{Top: math.Min(top, bottom), Bottom: math.Max(top, bottom)}
		}
		layout.Points = append(layout.Points, mark)
	}

	layout.Path = connectorPath(layout.Points, s, anchor)
	layout.Summary = Summarize(forecasts)
	return layout
}

// Summarize computes start/end/delta over the full forecast. It returns nil
// for an empty forecast.
func Summarize(forecasts []model.ForecastPoint) *ForecastSummary {
	if len(forecasts) == 0 {
		return nil
	}
	start := forecasts[0].PredictedPrice
	end := forecasts[len(forecasts)-1].PredictedPrice

	sum := &ForecastSummary{
		StartPrice: start,
		EndPrice:   end,
		Delta:      end - start,
		Count:      len(forecasts),
		Direction:  Up,
	}
	if start != 0 {
		sum.DeltaPercent = (end - start) / start * 100
	}
	if end < start {
		sum.Direction = Down
	}
	return sum
}

func isMarker(i, n int) bool {
	if n <= MarkerThreshold {
		return true
	}
	return i == 0 || i == n/2 || i == n-1
}

func connectorPath(points []ForecastMark, s Scale, anchor *Candle) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	cmd := "M"
	if anchor != nil {
		fmt.Fprintf(&b, "M%.2f,%.2f", anchor.X, s.Y(anchor.Point.Close))
		cmd = " L"
	}
	for _, p := range points {
		fmt.Fprintf(&b, "%s%.2f,%.2f", cmd, p.X, p.Y)
		cmd = " L"
	}
	return b.String()
}

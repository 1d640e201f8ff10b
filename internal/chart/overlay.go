package chart

import (
	"math"
	"sort"
	"time"

	"forecast-dashboard/internal/model"
)

// DefaultMatchTolerance is the widest gap allowed between an error point and
// the candle it is drawn against.
const DefaultMatchTolerance = 12 * time.Hour

// Match pairs an error point with the candle it was correlated to.
type Match struct {
	Candle int                        `json:"candle"`
	X      float64                    `json:"x"`
	Error  model.PredictionErrorPoint `json:"error"`
}

// Correlate pairs each error point with the candle nearest in time. Points
// with no candle within tolerance are dropped rather than misaligned.
// candles must be in timestamp order.
func Correlate(candles []Candle, errors []model.PredictionErrorPoint, tolerance time.Duration) []Match {
	if tolerance < 0 {
		tolerance = 0
	}
	matches := make([]Match, 0, len(errors))
	if len(candles) == 0 {
		return matches
	}

	for _, e := range errors {
		ts := e.Timestamp.Time
		if ts.IsZero() || isBad(e.Error) {
			continue
		}
		i := sort.Search(len(candles), func(i int) bool {
			return !candles[i].Point.Timestamp.Before(ts)
		})

		best, bestGap := -1, time.Duration(math.MaxInt64)
		for _, j := range []int{i - 1, i} {
			if j < 0 || j >= len(candles) {
				continue
			}
			gap := absDuration(candles[j].Point.Timestamp.Sub(ts))
			if gap < bestGap {
				best, bestGap = j, gap
			}
		}
		if best < 0 || bestGap > tolerance {
			continue
		}
		matches = append(matches, Match{Candle: best, X: candles[best].X, Error: e})
	}
	return matches
}

// ErrorBar is one bar of the error overlay. Positive errors (actual above
// prediction) grow upward from the zero line.
type ErrorBar struct {
	X      float64                    `json:"x"`
	Y      float64                    `json:"y"`
	Height float64                    `json:"height"`
	Width  float64                    `json:"width"`
	Error  model.PredictionErrorPoint `json:"error"`
}

// Overlay is the error band drawn under the price chart.
type Overlay struct {
	Top    float64    `json:"top"`
	Height float64    `json:"height"`
	ZeroY  float64    `json:"zero_y"`
	Bars   []ErrorBar `json:"bars"`
}

// LayoutErrorOverlay draws matches into a band of the given height starting
// at top. |error| is normalised by maxAbs so the largest error fills half the
// band on its side of the zero line.
func LayoutErrorOverlay(matches []Match, maxAbs, top, height, barWidth float64) Overlay {
	height = math.Max(0, height)
	o := Overlay{
		Top:    top,
		Height: height,
		ZeroY:  top + height/2,
		Bars:   make([]ErrorBar, 0, len(matches)),
	}
	if barWidth <= 0 {
		barWidth = MinCandleWidth
	}

	half := height / 2
	for _, m := range matches {
		var h float64
		if maxAbs > 0 && !isBad(maxAbs) {
			h = math.Min(1, math.Abs(m.Error.Error)/maxAbs) * half
		}
		y := o.ZeroY
		if m.Error.Error >= 0 {
			y -= h
		}
		o.Bars = append(o.Bars, ErrorBar{
			X:      m.X - barWidth/2,
			Y:      y,
			Height: h,
			Width:  barWidth,
			Error:  m.Error,
		})
	}
	return o
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

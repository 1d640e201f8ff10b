// Package chart turns price history, forecasts and prediction errors into
// pixel coordinates and accuracy statistics. Everything here is pure: no I/O,
// no shared state, and no input makes it panic.
package chart

import (
	"math"
	"time"

	"forecast-dashboard/internal/model"
)

const (
	DefaultPaddingFactor = 0.05

	fallbackMinPrice = 0.0
	fallbackMaxPrice = 100.0
)

// Margin is the space reserved around the plot area.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Options sizes the drawing area.
type Options struct {
	Width         float64
	Height        float64
	Margin        Margin
	PaddingFactor float64
}

// DefaultOptions returns a 960x420 area with room for axis labels.
func DefaultOptions() Options {
	return Options{
		Width:         960,
		Height:        420,
		Margin:        Margin{Top: 20, Right: 60, Bottom: 30, Left: 20},
		PaddingFactor: DefaultPaddingFactor,
	}
}

// Scale maps prices and timestamps into pixel space.
type Scale struct {
	MinPrice     float64   `json:"min_price"`
	MaxPrice     float64   `json:"max_price"`
	PriceRange   float64   `json:"price_range"`
	DateRangeMin time.Time `json:"date_range_min"`
	DateRangeMax time.Time `json:"date_range_max"`
	Fallback     bool      `json:"fallback"`

	opts Options
}

// ComputeScale derives the price and time domains of history and forecasts.
// Without history, or with no finite prices, the domain falls back to
// [0,100] without padding.
func ComputeScale(history []model.HistoricalPricePoint, forecasts []model.ForecastPoint, opts Options) Scale {
	if opts.PaddingFactor <= 0 || isBad(opts.PaddingFactor) {
		opts.PaddingFactor = DefaultPaddingFactor
	}
	if len(history) == 0 {
		return placeholderScale(opts)
	}

	var b bounds
	var tb timeBounds
	for _, p := range history {
		b.add(p.Low)
		b.add(p.High)
		tb.add(p.Timestamp.Time)
	}
	for _, f := range forecasts {
		b.add(f.PredictedPrice)
		if f.ConfidenceLower != nil {
			b.add(*f.ConfidenceLower)
		}
		if f.ConfidenceUpper != nil {
			b.add(*f.ConfidenceUpper)
		}
		tb.add(f.TargetTimestamp.Time)
	}

	if !b.ok {
		s := placeholderScale(opts)
		s.DateRangeMin, s.DateRangeMax = tb.min, tb.max
		return s
	}
	s := Scale{DateRangeMin: tb.min, DateRangeMax: tb.max, opts: opts}

	pad := (b.max - b.min) * opts.PaddingFactor
	if pad == 0 {
		pad = math.Abs(b.max) * opts.PaddingFactor
	}
	if pad == 0 {
		pad = 1
	}
	s.MinPrice = b.min - pad
	s.MaxPrice = b.max + pad
	s.PriceRange = s.MaxPrice - s.MinPrice
	return s
}

func placeholderScale(opts Options) Scale {
	return Scale{
		MinPrice:   fallbackMinPrice,
		MaxPrice:   fallbackMaxPrice,
		PriceRange: fallbackMaxPrice - fallbackMinPrice,
		Fallback:   true,
		opts:       opts,
	}
}

// Options returns the drawing options the scale was built with.
func (s Scale) Options() Options {
	return s.opts
}

// InnerWidth is the plot width inside the margins, never negative.
func (s Scale) InnerWidth() float64 {
	return math.Max(0, s.opts.Width-s.opts.Margin.Left-s.opts.Margin.Right)
}

// InnerHeight is the plot height inside the margins, never negative.
func (s Scale) InnerHeight() float64 {
	return math.Max(0, s.opts.Height-s.opts.Margin.Top-s.opts.Margin.Bottom)
}

// X maps t onto the horizontal axis. A degenerate time domain maps every
// timestamp to the left edge.
func (s Scale) X(t time.Time) float64 {
	left := s.opts.Margin.Left
	span := s.DateRangeMax.Sub(s.DateRangeMin)
	if span <= 0 {
		return left
	}
	frac := float64(t.Sub(s.DateRangeMin)) / float64(span)
	return left + frac*s.InnerWidth()
}

// Y maps price onto the vertical axis; higher prices get smaller y.
func (s Scale) Y(price float64) float64 {
	h := s.InnerHeight()
	if s.PriceRange <= 0 || isBad(price) {
		return s.opts.Margin.Top + h
	}
	return s.opts.Margin.Top + h - ((price-s.MinPrice)/s.PriceRange)*h
}

// Degenerate reports whether every point shares one timestamp (or there are none).
func (s Scale) Degenerate() bool {
	return !s.DateRangeMax.After(s.DateRangeMin)
}

type bounds struct {
	min, max float64
	ok       bool
}

func (b *bounds) add(v float64) {
	if isBad(v) {
		return
	}
	if !b.ok {
		b.min, b.max, b.ok = v, v, true
		return
	}
	b.min = math.Min(b.min, v)
	b.max = math.Max(b.max, v)
}

type timeBounds struct {
	min, max time.Time
}

func (b *timeBounds) add(t time.Time) {
	if t.IsZero() {
		return
	}
	if b.min.IsZero() || t.Before(b.min) {
		b.min = t
	}
	if b.max.IsZero() || t.After(b.max) {
		b.max = t
	}
}

func isBad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

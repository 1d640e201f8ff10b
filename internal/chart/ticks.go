package chart

import (
	"strconv"
	"time"
)

// Tick is one axis label and its pixel position.
type Tick struct {
	Pos   float64 `json:"pos"`
	Label string  `json:"label"`
}

// PriceTicks returns n+1 evenly spaced ticks from MinPrice to MaxPrice.
func PriceTicks(s Scale, n int) []Tick {
	if n < 1 {
		n = 1
	}
	ticks := make([]Tick, 0, n+1)
	step := s.PriceRange / float64(n)
	for i := 0; i <= n; i++ {
		price := s.MinPrice + step*float64(i)
		ticks = append(ticks, Tick{
			Pos:   s.Y(price),
			Label: strconv.FormatFloat(price, 'f', 2, 64),
		})
	}
	return ticks
}

// TimeTicks returns n+1 evenly spaced ticks across the time domain, formatted
// with layout. A degenerate domain yields a single tick; no timestamps yield none.
func TimeTicks(s Scale, n int, layout string) []Tick {
	if s.DateRangeMin.IsZero() {
		return nil
	}
	if layout == "" {
		layout = "01-02 15:04"
	}
	if s.Degenerate() {
		return []Tick{{Pos: s.X(s.DateRangeMin), Label: s.DateRangeMin.Format(layout)}}
	}
	if n < 1 {
		n = 1
	}

	span := s.DateRangeMax.Sub(s.DateRangeMin)
	ticks := make([]Tick, 0, n+1)
	for i := 0; i <= n; i++ {
		t := s.DateRangeMin.Add(time.Duration(float64(span) * float64(i) / float64(n)))
		ticks = append(ticks, Tick{Pos: s.X(t), Label: t.Format(layout)})
	}
	return ticks
}

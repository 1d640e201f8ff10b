package metrics

import "time"

// ViewRecorder is the slice of metrics the dashboard views need.
type ViewRecorder interface {
	ViewRefreshed(view string, elapsed time.Duration)
	ViewFailure(view, source string)
	StaleResult(view string)
	DemoFallback()
	ChartRendered(candles int)
	ClientConnected()
	ClientDisconnected()
	Broadcast()
}

// MetricsWrapper adapts Metrics to ViewRecorder.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) ViewRefreshed(view string, elapsed time.Duration) {
	w.m.ViewRefreshes.WithLabelValues(view).Inc()
	w.m.ViewDuration.WithLabelValues(view).Observe(elapsed.Seconds())
}

func (w *MetricsWrapper) ViewFailure(view, source string) {
	w.m.ViewFailures.WithLabelValues(view, source).Inc()
}

func (w *MetricsWrapper) StaleResult(view string) {
	w.m.StaleDiscarded.WithLabelValues(view).Inc()
}

func (w *MetricsWrapper) DemoFallback() {
	w.m.DemoFallbacks.Inc()
}

func (w *MetricsWrapper) ChartRendered(candles int) {
	w.m.ChartPoints.Observe(float64(candles))
}

func (w *MetricsWrapper) ClientConnected() {
	w.m.WSClients.Inc()
}

func (w *MetricsWrapper) ClientDisconnected() {
	w.m.WSClients.Dec()
}

func (w *MetricsWrapper) Broadcast() {
	w.m.WSBroadcasts.Inc()
}

// NopRecorder discards everything. Used by tools that run without a metrics server.
type NopRecorder struct{}

func (NopRecorder) ViewRefreshed(string, time.Duration) {}
func (NopRecorder) ViewFailure(string, string)          {}
func (NopRecorder) StaleResult(string)                  {}
func (NopRecorder) DemoFallback()                       {}
func (NopRecorder) ChartRendered(int)                   {}
func (NopRecorder) ClientConnected()                    {}
func (NopRecorder) ClientDisconnected()                 {}
func (NopRecorder) Broadcast()                          {}

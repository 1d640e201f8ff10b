package dashboard

import (
	"sync"

	"forecast-dashboard/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Ticket is handed out when a view refresh starts and presented when its
// result arrives.
type Ticket struct {
	View ViewKind
	Key  string
	Seq  uint64
}

// Store holds the committed state of every view. Results are applied
// latest-wins: a result is dropped if a newer refresh of the same view has
// started, or the selection has moved on, since its ticket was issued.
type Store struct {
	mu        sync.RWMutex
	seq       map[ViewKind]uint64
	selection Selection

	chart      *ChartView
	monitoring *MonitoringView
	portfolio  *PortfolioView

	stale    map[ViewKind]int
	recorder metrics.ViewRecorder
	onCommit []func(Update)
}

func NewStore(initial Selection, rec metrics.ViewRecorder) *Store {
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	return &Store{
		seq:       make(map[ViewKind]uint64),
		selection: initial,
		stale:     make(map[ViewKind]int),
		recorder:  rec,
	}
}

// OnCommit registers fn to run after every applied result. fn runs without
// the store lock held.
func (s *Store) OnCommit(fn func(Update)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommit = append(s.onCommit, fn)
}

// Select changes the current selection. In-flight refreshes for the old
// selection will be discarded on commit.
func (s *Store) Select(sel Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = sel
}

// Selection returns the current selection.
func (s *Store) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Begin starts a refresh of view under key and makes it the latest one.
// The key is checked against the selection on commit, not here.
func (s *Store) Begin(view ViewKind, key string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[view]++
	return Ticket{View: view, Key: key, Seq: s.seq[view]}
}

// Commit applies v if t is the latest ticket for its view and its key still
// matches the current selection. It reports whether v was applied.
func (s *Store) Commit(t Ticket, v interface{}) bool {
	s.mu.Lock()
	if t.Seq != s.seq[t.View] || t.Key != s.selection.Key(t.View) {
		s.stale[t.View]++
		latest := s.seq[t.View]
		s.mu.Unlock()

		s.recorder.StaleResult(string(t.View))
		log.Debug().
			Str("view", string(t.View)).
			Str("key", t.Key).
			Uint64("seq", t.Seq).
			Uint64("latest", latest).
			Msg("discarding stale view result")
		return false
	}

	switch view := v.(type) {
	case ChartView:
		s.chart = &view
	case *ChartView:
		s.chart = view
	case MonitoringView:
		s.monitoring = &view
	case *MonitoringView:
		s.monitoring = view
	case PortfolioView:
		s.portfolio = &view
	case *PortfolioView:
		s.portfolio = view
	default:
		s.mu.Unlock()
		log.Error().Str("view", string(t.View)).Msgf("unexpected view type %T", v)
		return false
	}
	hooks := make([]func(Update), len(s.onCommit))
	copy(hooks, s.onCommit)
	s.mu.Unlock()

	u := Update{View: t.View, Key: t.Key, Seq: t.Seq, Data: v}
	for _, fn := range hooks {
		fn(u)
	}
	return true
}

// Chart returns the committed chart view, if any.
func (s *Store) Chart() (ChartView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.chart == nil {
		return ChartView{}, false
	}
	return *s.chart, true
}

// Monitoring returns the committed monitoring view, if any.
func (s *Store) Monitoring() (MonitoringView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.monitoring == nil {
		return MonitoringView{}, false
	}
	return *s.monitoring, true
}

// Portfolio returns the committed portfolio view, if any.
func (s *Store) Portfolio() (PortfolioView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.portfolio == nil {
		return PortfolioView{}, false
	}
	return *s.portfolio, true
}

// Snapshot returns an update for every committed view.
func (s *Store) Snapshot() []Update {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Update
	if s.chart != nil {
		out = append(out, Update{View: ViewChart, Key: s.selection.Key(ViewChart), Seq: s.seq[ViewChart], Data: *s.chart})
	}
	if s.monitoring != nil {
		out = append(out, Update{View: ViewMonitoring, Key: s.selection.Key(ViewMonitoring), Seq: s.seq[ViewMonitoring], Data: *s.monitoring})
	}
	if s.portfolio != nil {
		out = append(out, Update{View: ViewPortfolio, Key: s.selection.Key(ViewPortfolio), Seq: s.seq[ViewPortfolio], Data: *s.portfolio})
	}
	return out
}

// StaleCount returns how many results for view were discarded.
func (s *Store) StaleCount(view ViewKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale[view]
}

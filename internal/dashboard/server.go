// Package dashboard serves the forecast dashboard: the price chart with its
// forecast and error overlay, model monitoring and the simulated portfolio.
//
// Views are built by a Loader, committed to a Store under latest-wins
// tickets, and pushed to browsers over a websocket as they change. The HTML
// page renders the same views server-side as SVG.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"forecast-dashboard/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Config holds the server settings.
type Config struct {
	Port            int
	Defaults        Selection
	RefreshInterval time.Duration
	RecheckDelay    time.Duration
}

// Server is the dashboard HTTP and websocket server.
type Server struct {
	svc      Service
	loader   *Loader
	store    *Store
	cfg      Config
	recorder metrics.ViewRecorder

	server    *http.Server
	router    *mux.Router
	refresher *Refresher

	upgrader         websocket.Upgrader
	clients          map[*websocket.Conn]bool
	clientsMu        sync.Mutex
	broadcastChannel chan Update
	stopChannel      chan struct{}
	isRunning        bool
	mu               sync.RWMutex
}

// NewServer wires routes, the store and the refresher. Nothing runs until Start.
func NewServer(svc Service, loader *Loader, cfg Config, rec metrics.ViewRecorder) *Server {
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	s := &Server{
		svc:              svc,
		loader:           loader,
		store:            NewStore(cfg.Defaults, rec),
		cfg:              cfg,
		recorder:         rec,
		upgrader:         websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:          make(map[*websocket.Conn]bool),
		broadcastChannel: make(chan Update, 100),
		stopChannel:      make(chan struct{}),
	}
	s.refresher = NewRefresher(cfg.RefreshInterval, cfg.RecheckDelay, s.RefreshAll)
	s.store.OnCommit(s.enqueue)

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/instruments", s.handleInstruments).Methods(http.MethodGet)
	a.HandleFunc("/models", s.handleModels).Methods(http.MethodGet)
	a.HandleFunc("/models/retrain", s.handleRetrain).Methods(http.MethodPost)
	a.HandleFunc("/models/incremental-update", s.handleIncrementalUpdate).Methods(http.MethodPost)
	a.HandleFunc("/models/versions/{symbol}", s.handleModelVersions).Methods(http.MethodGet)
	a.HandleFunc("/chart/{symbol}", s.handleChart).Methods(http.MethodGet)
	a.HandleFunc("/forecast", s.handleForecast).Methods(http.MethodPost)
	a.HandleFunc("/monitoring/{symbol}", s.handleMonitoring).Methods(http.MethodGet)
	a.HandleFunc("/alerts/{id}/resolve", s.handleResolveAlert).Methods(http.MethodPost)
	a.HandleFunc("/portfolio/trade", s.handleTrade).Methods(http.MethodPost)
	a.HandleFunc("/portfolio/create", s.handleCreatePortfolio).Methods(http.MethodPost)
	a.HandleFunc("/portfolio/{user}", s.handlePortfolio).Methods(http.MethodGet)
	a.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router = r

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store exposes the view store.
func (s *Server) Store() *Store {
	return s.store
}

// Start starts the broadcaster, the refresher and the HTTP listener.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("dashboard is already running")
	}

	go s.clientBroadcaster()
	if err := s.refresher.Start(ctx); err != nil {
		return err
	}

	go func() {
		log.Info().
			Str("address", s.server.Addr).
			Msg("Starting dashboard server")

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Dashboard server failed")
		}
	}()

	s.isRunning = true
	log.Info().
		Str("symbol", s.cfg.Defaults.Symbol).
		Dur("refresh_interval", s.cfg.RefreshInterval).
		Dur("recheck_delay", s.cfg.RecheckDelay).
		Msg("Dashboard started successfully")
	return nil
}

// Stop shuts the server down and disconnects every websocket client.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.refresher.Stop()
	close(s.stopChannel)

	// Close all WebSocket connections
	s.clientsMu.Lock()
	for client := range s.clients {
		client.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown dashboard server")
		return err
	}

	s.isRunning = false
	log.Info().Msg("Dashboard stopped")
	return nil
}

// RefreshChart rebuilds the chart view. The view is returned even when a
// newer refresh superseded it; committed reports whether it was applied.
func (s *Server) RefreshChart(ctx context.Context, req ChartRequest) (v ChartView, committed bool, err error) {
	t := s.store.Begin(ViewChart, req.Selection.Key(ViewChart))
	v, err = s.loader.LoadChart(ctx, req)
	if err != nil {
		return ChartView{}, false, err
	}
	return v, s.store.Commit(t, v), nil
}

// RefreshMonitoring rebuilds the monitoring view for symbol.
func (s *Server) RefreshMonitoring(ctx context.Context, symbol string) (MonitoringView, bool) {
	sel := Selection{Symbol: symbol}
	t := s.store.Begin(ViewMonitoring, sel.Key(ViewMonitoring))
	v := s.loader.LoadMonitoring(ctx, symbol)
	return v, s.store.Commit(t, v)
}

// RefreshPortfolio rebuilds the portfolio view for userID.
func (s *Server) RefreshPortfolio(ctx context.Context, userID string) (PortfolioView, bool) {
	sel := Selection{UserID: userID}
	t := s.store.Begin(ViewPortfolio, sel.Key(ViewPortfolio))
	v := s.loader.LoadPortfolio(ctx, userID)
	return v, s.store.Commit(t, v)
}

// RefreshAll refreshes every view for the current selection. Forecasts
// already on screen are kept rather than regenerated.
func (s *Server) RefreshAll(ctx context.Context) {
	sel := s.store.Selection()

	req := ChartRequest{Selection: sel}
	if prev, ok := s.store.Chart(); ok && prev.Selection.Key(ViewChart) == sel.Key(ViewChart) {
		req.Forecasts = prev.Forecasts
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		if _, _, err := s.RefreshChart(ctx, req); err != nil {
			log.Warn().Err(err).Str("symbol", sel.Symbol).Msg("chart refresh failed")
		}
	}()
	go func() {
		defer wg.Done()
		s.RefreshMonitoring(ctx, sel.Symbol)
	}()
	go func() {
		defer wg.Done()
		s.RefreshPortfolio(ctx, sel.UserID)
	}()
	wg.Wait()
}

// enqueue hands a committed update to the broadcaster without blocking.
func (s *Server) enqueue(u Update) {
	select {
	case s.broadcastChannel <- u:
	default:
		// Channel full, skip this update
		log.Debug().Str("view", string(u.View)).Msg("broadcast queue full, dropping update")
	}
}

// clientBroadcaster broadcasts committed views to all connected WebSocket clients
func (s *Server) clientBroadcaster() {
	for {
		select {
		case u := <-s.broadcastChannel:
			s.broadcastToClients(u)
		case <-s.stopChannel:
			return
		}
	}
}

func (s *Server) broadcastToClients(u Update) {
	data, err := json.Marshal(u)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal view for broadcast")
		return
	}

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for client := range s.clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Warn().Err(err).Msg("Failed to send message to WebSocket client")
			client.Close()
			delete(s.clients, client)
			s.recorder.ClientDisconnected()
		}
	}
	s.recorder.Broadcast()
}

// handleWebSocket registers a client and sends it every committed view.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	s.clientsMu.Lock()
	for _, u := range s.store.Snapshot() {
		if data, err := json.Marshal(u); err == nil {
			conn.WriteMessage(websocket.TextMessage, data)
		}
	}
	s.clients[conn] = true
	s.clientsMu.Unlock()
	s.recorder.ClientConnected()

	// Keep connection alive
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.clientsMu.Lock()
	if s.clients[conn] {
		delete(s.clients, conn)
		s.recorder.ClientDisconnected()
	}
	s.clientsMu.Unlock()
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

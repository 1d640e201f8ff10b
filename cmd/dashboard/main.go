package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forecast-dashboard/internal/api"
	"forecast-dashboard/internal/cfg"
	"forecast-dashboard/internal/chart"
	"forecast-dashboard/internal/dashboard"
	"forecast-dashboard/internal/demo"
	"forecast-dashboard/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// demoVolatility is the per-interval volatility of generated demo prices.
const demoVolatility = 0.01

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	cfg.ConfigureLogging(c.LogLevel, c.LogFormat)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	startMetricsServer(ctx, c)

	client := api.New(c.APIBaseURL,
		api.WithTimeout(c.RESTTimeout),
		api.WithRecorder(m),
		api.WithUserAgent("forecast-dashboard"),
	)

	var provider demo.Provider
	if c.DemoMode {
		provider = demo.NewRandomWalk(demoVolatility)
		log.Info().Msg("demo mode enabled, generated data is used when the service is unreachable")
	}

	loader := dashboard.NewLoader(client, provider, dashboard.LoaderConfig{
		Chart:      c.ChartOptions(),
		DisplayCap: c.DisplayCap,
		Tolerance:  c.ErrorMatchTolerance,
		Thresholds: chart.DefaultThresholds(),
	}, mw)

	server := dashboard.NewServer(client, loader, dashboard.Config{
		Port: c.DashboardPort,
		Defaults: dashboard.Selection{
			Symbol:  c.DefaultSymbol,
			ModelID: c.DefaultModel,
			Horizon: c.DefaultHorizon,
			UserID:  c.UserID,
		},
		RefreshInterval: c.RefreshInterval,
		RecheckDelay:    c.RecheckDelay,
	}, mw)

	if status, ok := client.Health(ctx); ok {
		log.Info().Str("service", status.Service).Str("status", status.Status).Msg("forecasting service reachable")
	} else {
		log.Warn().Str("url", c.APIBaseURL).Msg("forecasting service unhealthy or unreachable")
	}

	if err := server.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("dashboard start failed")
	}

	log.Info().
		Str("api", c.APIBaseURL).
		Int("port", c.DashboardPort).
		Str("symbol", c.DefaultSymbol).
		Dur("refresh", c.RefreshInterval).
		Msg("forecast dashboard running")

	// Initial load so the first page view and websocket clients have data.
	go server.RefreshAll(ctx)

	waitForShutdown(ctx, cancel)

	if err := server.Stop(); err != nil {
		log.Error().Err(err).Msg("dashboard stop failed")
	}
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(ctx context.Context, c cfg.Settings) {
	go func() {
		mux := http.NewServeMux()

		// Add health endpoint
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		// Add metrics endpoint
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", c.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			if err := server.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to shutdown metrics server")
			}
		}()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

// waitForShutdown waits for shutdown signals and cancels the root context
func waitForShutdown(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
	cancel()
}

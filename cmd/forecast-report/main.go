package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"forecast-dashboard/internal/api"
	"forecast-dashboard/internal/cfg"
	"forecast-dashboard/internal/chart"
	"forecast-dashboard/internal/demo"
	"forecast-dashboard/internal/model"
	"forecast-dashboard/internal/report"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Parse command line arguments
	var (
		symbol     = flag.String("symbol", "", "Instrument symbol (overrides config)")
		modelID    = flag.String("model", "", "Forecast model id (overrides config)")
		horizon    = flag.Int("horizon", 0, "Forecast horizon in hours (overrides config)")
		outputPath = flag.String("output", "reports", "Output directory for results")
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		apiURL     = flag.String("api", "", "Forecasting service base URL (overrides config)")
		useDemo    = flag.Bool("demo", false, "Fall back to generated data when the service is unreachable")
	)
	flag.Parse()

	// Setup logging
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	config, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Override config with command line arguments
	if *symbol != "" {
		config.DefaultSymbol = strings.ToUpper(*symbol)
	}
	if *modelID != "" {
		config.DefaultModel = *modelID
	}
	if *horizon > 0 {
		config.DefaultHorizon = *horizon
	}
	if *apiURL != "" {
		config.APIBaseURL = *apiURL
	}
	if *useDemo {
		config.DemoMode = true
	}

	// Print configuration
	fmt.Println("=== Forecast Report Configuration ===")
	fmt.Printf("Service: %s\n", config.APIBaseURL)
	fmt.Printf("Symbol: %s\n", config.DefaultSymbol)
	fmt.Printf("Model: %s\n", config.DefaultModel)
	fmt.Printf("Horizon: %dh\n", config.DefaultHorizon)
	fmt.Printf("Output Directory: %s\n", *outputPath)
	fmt.Printf("Demo Fallback: %t\n", config.DemoMode)
	fmt.Println("=====================================")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := api.New(config.APIBaseURL, api.WithTimeout(config.RESTTimeout), api.WithUserAgent("forecast-report"))

	results, err := collect(ctx, client, config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to collect report data")
	}

	// Generate reports
	reporter := report.NewReporter(results, *outputPath)
	if err := reporter.GenerateReport(); err != nil {
		log.Error().Err(err).Msg("Failed to generate reports")
	}

	// Print summary to console
	reporter.PrintSummary()

	log.Info().
		Str("output", *outputPath).
		Msg("Report completed successfully")
}

// collect fetches history, a fresh forecast and the error history, falling
// back to demo data when allowed and the service is unreachable.
func collect(ctx context.Context, client *api.Client, c cfg.Settings) (*report.Results, error) {
	var (
		walk      *demo.RandomWalk
		usingDemo bool
	)
	if c.DemoMode {
		walk = demo.NewRandomWalk(0.01)
	}

	history, err := client.HistoricalData(ctx, c.DefaultSymbol)
	if err != nil {
		if walk == nil || !api.IsUnavailable(err) {
			return nil, fmt.Errorf("historical data for %s: %w", c.DefaultSymbol, err)
		}
		log.Warn().Err(err).Msg("Service unreachable, using demo history")
		history = walk.History(c.DefaultSymbol, 100)
		usingDemo = true
	}

	var forecasts []model.ForecastPoint
	if usingDemo {
		forecasts = walk.Forecast(c.DefaultSymbol, history, c.DefaultHorizon)
	} else {
		forecasts, err = client.GenerateForecast(ctx, model.ForecastRequest{
			Symbol:  c.DefaultSymbol,
			Horizon: c.DefaultHorizon,
			ModelID: c.DefaultModel,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Forecast generation failed, report will have no forecast")
			forecasts = []model.ForecastPoint{}
		}
	}

	var errs []model.PredictionErrorPoint
	if usingDemo {
		errs = walk.Errors(history, forecasts)
	} else {
		errs = client.PredictionErrors(ctx, c.DefaultSymbol)
	}

	log.Info().
		Str("symbol", c.DefaultSymbol).
		Int("history", len(history)).
		Int("forecasts", len(forecasts)).
		Int("errors", len(errs)).
		Bool("demo", usingDemo).
		Msg("Report data collected")

	res := report.NewResults(c.DefaultSymbol, c.DefaultModel, c.DefaultHorizon,
		chart.Tail(history, c.DisplayCap), forecasts, errs, c.ChartOptions(), chart.DefaultThresholds())
	res.Demo = usingDemo
	return res, nil
}

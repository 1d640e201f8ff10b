package cfg

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var configEnvKeys = []string{
	"CONFIG_FILE", "API_BASE_URL", "DASHBOARD_PORT", "METRICS_PORT", "REST_TIMEOUT",
	"REFRESH_INTERVAL", "RECHECK_DELAY", "DEFAULT_SYMBOL", "DEFAULT_MODEL",
	"DEFAULT_HORIZON", "USER_ID", "DEMO_MODE", "CHART_WIDTH", "CHART_HEIGHT",
	"CHART_PADDING", "DISPLAY_CAP", "ERROR_MATCH_TOLERANCE", "LOG_LEVEL", "LOG_FORMAT",
}

// clearConfigEnv unsets every config key for the duration of the test.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		if v, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, v) })
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.APIBaseURL != "http://localhost:5000" {
					t.Errorf("expected default APIBaseURL, got %s", settings.APIBaseURL)
				}
				if settings.DashboardPort != 8050 {
					t.Errorf("expected default DashboardPort 8050, got %d", settings.DashboardPort)
				}
				if settings.RESTTimeout != 10*time.Second {
					t.Errorf("expected default RESTTimeout 10s, got %v", settings.RESTTimeout)
				}
				if settings.DefaultSymbol != "AAPL" || settings.DefaultModel != "ensemble" {
					t.Errorf("unexpected default selection %s/%s", settings.DefaultSymbol, settings.DefaultModel)
				}
				if settings.DefaultHorizon != 24 {
					t.Errorf("expected default horizon 24, got %d", settings.DefaultHorizon)
				}
				if settings.ErrorMatchTolerance != 12*time.Hour {
					t.Errorf("expected default tolerance 12h, got %v", settings.ErrorMatchTolerance)
				}
				if settings.DemoMode {
					t.Error("expected DemoMode to default to false")
				}
			},
		},
		{
			name: "custom settings",
			envVars: map[string]string{
				"API_BASE_URL":     "https://forecast.internal:8443",
				"DASHBOARD_PORT":   "8100",
				"REFRESH_INTERVAL": "30s",
				"DEFAULT_SYMBOL":   "MSFT",
				"DEFAULT_HORIZON":  "48",
				"DEMO_MODE":        "true",
				"CHART_PADDING":    "0.1",
				"LOG_FORMAT":       "console",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.APIBaseURL != "https://forecast.internal:8443" {
					t.Errorf("expected custom APIBaseURL, got %s", settings.APIBaseURL)
				}
				if settings.DashboardPort != 8100 {
					t.Errorf("expected DashboardPort 8100, got %d", settings.DashboardPort)
				}
				if settings.RefreshInterval != 30*time.Second {
					t.Errorf("expected RefreshInterval 30s, got %v", settings.RefreshInterval)
				}
				if settings.DefaultSymbol != "MSFT" || settings.DefaultHorizon != 48 {
					t.Errorf("unexpected selection %s/%d", settings.DefaultSymbol, settings.DefaultHorizon)
				}
				if !settings.DemoMode {
					t.Error("expected DemoMode to be true")
				}
				if settings.ChartPadding != 0.1 {
					t.Errorf("expected ChartPadding 0.1, got %f", settings.ChartPadding)
				}
			},
		},
		{
			name:    "invalid port",
			envVars: map[string]string{"DASHBOARD_PORT": "80"},
			wantErr: true,
		},
		{
			name:    "colliding ports",
			envVars: map[string]string{"DASHBOARD_PORT": "9090"},
			wantErr: true,
		},
		{
			name:    "invalid base url",
			envVars: map[string]string{"API_BASE_URL": "localhost:5000"},
			wantErr: true,
		},
		{
			name:    "unparseable values fall back to defaults",
			envVars: map[string]string{"REST_TIMEOUT": "soon", "CHART_WIDTH": "wide"},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.RESTTimeout != 10*time.Second {
					t.Errorf("expected RESTTimeout fallback 10s, got %v", settings.RESTTimeout)
				}
				if settings.ChartWidth != 960 {
					t.Errorf("expected ChartWidth fallback 960, got %d", settings.ChartWidth)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			settings, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.validate != nil && err == nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	clearConfigEnv(t)

	content := `
api:
  baseURL: "http://forecaster:5000"
  timeout: "5s"
dashboard:
  port: 8060
  refreshInterval: "2m"
  demoMode: true
defaults:
  symbol: "TSLA"
  horizon: 12
chart:
  width: 1200
  errorMatchTolerance: "6h"
system:
  metricsPort: 9191
  logLevel: "debug"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DEFAULT_HORIZON", "36")

	settings, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if settings.APIBaseURL != "http://forecaster:5000" {
		t.Errorf("expected APIBaseURL from file, got %s", settings.APIBaseURL)
	}
	if settings.RESTTimeout != 5*time.Second {
		t.Errorf("expected RESTTimeout 5s, got %v", settings.RESTTimeout)
	}
	if settings.RefreshInterval != 2*time.Minute {
		t.Errorf("expected RefreshInterval 2m, got %v", settings.RefreshInterval)
	}
	if settings.DefaultSymbol != "TSLA" {
		t.Errorf("expected symbol TSLA, got %s", settings.DefaultSymbol)
	}
	if settings.DefaultHorizon != 36 {
		t.Errorf("expected env override horizon 36, got %d", settings.DefaultHorizon)
	}
	if settings.DefaultModel != "ensemble" {
		t.Errorf("expected default model, got %s", settings.DefaultModel)
	}
	if settings.ChartWidth != 1200 || settings.ChartHeight != 420 {
		t.Errorf("unexpected chart size %dx%d", settings.ChartWidth, settings.ChartHeight)
	}
	if settings.ErrorMatchTolerance != 6*time.Hour {
		t.Errorf("expected tolerance 6h, got %v", settings.ErrorMatchTolerance)
	}
	if settings.MetricsPort != 9191 || settings.LogLevel != "debug" {
		t.Errorf("unexpected system settings %d/%s", settings.MetricsPort, settings.LogLevel)
	}
	if !settings.DemoMode {
		t.Error("expected DemoMode from file")
	}
}

func TestLoadFromYAML_MissingFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("DEFAULT_SYMBOL=NVDA\n"), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("DEFAULT_SYMBOL") })

	LoadDotEnv(path, filepath.Join(t.TempDir(), "absent.env"))

	if got := os.Getenv("DEFAULT_SYMBOL"); got != "NVDA" {
		t.Errorf("expected DEFAULT_SYMBOL from env file, got %q", got)
	}
}

func TestChartOptions(t *testing.T) {
	s := Settings{ChartWidth: 800, ChartHeight: 300, ChartPadding: 0.08}
	opts := s.ChartOptions()

	if opts.Width != 800 || opts.Height != 300 {
		t.Errorf("unexpected size %vx%v", opts.Width, opts.Height)
	}
	if opts.PaddingFactor != 0.08 {
		t.Errorf("expected padding 0.08, got %v", opts.PaddingFactor)
	}
	if opts.Margin.Left <= 0 {
		t.Error("expected default margins")
	}
}

func TestConfigureLogging(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	ConfigureLoggingTo(&buf, "warn", "json")
	log.Info().Msg("hidden")
	log.Warn().Str("symbol", "AAPL").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, `"symbol":"AAPL"`) {
		t.Errorf("expected structured field in output, got %s", out)
	}

	ConfigureLoggingTo(&buf, "bogus", "json")
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("expected info fallback, got %v", zerolog.GlobalLevel())
	}
}

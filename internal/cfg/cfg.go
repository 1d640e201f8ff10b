package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"forecast-dashboard/internal/chart"
	"forecast-dashboard/internal/common"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	APIBaseURL          string
	DashboardPort       int
	MetricsPort         int
	RESTTimeout         time.Duration
	RefreshInterval     time.Duration
	RecheckDelay        time.Duration
	DefaultSymbol       string
	DefaultModel        string
	DefaultHorizon      int
	UserID              string
	DemoMode            bool
	ChartWidth          int
	ChartHeight         int
	ChartPadding        float64
	DisplayCap          int
	ErrorMatchTolerance time.Duration
	LogLevel            string
	LogFormat           string
}

type ConfigFile struct {
	API struct {
		BaseURL string `yaml:"baseURL"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`

	Dashboard struct {
		Port            int    `yaml:"port"`
		RefreshInterval string `yaml:"refreshInterval"`
		RecheckDelay    string `yaml:"recheckDelay"`
		DemoMode        bool   `yaml:"demoMode"`
		UserID          string `yaml:"userID"`
	} `yaml:"dashboard"`

	Defaults struct {
		Symbol  string `yaml:"symbol"`
		Model   string `yaml:"model"`
		Horizon int    `yaml:"horizon"`
	} `yaml:"defaults"`

	Chart struct {
		Width               int     `yaml:"width"`
		Height              int     `yaml:"height"`
		Padding             float64 `yaml:"padding"`
		DisplayCap          int     `yaml:"displayCap"`
		ErrorMatchTolerance string  `yaml:"errorMatchTolerance"`
	} `yaml:"chart"`

	System struct {
		MetricsPort int    `yaml:"metricsPort"`
		LogLevel    string `yaml:"logLevel"`
		LogFormat   string `yaml:"logFormat"`
	} `yaml:"system"`
}

// LoadDotEnv loads .env files into the environment. Missing files are not an error.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

func Load() (Settings, error) {
	LoadDotEnv()

	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	settings := Settings{
		APIBaseURL:          getEnvOrDefault(common.EnvAPIBaseURL, orString(config.API.BaseURL, common.DefaultAPIBaseURL)),
		DashboardPort:       getIntOrDefault(common.EnvDashboardPort, orInt(config.Dashboard.Port, common.DefaultDashboardPort)),
		MetricsPort:         getIntOrDefault(common.EnvMetricsPort, orInt(config.System.MetricsPort, common.DefaultMetricsPort)),
		RESTTimeout:         getDurationOrDefault(common.EnvRESTTimeout, parseDuration(config.API.Timeout, common.DefaultRESTTimeoutSec*time.Second)),
		RefreshInterval:     getDurationOrDefault(common.EnvRefreshInterval, parseDuration(config.Dashboard.RefreshInterval, common.DefaultRefreshIntervalSec*time.Second)),
		RecheckDelay:        getDurationOrDefault(common.EnvRecheckDelay, parseDuration(config.Dashboard.RecheckDelay, common.DefaultRecheckDelaySec*time.Second)),
		DefaultSymbol:       getEnvOrDefault(common.EnvDefaultSymbol, orString(config.Defaults.Symbol, common.DefaultSymbol)),
		DefaultModel:        getEnvOrDefault(common.EnvDefaultModel, orString(config.Defaults.Model, common.DefaultModel)),
		DefaultHorizon:      getIntOrDefault(common.EnvDefaultHorizon, orInt(config.Defaults.Horizon, common.DefaultHorizon)),
		UserID:              getEnvOrDefault(common.EnvUserID, orString(config.Dashboard.UserID, common.DefaultUserID)),
		DemoMode:            getBoolOrDefault(common.EnvDemoMode, config.Dashboard.DemoMode),
		ChartWidth:          getIntOrDefault(common.EnvChartWidth, orInt(config.Chart.Width, common.DefaultChartWidth)),
		ChartHeight:         getIntOrDefault(common.EnvChartHeight, orInt(config.Chart.Height, common.DefaultChartHeight)),
		ChartPadding:        getFloatOrDefault(common.EnvChartPadding, orFloat(config.Chart.Padding, common.DefaultChartPadding)),
		DisplayCap:          getIntOrDefault(common.EnvDisplayCap, orInt(config.Chart.DisplayCap, common.DefaultDisplayCap)),
		ErrorMatchTolerance: getDurationOrDefault(common.EnvErrorMatchTolerance, parseDuration(config.Chart.ErrorMatchTolerance, common.DefaultErrorMatchToleranceSec*time.Second)),
		LogLevel:            getEnvOrDefault(common.EnvLogLevel, orString(config.System.LogLevel, common.DefaultLogLevel)),
		LogFormat:           getEnvOrDefault(common.EnvLogFormat, orString(config.System.LogFormat, common.DefaultLogFormat)),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		APIBaseURL:          getEnvOrDefault(common.EnvAPIBaseURL, common.DefaultAPIBaseURL),
		DashboardPort:       getIntOrDefault(common.EnvDashboardPort, common.DefaultDashboardPort),
		MetricsPort:         getIntOrDefault(common.EnvMetricsPort, common.DefaultMetricsPort),
		RESTTimeout:         getDurationOrDefault(common.EnvRESTTimeout, common.DefaultRESTTimeoutSec*time.Second),
		RefreshInterval:     getDurationOrDefault(common.EnvRefreshInterval, common.DefaultRefreshIntervalSec*time.Second),
		RecheckDelay:        getDurationOrDefault(common.EnvRecheckDelay, common.DefaultRecheckDelaySec*time.Second),
		DefaultSymbol:       getEnvOrDefault(common.EnvDefaultSymbol, common.DefaultSymbol),
		DefaultModel:        getEnvOrDefault(common.EnvDefaultModel, common.DefaultModel),
		DefaultHorizon:      getIntOrDefault(common.EnvDefaultHorizon, common.DefaultHorizon),
		UserID:              getEnvOrDefault(common.EnvUserID, common.DefaultUserID),
		DemoMode:            getBoolOrDefault(common.EnvDemoMode, false),
		ChartWidth:          getIntOrDefault(common.EnvChartWidth, common.DefaultChartWidth),
		ChartHeight:         getIntOrDefault(common.EnvChartHeight, common.DefaultChartHeight),
		ChartPadding:        getFloatOrDefault(common.EnvChartPadding, common.DefaultChartPadding),
		DisplayCap:          getIntOrDefault(common.EnvDisplayCap, common.DefaultDisplayCap),
		ErrorMatchTolerance: getDurationOrDefault(common.EnvErrorMatchTolerance, common.DefaultErrorMatchToleranceSec*time.Second),
		LogLevel:            getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		LogFormat:           getEnvOrDefault(common.EnvLogFormat, common.DefaultLogFormat),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// ChartOptions converts the chart settings into drawing options.
func (s *Settings) ChartOptions() chart.Options {
	opts := chart.DefaultOptions()
	opts.Width = float64(s.ChartWidth)
	opts.Height = float64(s.ChartHeight)
	opts.PaddingFactor = s.ChartPadding
	return opts
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseDuration(v string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultValue
}

func orString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func orFloat(v, def float64) float64 {
	if v != 0 {
		return v
	}
	return def
}

// validateSettings performs comprehensive validation of configuration values
func validateSettings(settings *Settings) error {
	// Validate URLs and selections
	if settings.APIBaseURL == "" {
		return fmt.Errorf(common.ErrMsgAPIBaseURLRequired)
	}
	if !strings.HasPrefix(settings.APIBaseURL, "http://") && !strings.HasPrefix(settings.APIBaseURL, "https://") {
		return fmt.Errorf("API base URL must start with http:// or https://, got %q", settings.APIBaseURL)
	}
	if settings.DefaultSymbol == "" {
		return fmt.Errorf(common.ErrMsgSymbolRequired)
	}
	if settings.DefaultModel == "" {
		return fmt.Errorf(common.ErrMsgModelRequired)
	}

	// Validate ports
	if settings.DashboardPort < common.MinPort || settings.DashboardPort > common.MaxPort {
		return fmt.Errorf("dashboard port must be between %d and %d, got %d", common.MinPort, common.MaxPort, settings.DashboardPort)
	}
	if settings.MetricsPort < common.MinPort || settings.MetricsPort > common.MaxPort {
		return fmt.Errorf("metrics port must be between %d and %d, got %d", common.MinPort, common.MaxPort, settings.MetricsPort)
	}
	if settings.DashboardPort == settings.MetricsPort {
		return fmt.Errorf("dashboard and metrics ports must differ, both are %d", settings.DashboardPort)
	}

	// Validate time durations
	if settings.RESTTimeout < time.Second || settings.RESTTimeout > time.Minute {
		return fmt.Errorf("REST timeout must be between 1s and 1m, got %v", settings.RESTTimeout)
	}
	if settings.RefreshInterval < 5*time.Second || settings.RefreshInterval > time.Hour {
		return fmt.Errorf("refresh interval must be between 5s and 1h, got %v", settings.RefreshInterval)
	}
	if settings.RecheckDelay < 0 || settings.RecheckDelay > time.Hour {
		return fmt.Errorf("recheck delay must be between 0 and 1h, got %v", settings.RecheckDelay)
	}
	if settings.ErrorMatchTolerance < 0 || settings.ErrorMatchTolerance > 7*24*time.Hour {
		return fmt.Errorf("error match tolerance must be between 0 and 168h, got %v", settings.ErrorMatchTolerance)
	}

	// Validate integer values
	if settings.DefaultHorizon < 1 || settings.DefaultHorizon > common.MaxHorizon {
		return fmt.Errorf("default horizon must be between 1 and %d hours, got %d", common.MaxHorizon, settings.DefaultHorizon)
	}
	if settings.ChartWidth < common.MinChartDimension || settings.ChartWidth > common.MaxChartDimension {
		return fmt.Errorf("chart width must be between %d and %d, got %d", common.MinChartDimension, common.MaxChartDimension, settings.ChartWidth)
	}
	if settings.ChartHeight < common.MinChartDimension || settings.ChartHeight > common.MaxChartDimension {
		return fmt.Errorf("chart height must be between %d and %d, got %d", common.MinChartDimension, common.MaxChartDimension, settings.ChartHeight)
	}
	if settings.DisplayCap < 0 || settings.DisplayCap > common.MaxDisplayCap {
		return fmt.Errorf("display cap must be between 0 and %d, got %d", common.MaxDisplayCap, settings.DisplayCap)
	}

	// Validate float values
	if settings.ChartPadding <= common.MinChartPadding || settings.ChartPadding > common.MaxChartPadding {
		return fmt.Errorf("chart padding must be between 0 and %.2f, got %f", common.MaxChartPadding, settings.ChartPadding)
	}

	// Validate logging
	switch settings.LogLevel {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("unknown log level %q", settings.LogLevel)
	}
	if settings.LogFormat != common.LogFormatJSON && settings.LogFormat != common.LogFormatConsole {
		return fmt.Errorf("log format must be %q or %q, got %q", common.LogFormatJSON, common.LogFormatConsole, settings.LogFormat)
	}

	return nil
}

package common

// Environment variable keys
const (
	EnvConfigFile          = "CONFIG_FILE"
	EnvAPIBaseURL          = "API_BASE_URL"
	EnvDashboardPort       = "DASHBOARD_PORT"
	EnvMetricsPort         = "METRICS_PORT"
	EnvRESTTimeout         = "REST_TIMEOUT"
	EnvRefreshInterval     = "REFRESH_INTERVAL"
	EnvRecheckDelay        = "RECHECK_DELAY"
	EnvDefaultSymbol       = "DEFAULT_SYMBOL"
	EnvDefaultModel        = "DEFAULT_MODEL"
	EnvDefaultHorizon      = "DEFAULT_HORIZON"
	EnvUserID              = "USER_ID"
	EnvDemoMode            = "DEMO_MODE"
	EnvChartWidth          = "CHART_WIDTH"
	EnvChartHeight         = "CHART_HEIGHT"
	EnvChartPadding        = "CHART_PADDING"
	EnvDisplayCap          = "DISPLAY_CAP"
	EnvErrorMatchTolerance = "ERROR_MATCH_TOLERANCE"
	EnvLogLevel            = "LOG_LEVEL"
	EnvLogFormat           = "LOG_FORMAT"
)

// Configuration defaults
const (
	DefaultAPIBaseURL     = "http://localhost:5000"
	DefaultDashboardPort  = 8050
	DefaultMetricsPort    = 9090
	DefaultSymbol         = "AAPL"
	DefaultModel          = "ensemble"
	DefaultHorizon        = 24 // hours
	DefaultUserID         = "default"
	DefaultChartWidth     = 960
	DefaultChartHeight    = 420
	DefaultChartPadding   = 0.05
	DefaultDisplayCap     = 50
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultInitialCapital = 10000.0
)

// Duration defaults, in seconds
const (
	DefaultRESTTimeoutSec         = 10
	DefaultRefreshIntervalSec     = 60
	DefaultRecheckDelaySec        = 30
	DefaultErrorMatchToleranceSec = 12 * 60 * 60
)

// Log formats
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// Validation constants
const (
	MinPort           = 1024
	MaxPort           = 65535
	MaxHorizon        = 720 // 30 days
	MinChartDimension = 100
	MaxChartDimension = 10000
	MinChartPadding   = 0.0
	MaxChartPadding   = 0.5
	MaxDisplayCap     = 1000
)

// Common error messages
const (
	ErrMsgAPIBaseURLRequired = "API base URL is required"
	ErrMsgSymbolRequired     = "default symbol is required"
	ErrMsgModelRequired      = "default model is required"
)

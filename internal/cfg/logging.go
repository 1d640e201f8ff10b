package cfg

import (
	"io"
	"os"
	"time"

	"forecast-dashboard/internal/common"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigureLogging sets the global zerolog level and output. Unknown levels
// fall back to info.
func ConfigureLogging(level, format string) {
	ConfigureLoggingTo(os.Stderr, level, format)
}

// ConfigureLoggingTo is ConfigureLogging with an explicit writer.
func ConfigureLoggingTo(w io.Writer, level, format string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if format == common.LogFormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// Package logging configures the zerolog logger shared by the commands.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger. Setup replaces it.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "DISABLED", "OFF":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Setup sets the global level and points Logger at w in console format.
// A nil writer means stderr.
func Setup(level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	zerolog.SetGlobalLevel(ParseLevel(level))
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	if f, ok := w.(*os.File); !ok || f != os.Stderr {
		out.NoColor = true
	}
	Logger = zerolog.New(out).With().Timestamp().Logger()
	Logger.Debug().Str("loglevel", zerolog.GlobalLevel().String()).Msg("logging set up")
	return Logger
}

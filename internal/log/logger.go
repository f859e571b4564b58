package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New logs JSON in production and colored console output elsewhere.
func New(environment string) zerolog.Logger {
	level := zerolog.DebugLevel
	if environment == "production" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	return zerolog.New(writer(environment == "production")).With().
		Timestamp().
		Str("service", "api").
		Str("env", environment).
		Logger()
}

// NewWithLevel is the worker's constructor; an unknown level falls back to info.
func NewWithLevel(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(writer(false)).With().
		Timestamp().
		Str("service", "worker").
		Logger()
}

func writer(structured bool) io.Writer {
	if structured {
		return os.Stdout
	}
	return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
}

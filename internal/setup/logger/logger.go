// Package logger builds the structured JSON logger used by the
// long-running services.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns a timestamped JSON logger at the given level, falling
// back to info for unknown levels.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Logger()
}

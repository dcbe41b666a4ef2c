// Package logging builds the zerolog logger shared by dashctl components.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a timestamped logger writing to w. format is "console" or
// "json"; an unparsable level falls back to info.
func New(level, format string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Dev gets pretty console output at debug
// level, everything else structured JSON at info.
func New(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	out := io.Writer(os.Stdout)
	level := zerolog.InfoLevel
	if env == "dev" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
		level = zerolog.DebugLevel
	}
	return zerolog.New(out).With().Timestamp().Logger().Level(level)
}

package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger tagged with the service name.
// Unknown levels fall back to info.
func New(service, level string) zerolog.Logger {
	return newLogger(os.Stdout, service, level, false)
}

// NewConsole is New with human readable output, used when running locally.
func NewConsole(service, level string) zerolog.Logger {
	return newLogger(os.Stdout, service, level, true)
}

func newLogger(out io.Writer, service, level string, console bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

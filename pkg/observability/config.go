// Package observability sets up structured logging with trace correlation
// and exposes the tracer used by the CLI.
package observability

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const defaultServiceName = "dicetables"

// ErrInvalidLevel is returned by ParseLevel for unknown level names.
var ErrInvalidLevel = errors.New("invalid log level")

// Config holds logging configuration.
type Config struct {
	// Output receives log records. Nil means os.Stderr.
	Output io.Writer

	ServiceName    string
	ServiceVersion string
	LogLevel       slog.Level
	LogJSON        bool
}

// DefaultConfig returns a text logger at warn level.
func DefaultConfig() Config {
	return Config{
		ServiceName: defaultServiceName,
		LogLevel:    slog.LevelWarn,
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
	}
}

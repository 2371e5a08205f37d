// Package logging creates the run-scoped loggers used across the tool.
// Components receive a *slog.Logger explicitly; there is no package
// level logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"testing"
)

// Config holds the configuration for creating a new logger.
type Config struct {
	// Level sets the minimum log level. Messages below it are discarded.
	Level slog.Level
	// Output is where log messages are written. Defaults to os.Stderr.
	Output io.Writer
}

// New creates a logger with the given configuration.
func New(cfg Config) *slog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: cfg.Level}))
}

// ForVerbosity maps the -v/-q flag counts onto a logger level:
// each -v lowers the threshold one level from Warn, each -q raises it.
func ForVerbosity(verbose, quiet int) *slog.Logger {
	level := slog.LevelWarn + slog.Level(4*(quiet-verbose))
	return New(Config{Level: level})
}

// NewDiscard creates a logger that discards all output.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testWriter adapts testing.T to io.Writer for use with slog handlers.
type testWriter struct {
	t *testing.T
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	msg := string(p)
	if len(msg) > 0 && msg[len(msg)-1] == '\n' {
		msg = msg[:len(msg)-1]
	}
	w.t.Log(msg)
	return len(p), nil
}

// ForTest creates a debug-level logger that writes to the test's log
// output, visible on failure or with -v.
func ForTest(t *testing.T) *slog.Logger {
	t.Helper()
	return New(Config{Level: slog.LevelDebug, Output: &testWriter{t: t}})
}

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelWarn, Output: &buf})

	log.Info("hidden")
	log.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=value")
}

// TestForVerbosity verifies each -v lowers and each -q raises the
// threshold by one slog level.
func TestForVerbosity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		verbose, quiet int
		level          slog.Level
		enabled        bool
	}{
		{0, 0, slog.LevelWarn, true},
		{0, 0, slog.LevelInfo, false},
		{1, 0, slog.LevelInfo, true},
		{2, 0, slog.LevelDebug, true},
		{0, 1, slog.LevelWarn, false},
		{0, 1, slog.LevelError, true},
	}
	for _, tt := range tests {
		log := ForVerbosity(tt.verbose, tt.quiet)
		assert.Equal(t, tt.enabled, log.Enabled(context.Background(), tt.level),
			"verbose=%d quiet=%d level=%v", tt.verbose, tt.quiet, tt.level)
	}
}

func TestNewDiscard(t *testing.T) {
	t.Parallel()

	// Must not panic and must accept records at any level.
	NewDiscard().Debug("noop")
	NewDiscard().Error("noop")
}

package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "log line should be JSON: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		level       string
		debugLogged bool
		warnLogged  bool
	}{
		{level: "debug", debugLogged: true, warnLogged: true},
		{level: "INFO", debugLogged: false, warnLogged: true},
		{level: "error", debugLogged: false, warnLogged: false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := logger.Setup(logger.LoggerConfig{Level: tt.level, Output: &buf})
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.Same(t, l, slog.Default())

			l.Debug("debug message")
			l.Warn("warn message")

			out := buf.String()
			assert.Equal(t, tt.debugLogged, strings.Contains(out, "debug message"))
			assert.Equal(t, tt.warnLogged, strings.Contains(out, "warn message"))
		})
	}
}

func TestSetupInvalidLevel(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	l, err := logger.Setup(logger.LoggerConfig{Level: "verbose", Output: &buf})
	require.NoError(t, err)

	l.Info("after setup")

	entries := parseLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "verbose", entries[0]["configured_level"])
	assert.Equal(t, "after setup", entries[1]["msg"])
}

func TestFromContextOrDefault(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	stored := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))

	ctx := logger.WithContext(context.Background(), stored)
	assert.Same(t, stored, logger.FromContextOrDefault(ctx, fallback))
	assert.Same(t, stored, logger.FromContext(ctx))

	assert.Same(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
}

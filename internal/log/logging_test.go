package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewLoggerConsoleAndFile(t *testing.T) {
	var console, file bytes.Buffer
	logger := newLogger(slog.LevelInfo, &console, &file)

	logger.Debug("hidden")
	logger.Info("Generated file", "file", "Fakeuart.c")

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "file=Fakeuart.c")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &rec))
	assert.Equal(t, "Generated file", rec["msg"])
	assert.Equal(t, "Fakeuart.c", rec["file"])
}

func TestTraceLevelName(t *testing.T) {
	var console bytes.Buffer
	logger := newLogger(LevelTrace, &console, nil)

	logger.Log(context.Background(), LevelTrace, "node")
	assert.True(t, strings.Contains(console.String(), "level=TRACE"), console.String())
}

func TestLevelFilter(t *testing.T) {
	var errs, rest bytes.Buffer
	h := NewMultiHandler(
		NewLevelFilter(func(l slog.Level) bool { return l >= slog.LevelError }, slog.NewTextHandler(&errs, nil)),
		NewLevelFilter(func(l slog.Level) bool { return l < slog.LevelError }, slog.NewTextHandler(&rest, nil)),
	)
	logger := slog.New(h).With("component", "writer")

	logger.Info("wrote")
	logger.Error("failed")

	assert.Contains(t, rest.String(), "msg=wrote")
	assert.NotContains(t, rest.String(), "failed")
	assert.Contains(t, errs.String(), "msg=failed")
	assert.Contains(t, errs.String(), "component=writer")
}

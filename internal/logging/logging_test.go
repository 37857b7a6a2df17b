package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/tabular/internal/config"
)

func TestSetup_Text(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig().Logging
	logger, closeFn, err := Setup(cfg, &buf)
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("shown", "rows", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "rows=3")
}

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig().Logging
	cfg.Format = "json"
	cfg.Level = "debug"
	logger, closeFn, err := Setup(cfg, &buf)
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("event", "k", "v")
	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "event", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}

func TestSetup_BadLevel(t *testing.T) {
	cfg := config.DefaultConfig().Logging
	cfg.Level = "chatty"
	_, _, err := Setup(cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestMultiHandler_FansOut(t *testing.T) {
	var debug, warn bytes.Buffer
	m := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	assert.True(t, m.Enabled(context.Background(), slog.LevelDebug))

	logger := slog.New(m).With("run", "r1")
	logger.Info("info line")
	logger.Warn("warn line")

	assert.Contains(t, debug.String(), "info line")
	assert.Contains(t, debug.String(), "run=r1")
	assert.NotContains(t, warn.String(), "info line")
	assert.Contains(t, warn.String(), "warn line")
}

package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/couchcryptid/power-curve-service/internal/config"
	"github.com/stretchr/testify/assert"
)

func keepDefaultLogger(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestNewLogger_JSON(t *testing.T) {
	keepDefaultLogger(t)

	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "json"})

	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))
	assert.IsType(t, &slog.JSONHandler{}, logger.Handler())
	assert.Same(t, logger, slog.Default())
}

func TestNewLogger_Text(t *testing.T) {
	keepDefaultLogger(t)

	logger := NewLogger(&config.Config{LogLevel: "DEBUG", LogFormat: "TEXT"})

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.IsType(t, &slog.TextHandler{}, logger.Handler())
}

func TestNewLogger_UnknownLevelIsInfo(t *testing.T) {
	keepDefaultLogger(t)

	logger := NewLogger(&config.Config{LogLevel: "verbose"})

	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
	assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
}

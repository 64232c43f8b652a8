package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilsys/vigil/internal/config"
)

func TestSetupReturnsLoggerForEachLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			logger := Setup(config.ServerConfig{LogLevel: level})
			require.NotNil(t, logger)
		})
	}
}

func TestSetupFallsBackOnUnknownLevel(t *testing.T) {
	logger := Setup(config.ServerConfig{LogLevel: "shouty"})
	require.NotNil(t, logger)

	// Falls back to info: debug must be suppressed, info enabled.
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestSetupInstallsDefaultLogger(t *testing.T) {
	logger := Setup(config.ServerConfig{LogLevel: "warn"})
	assert.Equal(t, logger, slog.Default())
}

func TestFromContextRoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := WithContext(context.Background(), logger)

	assert.Equal(t, logger, FromContext(ctx))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}

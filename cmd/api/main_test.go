package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/joshua-takyi/rentinout/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestSetupLoggerHonorsLevel(t *testing.T) {
	tests := []struct {
		env, level string
		enabled    slog.Level
		disabled   slog.Level
	}{
		{"development", "warn", slog.LevelWarn, slog.LevelInfo},
		{"development", "debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"production", "error", slog.LevelError, slog.LevelWarn},
		{"production", "bogus", slog.LevelInfo, slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			logger := setupLogger(&config.Config{Environment: tt.env, LogLevel: tt.level})
			assert.True(t, logger.Enabled(context.Background(), tt.enabled))
			assert.False(t, logger.Enabled(context.Background(), tt.disabled))
		})
	}
}

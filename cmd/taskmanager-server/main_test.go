package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestBuildLogger(t *testing.T) {
	tests := []struct {
		name   string
		format string
		level  string
		want   zapcore.Level
	}{
		{"JSONDebug", "json", "debug", zapcore.DebugLevel},
		{"ConsoleWarn", "console", "warn", zapcore.WarnLevel},
		{"ErrorLevel", "json", "error", zapcore.ErrorLevel},
		{"UnknownLevelFallsBackToInfo", "json", "verbose", zapcore.InfoLevel},
		{"EmptyLevelIsInfo", "", "", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := buildLogger(tt.format, tt.level)
			require.NoError(t, err)
			defer logger.Sync()

			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

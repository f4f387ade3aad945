package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/authgate/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.Log
		wantLevel zap.AtomicLevel
		wantErr   bool
	}{
		{name: "default level", cfg: config.Log{}, wantLevel: zap.NewAtomicLevelAt(zap.InfoLevel)},
		{name: "debug level", cfg: config.Log{Level: "debug"}, wantLevel: zap.NewAtomicLevelAt(zap.DebugLevel)},
		{name: "development", cfg: config.Log{Level: "warn", Development: true}, wantLevel: zap.NewAtomicLevelAt(zap.WarnLevel)},
		{name: "invalid level", cfg: config.Log{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)

			assert.True(t, logger.Core().Enabled(tt.wantLevel.Level()))
			if tt.wantLevel.Level() > zap.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.wantLevel.Level()-1))
			}
		})
	}
}

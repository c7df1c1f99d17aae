package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		jsonOutput bool
		wantErr    bool
	}{
		{name: "console output default level", level: "", jsonOutput: false},
		{name: "json output debug level", level: "debug", jsonOutput: true},
		{name: "upper case level", level: "WARN", jsonOutput: false},
		{name: "unknown level", level: "chatty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(func() {
				Logger = zap.NewNop().Sugar()
				JSONOutput = false
			})

			err := Initialize(tt.level, tt.jsonOutput)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)
		})
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("error")
	require.NoError(t, err)
	assert.Equal(t, zapcore.ErrorLevel, lvl)

	lvl, err = parseLevel("  ")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)
}

func TestHelpersWithNopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		Infow("info", "k", "v")
		Warnw("warn", "k", "v")
		Errorw("error", "k", "v")
		Debugw("debug", "k", "v")
		Named("component").Infow("named")
		Sync()
	})
}

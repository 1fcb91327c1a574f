package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewContext(t *testing.T) {
	ctx := NewContext()
	assert.Equal(t, "table", ctx.OutputFormat)
	assert.Equal(t, 30*time.Second, ctx.DefaultTimeout)
	require.NotNil(t, ctx.Config)
	assert.Equal(t, 512, ctx.Config.SectorSize)
	require.NotNil(t, ctx.Logger)
}

func TestConfigureLogger(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		quiet   bool
		enabled []zapcore.Level
		muted   []zapcore.Level
	}{
		{
			name:    "default reports warnings and errors",
			enabled: []zapcore.Level{zapcore.WarnLevel, zapcore.ErrorLevel},
			muted:   []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel},
		},
		{
			name:    "verbose",
			verbose: true,
			enabled: []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.ErrorLevel},
		},
		{
			name:  "quiet",
			quiet: true,
			muted: []zapcore.Level{zapcore.InfoLevel, zapcore.ErrorLevel},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext()
			ctx.Verbose = tt.verbose
			ctx.Quiet = tt.quiet
			require.NoError(t, ctx.ConfigureLogger())

			for _, l := range tt.enabled {
				assert.True(t, ctx.Logger.Core().Enabled(l), "%s enabled", l)
			}
			for _, l := range tt.muted {
				assert.False(t, ctx.Logger.Core().Enabled(l), "%s muted", l)
			}
		})
	}
}

func TestLogAndError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	ctx := NewContext()
	ctx.Logger = zap.New(core)

	ctx.Log("hidden unless verbose")
	ctx.Error("record decode failed", zap.Uint64("record", 7))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, uint64(7), entry.ContextMap()["record"])

	ctx.Verbose = true
	ctx.Log("shown")
	assert.Equal(t, 1, logs.FilterMessage("shown").Len())

	ctx.Verbose = false
	ctx.Quiet = true
	ctx.Error("suppressed")
	assert.Zero(t, logs.FilterMessage("suppressed").Len())
}

func TestContextCancellation(t *testing.T) {
	parent := NewContext()
	parent.Verbose = true

	ctx, cancel := parent.WithCancel()
	assert.True(t, ctx.Verbose)
	cancel()
	assert.Error(t, ctx.Err())
	assert.NoError(t, parent.Err())

	timed, cancelTimed := parent.WithTimeout(time.Hour)
	defer cancelTimed()
	_, ok := timed.Deadline()
	assert.True(t, ok)

	unbounded, cancelUnbounded := parent.WithTimeout(0)
	defer cancelUnbounded()
	_, ok = unbounded.Deadline()
	assert.False(t, ok)
}

func TestProgress(t *testing.T) {
	ctx := NewContext()
	ctx.Progress("ignored", 1)

	var got []string
	ctx.SetProgress(func(msg string, percent int) {
		got = append(got, msg)
		assert.Equal(t, 50, percent)
	})
	ctx.Progress("halfway", 50)
	assert.Equal(t, []string{"halfway"}, got)
}

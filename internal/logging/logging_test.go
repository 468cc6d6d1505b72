package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{" WARN ", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	log, err := New(Config{Level: "debug"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New(Config{Level: "warn", Development: true})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))

	_, err = New(Config{Level: "nope"})
	assert.Error(t, err)
}

func TestWriter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	w := NewWriter(zap.New(core), zapcore.InfoLevel)

	n, err := w.Write([]byte("GET /v1 200\n"))
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "GET /v1 200", logs.All()[0].Message)

	quiet := NewWriter(zap.New(core), zapcore.DebugLevel)
	_, _ = quiet.Write([]byte("hidden"))
	assert.Equal(t, 1, logs.Len())
}

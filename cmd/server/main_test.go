package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/homeswift/internal/config"
	"github.com/zlovtnik/homeswift/internal/notify"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestNewSender(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, closeFn, err := newSender(config.NotifyConfig{Transport: config.TransportLog}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.LogSender{}, s)
	assert.NoError(t, closeFn())

	_, _, err = newSender(config.NotifyConfig{Transport: "carrier-pigeon"}, logger)
	assert.Error(t, err)
}

package logger

import (
	"bytes"
	"log/slog"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel_Aliases(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{" Info ", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"ERROR", slog.LevelError, true},
		{"", slog.LevelInfo, false},
		{"trace", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetHandler_FiltersBelowLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { SetHandler(prev.Handler()) })

	var buf bytes.Buffer
	SetHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	Debug("hidden")
	Info("hidden")
	Warn("relay lost", "region", "eu")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	assert.Equal(t, "relay lost", jsoniter.Get(lines[0], "msg").ToString())
	assert.Equal(t, "eu", jsoniter.Get(lines[0], "region").ToString())

	NewSlogAdapter().Error("adapter", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"adapter"`)
}

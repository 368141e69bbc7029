package logger

import (
	"errors"
	"sync"
	"testing"

	"wallet_connector/internal/domain/entity"
	"wallet_connector/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type recordingSink struct {
	mu    sync.Mutex
	lines []entity.LogLine
	err   error
}

func (s *recordingSink) Ship(lines []entity.LogLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, lines...)
	return s.err
}

func (s *recordingSink) shipped() []entity.LogLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.LogLine(nil), s.lines...)
}

func TestRemoteLogger_ProductionGating(t *testing.T) {
	sink := &recordingSink{}
	l := NewRemoteLogger(nopLogger{}, sink, RemoteOptions{App: "crypto-ingress-iframe"}, nil)

	l.Warn("dropped")
	l.Debug("dropped too")
	l.Close()
	assert.Empty(t, sink.shipped())

	l.Error("boom")
	l.Close()
	lines := sink.shipped()
	require.Len(t, lines, 1)
	assert.Equal(t, "boom", lines[0].Line)
	assert.Equal(t, entity.LogLevelError, lines[0].Level)
	assert.Equal(t, "crypto-ingress-iframe", lines[0].App)
	assert.Equal(t, "crypto-ingress-iframe", lines[0].Meta.Client)
	assert.Equal(t, "en", lines[0].Meta.Lang)
	assert.NotNil(t, lines[0].Meta.UserInfo)
}

func TestRemoteLogger_ShippableLevels(t *testing.T) {
	prod := NewRemoteLogger(nopLogger{}, nil, RemoteOptions{}, nil)
	dev := NewRemoteLogger(nopLogger{}, nil, RemoteOptions{Development: true}, nil)

	for _, level := range []entity.LogLevel{entity.LogLevelFatal, entity.LogLevelError, entity.LogLevelInfo} {
		assert.True(t, prod.Shippable(level), level)
	}
	for _, level := range []entity.LogLevel{entity.LogLevelWarn, entity.LogLevelDebug} {
		assert.False(t, prod.Shippable(level), level)
		assert.True(t, dev.Shippable(level), level)
	}
}

func TestRemoteLogger_DevelopmentShipsEverything(t *testing.T) {
	sink := &recordingSink{}
	l := NewRemoteLogger(nopLogger{}, sink, RemoteOptions{App: "app", Development: true}, nil)

	l.Debug("d")
	l.Warn("w")
	l.Fatal("f")
	l.Close()

	levels := map[entity.LogLevel]bool{}
	for _, line := range sink.shipped() {
		levels[line.Level] = true
	}
	assert.Equal(t, map[entity.LogLevel]bool{
		entity.LogLevelDebug: true,
		entity.LogLevelWarn:  true,
		entity.LogLevelFatal: true,
	}, levels)
}

func TestRemoteLogger_SinkFailureCounted(t *testing.T) {
	m := metrics.New(nil)
	sink := &recordingSink{err: errors.New("unreachable")}
	l := NewRemoteLogger(nopLogger{}, sink, RemoteOptions{App: "app"}, m)

	l.Info("hello")
	l.Close()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ShippedLogLines.WithLabelValues("info", "error")))
}

func TestSerialize(t *testing.T) {
	assert.Equal(t, "plain", serialize("plain", nil))
	assert.Equal(t, `["failed","error","boom"]`, serialize("failed", []any{"error", errors.New("boom")}))
	assert.Equal(t, `["count","n",3]`, serialize("count", []any{"n", 3}))
}

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, "DEBUG", lvl.String())

	lvl, ok = ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, "INFO", lvl.String())
}

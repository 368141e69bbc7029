package logger

import (
	"fmt"
	"sync"

	"wallet_connector/internal/app/port"
	"wallet_connector/internal/domain/entity"
	"wallet_connector/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RemoteOptions describes how shipped lines are labelled and which levels ship.
type RemoteOptions struct {
	App         string
	Client      string
	UserAgent   string
	Development bool
}

// RemoteLogger writes through to a local port.Logger and ships each entry to a LogSink.
// Outside development only fatal, error and info entries are shipped.
type RemoteLogger struct {
	local   port.Logger
	sink    port.LogSink
	opts    RemoteOptions
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

// NewRemoteLogger wraps local with shipping to sink.
func NewRemoteLogger(local port.Logger, sink port.LogSink, opts RemoteOptions, m *metrics.Metrics) *RemoteLogger {
	if m == nil {
		m = metrics.New(nil)
	}
	if opts.Client == "" {
		opts.Client = opts.App
	}
	return &RemoteLogger{local: local, sink: sink, opts: opts, metrics: m}
}

func (l *RemoteLogger) Info(msg string, args ...any) {
	l.local.Info(msg, args...)
	l.ship(entity.LogLevelInfo, msg, args)
}

func (l *RemoteLogger) Debug(msg string, args ...any) {
	l.local.Debug(msg, args...)
	l.ship(entity.LogLevelDebug, msg, args)
}

func (l *RemoteLogger) Warn(msg string, args ...any) {
	l.local.Warn(msg, args...)
	l.ship(entity.LogLevelWarn, msg, args)
}

func (l *RemoteLogger) Error(msg string, args ...any) {
	l.local.Error(msg, args...)
	l.ship(entity.LogLevelError, msg, args)
}

// Fatal logs and ships at fatal level. It does not exit.
func (l *RemoteLogger) Fatal(msg string, args ...any) {
	l.local.Error(msg, args...)
	l.ship(entity.LogLevelFatal, msg, args)
}

// Close waits for in-flight shipments.
func (l *RemoteLogger) Close() {
	l.wg.Wait()
}

// Shippable reports whether entries at level leave the process.
func (l *RemoteLogger) Shippable(level entity.LogLevel) bool {
	if l.opts.Development {
		return true
	}
	switch level {
	case entity.LogLevelFatal, entity.LogLevelError, entity.LogLevelInfo:
		return true
	default:
		return false
	}
}

func (l *RemoteLogger) ship(level entity.LogLevel, msg string, args []any) {
	if l.sink == nil || !l.Shippable(level) {
		return
	}
	if msg == "" && len(args) == 0 {
		return
	}

	line := entity.LogLine{
		Line:  serialize(msg, args),
		App:   l.opts.App,
		Level: level,
		Meta: entity.LogMeta{
			UserAgent: l.opts.UserAgent,
			UserInfo:  map[string]any{},
			Client:    l.opts.Client,
			Lang:      "en",
		},
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		err := l.sink.Ship([]entity.LogLine{line})
		l.metrics.ShippedLogLines.WithLabelValues(string(level), metrics.Outcome(err)).Inc()
		if err != nil {
			// Local only, shipping the failure would loop.
			l.local.Debug("Failed to ship log line", "error", err)
		}
	}()
}

// serialize returns msg unchanged when there are no args, otherwise a JSON array of msg followed by args.
func serialize(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	parts := make([]any, 0, len(args)+1)
	parts = append(parts, msg)
	for _, a := range args {
		switch v := a.(type) {
		case error:
			parts = append(parts, v.Error())
		case fmt.Stringer:
			parts = append(parts, v.String())
		default:
			parts = append(parts, v)
		}
	}
	out, err := json.Marshal(parts)
	if err != nil {
		return fmt.Sprint(parts...)
	}
	return string(out)
}

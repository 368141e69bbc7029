package port

import "wallet_connector/internal/domain/entity"

// Logger defines a common logging interface for the application.
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LogSink ships serialized log lines to a remote ingest endpoint.
type LogSink interface {
	Ship(lines []entity.LogLine) error
}

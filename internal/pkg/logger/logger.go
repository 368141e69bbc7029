package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var global atomic.Pointer[slog.Logger]

// ParseLevel maps a level name such as "debug" or "WARN" to a slog level.
// Unknown names yield INFO and false.
func ParseLevel(levelStr string) (slog.Level, bool) {
	name := strings.ToUpper(strings.TrimSpace(levelStr))
	if name == "WARNING" {
		name = "WARN"
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, false
	}
	return level, true
}

// SetHandler routes the package-level functions and slog.Default through h.
func SetHandler(h slog.Handler) {
	l := slog.New(h)
	global.Store(l)
	slog.SetDefault(l)
}

// current falls back to INFO JSON on stdout until SetHandler is called.
func current() *slog.Logger {
	if l := global.Load(); l != nil {
		return l
	}
	l := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if global.CompareAndSwap(nil, l) {
		return l
	}
	return global.Load()
}

func logAt(level slog.Level, msg string, args []any) {
	ctx := context.Background()
	l := current()
	if l.Enabled(ctx, level) {
		l.Log(ctx, level, msg, args...)
	}
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) { logAt(slog.LevelDebug, msg, args) }

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) { logAt(slog.LevelInfo, msg, args) }

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) { logAt(slog.LevelWarn, msg, args) }

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) { logAt(slog.LevelError, msg, args) }

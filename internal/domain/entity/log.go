package entity

// LogLevel is the severity attached to a shipped log line.
type LogLevel string

const (
	LogLevelFatal LogLevel = "fatal"
	LogLevelError LogLevel = "error"
	LogLevelWarn  LogLevel = "warn"
	LogLevelInfo  LogLevel = "info"
	LogLevelDebug LogLevel = "debug"
)

// LogMeta is attached to every shipped line.
type LogMeta struct {
	UserAgent string         `json:"userAgent"`
	UserInfo  map[string]any `json:"userInfo"`
	Client    string         `json:"client"`
	Lang      string         `json:"lang"`
}

// LogLine is a single entry of an ingest request.
type LogLine struct {
	Line  string   `json:"line"`
	App   string   `json:"app"`
	Level LogLevel `json:"level"`
	Meta  LogMeta  `json:"meta"`
}

package logger

import (
	"WebShop_AI/backend/go/internal/models"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry to provide structured logging with
// service-level fields. Derived loggers never mutate their parent.
type Logger struct {
	entry *logrus.Entry
}

// Init configures the global logrus instance.
// level: the minimum level to emit. out: destination, os.Stdout when nil.
func Init(level logrus.Level, out io.Writer) {
	// JSON output keeps the field names stable for log collection.
	logrus.SetFormatter(newFormatter())
	if out == nil {
		out = os.Stdout
	}
	logrus.SetOutput(out)
	logrus.SetLevel(level)
}

func newFormatter() *logrus.JSONFormatter {
	return &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	}
}

// ParseLevel parses a level name and falls back to info.
// Directives like "info,gateway=debug" keep only the first segment.
func ParseLevel(s string) logrus.Level {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// New creates a Logger bound to the standard logrus logger.
func New(serviceName, traceID, userID string) *Logger {
	return NewWithBase(logrus.StandardLogger(), serviceName, traceID, userID)
}

// NewWithBase creates a Logger on top of a specific logrus.Logger; tests
// use it to capture output without touching global state.
func NewWithBase(base *logrus.Logger, serviceName, traceID, userID string) *Logger {
	fields := logrus.Fields{"service_name": serviceName}
	if traceID != "" {
		fields["trace_id"] = traceID
	}
	if userID != "" {
		fields["user_id"] = userID
	}
	return &Logger{entry: base.WithFields(fields)}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(base)}
}

// WithField returns a derived Logger carrying one extra field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithFields returns a derived Logger carrying extra fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

// WithTraceID attaches a trace id, usually the inbound request id.
func (l *Logger) WithTraceID(traceID string) *Logger {
	if traceID == "" {
		return l
	}
	return l.WithField("trace_id", traceID)
}

// WithRequest attaches request information.
func (l *Logger) WithRequest(req models.RequestInfo) *Logger {
	return l.WithField("request_info", req)
}

// WithError attaches structured error information.
func (l *Logger) WithError(err models.ErrorInfo) *Logger {
	return l.WithField("error", err)
}

// Info logs at info level.
func (l *Logger) Info(message string) {
	l.entry.Info(message)
}

// Warn logs at warning level.
func (l *Logger) Warn(message string) {
	l.entry.Warn(message)
}

// Error logs at error level.
func (l *Logger) Error(message string) {
	l.entry.Error(message)
}

// Debug logs at debug level.
func (l *Logger) Debug(message string) {
	l.entry.Debug(message)
}

// Fatal logs at fatal level and exits the process.
func (l *Logger) Fatal(message string) {
	l.entry.Fatal(message)
}

// AddHook registers a hook on the standard logrus logger.
func AddHook(hook logrus.Hook) {
	logrus.AddHook(hook)
}

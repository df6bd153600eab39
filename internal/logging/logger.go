package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger with a component field
type Logger struct {
	*logrus.Logger
	component string
}

var (
	// globalLogger global logger instance
	globalLogger *Logger
	// requestID ties every entry of one invocation together
	requestID string
	mu        sync.Mutex
)

// LogLevel log level type
type LogLevel string

const (
	TraceLevel LogLevel = "trace"
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Config log configuration
type Config struct {
	Level  LogLevel  // Log level
	Format string    // Format: "json" or "text"
	Output io.Writer // Defaults to stderr; stdout is reserved for the answer
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Level:  WarnLevel,
		Format: "text",
		Output: os.Stderr,
	}
}

// Init initializes logging system
func Init(config Config) error {
	logger := logrus.New()

	level, err := logrus.ParseLevel(string(config.Level))
	if err != nil {
		return fmt.Errorf("invalid log level: %s", config.Level)
	}
	logger.SetLevel(level)

	switch config.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	case "text", "":
		logger.SetFormatter(&CustomTextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
		})
	default:
		return fmt.Errorf("invalid log format: %s", config.Format)
	}

	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	mu.Lock()
	globalLogger = &Logger{Logger: logger, component: "gemsh"}
	mu.Unlock()
	return nil
}

// GetLogger gets global logger instance
func GetLogger() *Logger {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger == nil {
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.WarnLevel)
		logger.SetFormatter(&CustomTextFormatter{TimestampFormat: "2006-01-02 15:04:05", FullTimestamp: true})
		globalLogger = &Logger{Logger: logger, component: "gemsh"}
	}
	return globalLogger
}

// WithComponent creates logger instance with component identifier
func WithComponent(component string) *Logger {
	base := GetLogger()
	return &Logger{
		Logger:    base.Logger,
		component: component,
	}
}

// NewRequestID starts a new invocation scope and returns its id.
func NewRequestID() string {
	mu.Lock()
	defer mu.Unlock()
	requestID = uuid.NewString()
	return requestID
}

func currentRequestID() string {
	mu.Lock()
	defer mu.Unlock()
	return requestID
}

func (l *Logger) base() logrus.Fields {
	f := logrus.Fields{"component": l.component}
	if id := currentRequestID(); id != "" {
		f["request_id"] = id
	}
	return f
}

// WithField adds field
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	f := l.base()
	f[key] = value
	return l.Logger.WithFields(f)
}

// WithFields adds multiple fields
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	f := l.base()
	for k, v := range fields {
		f[k] = v
	}
	return l.Logger.WithFields(f)
}

// WithError adds error field
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.WithField("error", err)
}

// Convenience methods
func (l *Logger) Debug(args ...interface{}) {
	l.WithFields(logrus.Fields{}).Debug(args...)
}

func (l *Logger) Info(args ...interface{}) {
	l.WithFields(logrus.Fields{}).Info(args...)
}

func (l *Logger) Error(args ...interface{}) {
	l.WithFields(logrus.Fields{}).Error(args...)
}

// SetLevel dynamically sets log level
func SetLevel(level LogLevel) error {
	logrusLevel, err := logrus.ParseLevel(string(level))
	if err != nil {
		return err
	}
	GetLogger().SetLevel(logrusLevel)
	return nil
}

// GetLevel gets current log level
func GetLevel() LogLevel {
	return LogLevel(GetLogger().GetLevel().String())
}

// CustomTextFormatter custom text formatter
type CustomTextFormatter struct {
	TimestampFormat string
	FullTimestamp   bool
}

// Format implements logrus.Formatter interface
func (f *CustomTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	if f.FullTimestamp {
		b.WriteString(entry.Time.Format(f.TimestampFormat))
		b.WriteString(" ")
	}

	b.WriteString("[")
	b.WriteString(strings.ToUpper(entry.Level.String()))
	b.WriteString("] ")

	if component, ok := entry.Data["component"].(string); ok {
		b.WriteString("[")
		b.WriteString(component)
		b.WriteString("] ")
	}

	b.WriteString(entry.Message)

	// Additional fields, sorted for stable output
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if key != "component" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(fmt.Sprintf(" %s=%v", key, entry.Data[key]))
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}

package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatPretty  = "pretty"
	FormatJSON    = "json"
)

// Logger wraps zerolog.Logger with the service name it was created for.
type Logger struct {
	logger  zerolog.Logger
	service string
}

// New creates a new logger instance with configuration.
func New(cfg *Config, serviceName string) *Logger {
	return NewWithWriter(cfg, serviceName, outputWriter(cfg.Output))
}

// NewWithWriter creates a logger that writes to w instead of the configured output.
func NewWithWriter(cfg *Config, serviceName string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if isConsole(cfg.Format) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: cfg.NoColor}
	}

	zl := zerolog.New(w).Level(level)
	if cfg.Timestamp {
		zl = zl.With().Timestamp().Logger()
	}
	if cfg.Caller {
		zl = zl.With().Caller().Logger()
	}
	if serviceName != "" {
		zl = zl.With().Str(FieldService, serviceName).Logger()
	}

	return &Logger{logger: zl, service: serviceName}
}

// NewDefault creates a console logger at info level.
func NewDefault(serviceName string) *Logger {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return New(cfg, serviceName)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

type contextKey string

// RequestIDKey is the context key read by WithContext.
const RequestIDKey contextKey = "request_id"

// WithContext returns a logger enriched with the request ID stored in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if v := ctx.Value(RequestIDKey); v != nil {
		return &Logger{
			logger:  l.logger.With().Str(FieldRequestID, fmt.Sprintf("%v", v)).Logger(),
			service: l.service,
		}
	}
	return l
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		logger:  l.logger.With().Str(FieldComponent, name).Logger(),
		service: l.service,
	}
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	zc := l.logger.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return &Logger{logger: zc.Logger(), service: l.service}
}

// WithError returns a logger with an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		logger:  l.logger.With().Err(err).Logger(),
		service: l.service,
	}
}

// GetLogger returns the underlying zerolog.Logger.
func (l *Logger) GetLogger() zerolog.Logger {
	return l.logger
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level zerolog.Level) bool {
	return l.logger.GetLevel() <= level && zerolog.GlobalLevel() <= level
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Error(), msg, fields)
}

// --- Global logger ---

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// SetGlobalLogger sets the global logger instance.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// GetGlobalLogger returns the global logger, creating a default one if needed.
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewDefault("webrequest")
	}
	return globalLogger
}

func Debug(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...map[string]interface{})  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]interface{})  { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Error(msg, fields...) }

// --- internal helpers ---

func emit(event *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, fm := range fields {
		for k, v := range fm {
			event.Interface(k, v)
		}
	}
	event.Msg(msg)
}

func isConsole(format string) bool {
	f := strings.ToLower(format)
	return f == FormatConsole || f == FormatPretty
}

func outputWriter(output string) io.Writer {
	switch strings.ToLower(output) {
	case "stderr":
		return os.Stderr
	case "discard", "none":
		return io.Discard
	default:
		return os.Stdout
	}
}

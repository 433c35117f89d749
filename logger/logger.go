package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const FormatPretty = "pretty"

// Logger wraps zerolog.Logger with a service tag.
type Logger struct {
	logger  zerolog.Logger
	service string
}

// Init installs the global logger from config.
func Init(cfg Config) {
	cfg.ApplyDefaults()
	service := cfg.ServiceName
	if service == "" {
		service = "default"
	}
	globalLogger = New(&cfg, service)
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// New creates a logger writing to the configured output.
func New(cfg *Config, serviceName string) *Logger {
	return NewWithWriter(cfg, serviceName, outputWriter(cfg.Output))
}

// NewWithWriter creates a logger writing to w. An unknown level falls back to
// info.
func NewWithWriter(cfg *Config, serviceName string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	switch strings.ToLower(cfg.Format) {
	case "console", FormatPretty:
		zl = newConsoleLogger(cfg, serviceName, w)
	default:
		zl = zerolog.New(w)
	}
	zl = zl.Level(level)

	zc := zl.With()
	if serviceName != "" && serviceName != "default" {
		zc = zc.Str(FieldService, serviceName)
	}
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}

	return &Logger{logger: zc.Logger(), service: serviceName}
}

// NewDefault creates a console logger at info level.
func NewDefault(serviceName string) *Logger {
	cfg := &Config{Level: "info", Format: "console", Output: "stderr", Timestamp: true}
	return New(cfg, serviceName)
}

// NewFromEnv creates a logger configured from LOG_* environment variables.
func NewFromEnv(serviceName string) *Logger {
	cfg := &Config{
		Level:     getEnvOrDefault("LOG_LEVEL", "info"),
		Format:    getEnvOrDefault("LOG_FORMAT", "console"),
		Output:    getEnvOrDefault("LOG_OUTPUT", "stderr"),
		NoColor:   getEnvOrDefault("LOG_NO_COLOR", "false") == "true",
		Timestamp: getEnvOrDefault("LOG_TIMESTAMP", "true") == "true",
	}
	return New(cfg, serviceName)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// WithContext returns a logger enriched with run, request and trace IDs
// found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.logger.With()
	if v := RunIDFromContext(ctx); v != "" {
		zc = zc.Str(FieldRunID, v)
	}
	if v := RequestIDFromContext(ctx); v != "" {
		zc = zc.Str(FieldRequestID, v)
	}
	if v, ok := ctx.Value(traceIDKey).(string); ok && v != "" {
		zc = zc.Str(FieldTraceID, v)
	}
	return &Logger{logger: zc.Logger(), service: l.service}
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		logger:  l.logger.With().Str(FieldComponent, name).Logger(),
		service: l.service,
	}
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
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

// Zerolog returns the underlying zerolog.Logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.logger
}

func (l *Logger) Debug(msg string, fields ...map[string]any) { l.emit(l.logger.Debug(), msg, fields) }

func (l *Logger) Info(msg string, fields ...map[string]any) { l.emit(l.logger.Info(), msg, fields) }

func (l *Logger) Warn(msg string, fields ...map[string]any) { l.emit(l.logger.Warn(), msg, fields) }

func (l *Logger) Error(msg string, fields ...map[string]any) { l.emit(l.logger.Error(), msg, fields) }

func (l *Logger) emit(event *zerolog.Event, msg string, fields []map[string]any) {
	for _, fm := range fields {
		for k, v := range fm {
			event.Interface(k, v)
		}
	}
	event.Msg(msg)
}

// --- Global logger ---

var globalLogger *Logger

// SetGlobalLogger sets the global logger instance.
func SetGlobalLogger(l *Logger) { globalLogger = l }

// GetGlobalLogger returns the global logger, creating a default one if needed.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewDefault("default")
	}
	return globalLogger
}

func Debug(msg string, fields ...map[string]any) { GetGlobalLogger().Debug(msg, fields...) }

func Info(msg string, fields ...map[string]any) { GetGlobalLogger().Info(msg, fields...) }

func Warn(msg string, fields ...map[string]any) { GetGlobalLogger().Warn(msg, fields...) }

func Error(msg string, fields ...map[string]any) { GetGlobalLogger().Error(msg, fields...) }

// WithContext returns a context-enriched logger from the global logger.
func WithContext(ctx context.Context) *Logger {
	return GetGlobalLogger().WithContext(ctx)
}

func outputWriter(output string) io.Writer {
	if strings.ToLower(output) == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func newConsoleLogger(cfg *Config, serviceName string, w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i any) string {
			lvl := levelTag(fmt.Sprint(i))
			if !cfg.NoColor {
				lvl = colorize(lvl)
			}
			if len(serviceName) >= 3 && serviceName != "default" {
				return fmt.Sprintf("[%s]%s", strings.ToUpper(serviceName[:3]), lvl)
			}
			return lvl
		},
	})
}

func levelTag(level string) string {
	switch strings.ToLower(level) {
	case "trace":
		return "[TRC]"
	case "debug":
		return "[DBG]"
	case "info":
		return "[INF]"
	case "warn":
		return "[WRN]"
	case "error":
		return "[ERR]"
	case "fatal":
		return "[FTL]"
	default:
		return "[" + strings.ToUpper(level) + "]"
	}
}

func colorize(tag string) string {
	code := "0"
	switch tag {
	case "[DBG]":
		code = "36"
	case "[INF]":
		code = "32"
	case "[WRN]":
		code = "33"
	case "[ERR]":
		code = "31"
	case "[FTL]":
		code = "35"
	}
	return "\033[" + code + "m" + tag + "\033[0m"
}

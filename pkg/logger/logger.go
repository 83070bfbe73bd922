package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// LevelCritical marks failures that stop the service, such as a failed
	// migration or a port already in use.
	LevelCritical = slog.Level(12)

	defaultAppName = "pet-diary"
)

// Logger is the logging surface shared by services, handlers and background jobs.
type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
	Critical(message string, args ...any)
	BusinessError(message string, err error, args ...any)
	InternalError(message string, err error, args ...any)
	With(args ...any) Logger
}

type slogLogger struct {
	base *slog.Logger
}

// Options selects level, output format and the app attribute stamped on every line.
type Options struct {
	Level   slog.Level
	Format  string
	AppName string
}

// OptionsFromEnv reads LOG_LEVEL, LOG_FORMAT, ENV and APP_NAME through getenv.
// ENV=development without LOG_LEVEL logs at debug.
func OptionsFromEnv(getenv func(string) string) Options {
	env := normalizeValue(getenv("ENV"))
	appName := strings.TrimSpace(getenv("APP_NAME"))
	if appName == "" {
		appName = defaultAppName
	}
	return Options{
		Level:   parseLevel(getenv("LOG_LEVEL"), env),
		Format:  parseFormat(getenv("LOG_FORMAT")),
		AppName: appName,
	}
}

func NewFromEnv() Logger {
	return NewWithOptions(os.Stdout, OptionsFromEnv(os.Getenv))
}

func NewWithOptions(output io.Writer, opts Options) Logger {
	log := New(output, opts.Level, opts.Format)
	if opts.AppName == "" {
		return log
	}
	return log.With("app", opts.AppName)
}

func New(output io.Writer, level slog.Level, format string) Logger {
	options := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}

	var handler slog.Handler
	switch normalizeValue(format) {
	case "text":
		handler = slog.NewTextHandler(output, options)
	default:
		handler = slog.NewJSONHandler(output, options)
	}

	return &slogLogger{base: slog.New(handler)}
}

// Discard returns a logger that drops every record. Used by tests and tools.
func Discard() Logger {
	return New(io.Discard, LevelCritical+1, "text")
}

func (l *slogLogger) Debug(message string, args ...any) {
	l.base.Debug(message, args...)
}

func (l *slogLogger) Info(message string, args ...any) {
	l.base.Info(message, args...)
}

func (l *slogLogger) Warn(message string, args ...any) {
	l.base.Warn(message, args...)
}

func (l *slogLogger) Error(message string, args ...any) {
	l.base.Error(message, args...)
}

func (l *slogLogger) Critical(message string, args ...any) {
	l.base.Log(context.Background(), LevelCritical, message, args...)
}

// BusinessError logs an expected, caller-caused failure at warn: a stale day
// version, an animal over the cap, a foreign reminder.
func (l *slogLogger) BusinessError(message string, err error, args ...any) {
	if err == nil {
		return
	}

	attrs := append([]any{"err", err}, args...)
	l.base.Warn(message, attrs...)
}

// InternalError logs an unexpected failure at error, such as a batch step the
// database rejected.
func (l *slogLogger) InternalError(message string, err error, args ...any) {
	if err == nil {
		return
	}

	attrs := append([]any{"err", err}, args...)
	l.base.Error(message, attrs...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{base: l.base.With(args...)}
}

func parseLevel(value string, env string) slog.Level {
	switch normalizeValue(value) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		if env == "development" {
			return slog.LevelDebug
		}
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical", "fatal":
		return LevelCritical
	default:
		if env == "development" {
			return slog.LevelDebug
		}
		return slog.LevelInfo
	}
}

func parseFormat(value string) string {
	switch normalizeValue(value) {
	case "json", "text":
		return normalizeValue(value)
	default:
		return "json"
	}
}

func normalizeValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func replaceAttr(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key != slog.LevelKey {
		return attr
	}

	level, ok := attr.Value.Any().(slog.Level)
	if !ok {
		return attr
	}

	if level == LevelCritical {
		attr.Value = slog.StringValue("CRITICAL")
	}
	return attr
}

// Package logger is the slog setup shared by the CLI, the API and the worker.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

type ctxKey string

// Context keys whose string values FromContext copies onto records.
const (
	RequestIDKey ctxKey = "request_id"
	JobIDKey     ctxKey = "job_id"
)

var contextKeys = []ctxKey{RequestIDKey, JobIDKey}

// Logger is a slog.Logger with a few domain attributes.
type Logger struct {
	*slog.Logger
}

// Config selects level, encoding and destination.
type Config struct {
	Level       string // debug, info, warn or error
	Format      string // json or text
	Output      io.Writer
	AddSource   bool
	ServiceName string
}

// DefaultConfig reads LOG_LEVEL, LOG_FORMAT, LOG_SOURCE and SERVICE_NAME.
// format applies when LOG_FORMAT is unset.
func DefaultConfig(format string) Config {
	return Config{
		Level:       env("LOG_LEVEL", "info"),
		Format:      env("LOG_FORMAT", format),
		Output:      os.Stderr,
		AddSource:   env("LOG_SOURCE", "") == "true",
		ServiceName: env("SERVICE_NAME", "demoreel"),
	}
}

func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		AddSource:   cfg.AddSource,
		ReplaceAttr: utcTime,
	}

	var h slog.Handler = slog.NewJSONHandler(out, opts)
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(out, opts)
	}
	if cfg.ServiceName != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("service", cfg.ServiceName)})
	}
	return &Logger{Logger: slog.New(h)}
}

// NewDefault is New(DefaultConfig("json")).
func NewDefault() *Logger {
	return New(DefaultConfig("json"))
}

// Discard drops every record.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

func (l *Logger) attr(key, value string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String(key, value))}
}

func (l *Logger) WithJobID(id string) *Logger { return l.attr(string(JobIDKey), id) }

func (l *Logger) WithComponent(name string) *Logger { return l.attr("component", name) }

// WithPhase tags records with the playback phase.
func (l *Logger) WithPhase(phase string) *Logger { return l.attr("phase", phase) }

// FromContext attaches the request and job ids stored in ctx.
func (l *Logger) FromContext(ctx context.Context) *Logger {
	out := l
	for _, k := range contextKeys {
		if v, _ := ctx.Value(k).(string); v != "" {
			out = out.attr(string(k), v)
		}
	}
	return out
}

// LogFatal logs at error level and exits with status 1.
func (l *Logger) LogFatal(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.Error(msg, args...)
	os.Exit(1)
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func ContextWithJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, JobIDKey, id)
}

func utcTime(_ []string, a slog.Attr) slog.Attr {
	if t, ok := a.Value.Any().(time.Time); ok && a.Key == slog.TimeKey {
		a.Value = slog.StringValue(t.UTC().Format(time.RFC3339Nano))
	}
	return a
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "warning":
		return slog.LevelWarn
	case "":
		return slog.LevelInfo
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

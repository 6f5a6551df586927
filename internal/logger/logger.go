// Package logger wraps log/slog with the process-wide logger and a few
// request scoped helpers.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	userIDKey    ctxKey = "user_id"
)

var defaultLogger *slog.Logger

// Init configures the global logger.  format is "json" or "text".
func Init(level, format string) {
	InitWriter(os.Stdout, level, format)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level, format string) {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	defaultLogger = slog.New(h)
	slog.SetDefault(defaultLogger)
}

// Get returns the global logger, initialising it on first use.
func Get() *slog.Logger {
	if defaultLogger == nil {
		Init("INFO", "text")
	}
	return defaultLogger
}

// ContextWithRequestID stores a request id for WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithUserID stores the caller's user id for WithContext.
func ContextWithUserID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	s, _ := ctx.Value(requestIDKey).(string)
	return s
}

// WithContext returns the global logger annotated with the request id and
// user id found in ctx.
func WithContext(ctx context.Context) *slog.Logger {
	l := Get()
	if id := RequestID(ctx); id != "" {
		l = l.With("request_id", id)
	}
	if uid, ok := ctx.Value(userIDKey).(uint64); ok && uid != 0 {
		l = l.With("user_id", uid)
	}
	return l
}

// NewRequestID generates a new id for request tracking.
func NewRequestID() string {
	return uuid.New().String()
}

// Fatal logs msg at error level and exits.
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}

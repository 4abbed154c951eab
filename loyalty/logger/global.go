package logger

import (
	"log/slog"
	"time"
)

// LogQuery logs database operations
func LogQuery(operation string, duration time.Duration, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "db"),
		slog.String("operation", operation),
		slog.Duration("took", duration),
	}
	baseAttrs = append(baseAttrs, attrs...)

	if err != nil {
		slog.Error("Query failed", append(baseAttrs, slog.Any("error", err))...)
	} else {
		slog.Debug("Query executed", baseAttrs...)
	}
}

// LogRequest logs a served HTTP request. Client errors log at warn, server
// errors at error.
func LogRequest(method, path string, status int, duration time.Duration, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "http"),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("code", status),
		slog.Duration("took", duration),
	}
	baseAttrs = append(baseAttrs, attrs...)

	switch {
	case status >= 500:
		slog.Error("Request failed", baseAttrs...)
	case status >= 400:
		slog.Warn("Request rejected", baseAttrs...)
	default:
		slog.Info("Request served", baseAttrs...)
	}
}

// LogEngine logs progression engine events
func LogEngine(msg string, attrs ...any) {
	baseAttrs := []any{slog.String("type", "eng")}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}

// LogSystem logs system events
func LogSystem(msg string, attrs ...any) {
	baseAttrs := []any{slog.String("type", "sys")}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}

// LogError logs error events
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}

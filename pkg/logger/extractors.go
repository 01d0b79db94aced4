package logger

import (
	"context"
	"log/slog"
)

// FromContext returns an extractor that logs the string stored under key as attr.
// Empty values are skipped.
//
// Example:
//
//	log := logger.New(logger.FromContext(requestIDKey{}, "request_id"))
func FromContext(key any, attr string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			return slog.String(attr, v), true
		}
		return slog.Attr{}, false
	}
}

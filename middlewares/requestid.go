package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/unchained"
	"github.com/dmitrymomot/unchained/pkg/logger"
)

// requestIDKey is the context key for storing the request ID.
type requestIDKey struct{}

// DefaultRequestIDHeaders are the headers checked (in order) for an existing request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

type requestIDConfig struct {
	generator      func() string
	responseHeader string
	sources        []unchained.ExtractorSource
}

// RequestIDOption configures the request ID middleware.
type RequestIDOption func(*requestIDConfig)

// WithRequestIDHeaders sets the headers checked for an existing request ID.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.sources = cfg.sources[:0]
		for _, h := range headers {
			cfg.sources = append(cfg.sources, unchained.FromHeader(h))
		}
	}
}

// WithRequestIDSources replaces the sources an incoming request ID is read from.
func WithRequestIDSources(sources ...unchained.ExtractorSource) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.sources = sources
	}
}

// WithRequestIDGenerator sets a custom ID generator function.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.generator = gen
	}
}

// WithRequestIDResponseHeader sets the response header name.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.responseHeader = header
	}
}

// RequestID returns middleware that assigns an ID to each request.
// An upstream ID found by the configured sources is kept; otherwise a UUIDv7
// is generated. The ID is stored in the request context and echoed in the
// response header.
//
// Bundles usually install it from a deferred function:
//
//	Deferred: []func(*unchained.App) error{
//	    func(a *unchained.App) error { return a.Use(middlewares.RequestID()) },
//	},
func RequestID(opts ...RequestIDOption) unchained.Middleware {
	cfg := &requestIDConfig{
		generator:      newRequestID,
		responseHeader: "X-Request-ID",
	}
	for _, h := range DefaultRequestIDHeaders {
		cfg.sources = append(cfg.sources, unchained.FromHeader(h))
	}
	for _, opt := range opts {
		opt(cfg)
	}
	extract := unchained.NewExtractor(cfg.sources...)

	return func(next unchained.HandlerFunc) unchained.HandlerFunc {
		return func(c unchained.Context) error {
			reqID, ok := extract.Extract(c)
			if !ok {
				reqID = cfg.generator()
			}

			c.Set(requestIDKey{}, reqID)
			c.SetHeader(cfg.responseHeader, reqID)

			return next(c)
		}
	}
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// GetRequestID extracts the request ID from the context.
// Returns an empty string if no request ID is set.
func GetRequestID(c unchained.Context) string {
	if v, ok := c.Get(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// RequestIDExtractor returns a ContextExtractor for use with WithComponentLogger.
// Adds "request_id" to log entries written with the request context.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}

// Package logger builds the structured slog loggers used by unchained apps.
//
// Loggers are JSON (or text) slog loggers whose handler is wrapped by a
// LogHandlerDecorator, so attributes pulled from the request context (a
// request ID, for instance) are attached to every record. When a Sentry DSN
// is configured, records are fanned out to Sentry as well.
//
// # Basic Usage
//
//	log := logger.New(logger.FromContext(requestIDKey{}, "request_id"))
//	log.InfoContext(ctx, "request processed", slog.Int("status", 200))
//	// {"level":"INFO","msg":"request processed","status":200,"request_id":"abc-123"}
//
// # Configuration
//
// Config is read from the environment with github.com/caarlos0/env:
//
//	LOG_LEVEL=debug LOG_FORMAT=text SENTRY_DSN=https://... ./app serve
//
//	cfg, err := logger.LoadConfig()
//	if err != nil {
//		return err
//	}
//	log := logger.NewFromConfig(cfg)
//
// Without SENTRY_DSN the logger writes to stdout only, so development and
// production share one code path. Errors become Sentry issues; warnings are
// stored as logs unless SENTRY_MIN_LEVEL raises the threshold to ERROR.
//
// # Defaults
//
// NewNope discards everything and is what an App uses until a logger is
// configured with WithLogger.
package logger

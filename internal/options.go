package internal

import (
	"log/slog"

	"github.com/spf13/afero"

	"github.com/dmitrymomot/unchained/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithBundles sets the bundles the application is built from, app bundle last.
//
// Example:
//
//	unchained.CreateApp(unchained.Production,
//	    unchained.WithBundles(vendor.Bundle, security.Bundle, myapp.Bundle),
//	)
func WithBundles(bundles ...*Bundle) Option {
	return func(a *App) {
		a.bundles = append(a.bundles, bundles...)
	}
}

// WithHooks replaces the default hooks.
// Use DefaultHooks to extend the default set instead of replacing it.
//
// Example:
//
//	unchained.WithHooks(append(unchained.DefaultHooks(), NewCommandsHook())...)
func WithHooks(hooks ...Hook) Option {
	return func(a *App) {
		a.hooks = hooks
	}
}

// WithFS sets the filesystem bundle folders and the config file are read from.
// Defaults to the OS filesystem.
func WithFS(fsys afero.Fs) Option {
	return func(a *App) {
		if fsys != nil {
			a.fs = fsys
		}
	}
}

// WithRootPath sets the directory module paths are resolved against.
// Defaults to the working directory.
func WithRootPath(root string) Option {
	return func(a *App) {
		if root != "" {
			a.rootPath = root
		}
	}
}

// WithConfigFile loads a YAML file whose top-level keys are bundle names
// into the bundles' config structs before environment variables are applied.
//
// Example:
//
//	# config.yaml
//	my_app:
//	  secret_key: not-so-secret
//	vendor:
//	  page_size: 20
func WithConfigFile(path string) Option {
	return func(a *App) {
		a.configFile = path
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithErrorHandler sets a custom error handler for view errors.
// Called when a view returns a non-nil error.
//
// Example:
//
//	unchained.WithErrorHandler(func(c unchained.Context, err error) error {
//	    return c.JSON(http.StatusInternalServerError, map[string]string{
//	        "error": err.Error(),
//	    })
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks plus the checks of
// every extension implementing HealthChecker.
//
// Example:
//
//	unchained.WithHealthChecks(
//	    unchained.WithReadinessCheck("upstream", pingUpstream),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(healthChecks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger sets the application logger.
//
// Example:
//
//	unchained.WithLogger(logger.New(requestIDExtractor).With("component", "web"))
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithComponentLogger creates a JSON logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
func WithComponentLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        healthChecks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
func WithReadinessCheck(name string, fn CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(healthChecks)
		}
		c.checks[name] = fn
	}
}

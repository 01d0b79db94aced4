package internal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for application construction.
// Every one of them aborts the build: no partially built App is returned.
var (
	// ErrCircularDependency is returned when a dependency graph contains a cycle.
	ErrCircularDependency = errors.New("unchained: circular dependency")

	// ErrMissingDependency is returned when a declared dependency is neither
	// part of the resolved set nor registered by an earlier hook run.
	ErrMissingDependency = errors.New("unchained: missing dependency")

	// ErrBundleNotFound is returned when the bundle list is empty or lacks an app bundle.
	ErrBundleNotFound = errors.New("unchained: bundle not found")

	// ErrInvalidBundle is returned when a bundle declaration is incomplete.
	ErrInvalidBundle = errors.New("unchained: invalid bundle")

	// ErrDuplicateBundle is returned when two bundles share a module name.
	ErrDuplicateBundle = errors.New("unchained: duplicate bundle")

	// ErrMissingRoutes is returned when a routes module does not expose its routes.
	ErrMissingRoutes = errors.New("unchained: missing routes")

	// ErrUnsupportedEnv is returned for an unrecognized environment tag.
	ErrUnsupportedEnv = errors.New("unchained: unsupported environment")

	// ErrMissingConfig is returned when the app bundle has no config for the selected environment.
	ErrMissingConfig = errors.New("unchained: missing config")

	// ErrInvalidConfig is returned when a config value cannot be populated.
	ErrInvalidConfig = errors.New("unchained: invalid config")

	// ErrFrozen is returned when the registry or the app is mutated after construction.
	ErrFrozen = errors.New("unchained: application is frozen")

	// ErrDuplicateEndpoint is returned when an endpoint is bound to two different views.
	ErrDuplicateEndpoint = errors.New("unchained: duplicate endpoint")

	// ErrInvalidRule is returned when the router rejects a URL rule.
	ErrInvalidRule = errors.New("unchained: invalid url rule")

	// ErrUnknownEndpoint is returned by URL building for an endpoint with no rule.
	ErrUnknownEndpoint = errors.New("unchained: unknown endpoint")

	// ErrDuplicateHook is returned when two installed hooks share a name.
	ErrDuplicateHook = errors.New("unchained: duplicate hook")

	// ErrInjection is returned when a service dependency cannot be injected.
	ErrInjection = errors.New("unchained: injection failed")
)

// DependencyError describes a dependency-graph failure between two named entries.
type DependencyError struct {
	// Err is ErrCircularDependency or ErrMissingDependency.
	Err error

	// Node is the entry that declared the dependency.
	Node string

	// Dependency is the entry it depends on.
	Dependency string
}

func (e *DependencyError) Error() string {
	if errors.Is(e.Err, ErrCircularDependency) {
		return fmt.Sprintf("circular dependency detected: %s depends on %s, which depends on it", e.Node, e.Dependency)
	}
	return fmt.Sprintf("missing dependency: %s depends on %s, which is not registered", e.Node, e.Dependency)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// ConfigError describes a configuration problem in a bundle module.
type ConfigError struct {
	// Err is the sentinel describing the category.
	Err error

	// Module is the dotted path of the offending module.
	Module string

	// Attr is the missing or invalid attribute name, if any.
	Attr string

	// Message is the human readable description.
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func missingRoutesError(module string) *ConfigError {
	return &ConfigError{
		Err:     ErrMissingRoutes,
		Module:  module,
		Attr:    "routes",
		Message: fmt.Sprintf("could not find a variable named `routes` in the %s module", module),
	}
}

func unsupportedEnvError(env string) *ConfigError {
	names := make([]string, 0, len(supportedEnvs))
	for _, e := range supportedEnvs {
		names = append(names, string(e))
	}
	return &ConfigError{
		Err:     ErrUnsupportedEnv,
		Attr:    env,
		Message: fmt.Sprintf("unsupported environment %q (expected one of %s)", env, strings.Join(names, ", ")),
	}
}

func missingConfigError(module, name string) *ConfigError {
	return &ConfigError{
		Err:     ErrMissingConfig,
		Module:  module,
		Attr:    name,
		Message: fmt.Sprintf("could not find a config class named %q in the %s module", name, module),
	}
}

// HTTPError is an error a view can return to control the response status.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// AsHTTPError extracts the HTTPError from an error chain if present.
// Returns nil if the error is not an HTTPError.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// defaultErrorHandler renders HTTPErrors with their status and everything else as a 500.
func defaultErrorHandler(c Context, err error) error {
	if httpErr := AsHTTPError(err); httpErr != nil {
		return c.String(httpErr.Code, httpErr.Message)
	}
	c.Logger().ErrorContext(c, "view failed", "endpoint", c.Endpoint(), "error", err)
	return c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

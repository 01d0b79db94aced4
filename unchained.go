package unchained

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/dmitrymomot/unchained/internal"
	"github.com/dmitrymomot/unchained/pkg/logger"
)

// Type aliases - public API
type (
	// App is the application assembled from bundles.
	// It owns the routing table and the shared registry.
	App = internal.App

	// Bundle is a self-contained unit of application functionality.
	Bundle = internal.Bundle

	// Metadata is a bundle's identity and folder layout.
	Metadata = internal.Metadata

	// Env selects which configuration the application is built with.
	Env = internal.Env

	// Hook discovers one kind of object across all bundles and applies it to the app.
	Hook = internal.Hook

	// HookSpec describes a hook's identity and its place in the run order.
	HookSpec = internal.HookSpec

	// ShellContextUpdater is implemented by hooks that contribute names to the interactive shell.
	ShellContextUpdater = internal.ShellContextUpdater

	// Registry is the shared store of extensions and services.
	Registry = internal.Registry

	// Extension is shared infrastructure attached once to the application.
	Extension = internal.Extension

	// ExtensionEntry declares an extension contributed by a bundle.
	ExtensionEntry = internal.ExtensionEntry

	// HealthChecker is implemented by extensions that contribute a readiness check.
	HealthChecker = internal.HealthChecker

	// Shutdowner is implemented by extensions that hold resources.
	Shutdowner = internal.Shutdowner

	// Service is an injectable unit registered under its injection name.
	Service = internal.Service

	// ServiceInitializer is implemented by services that finish their setup after injection.
	ServiceInitializer = internal.ServiceInitializer

	// Node is a named entry together with the names it depends on.
	Node = internal.Node

	// Route is a concrete URL rule bound to a view.
	Route = internal.Route

	// RouteNode is a route declaration.
	RouteNode = internal.RouteNode

	// RouteSpec is route metadata attached to a view or a controller method.
	RouteSpec = internal.RouteSpec

	// RouteOption customizes a declared route.
	RouteOption = internal.RouteOption

	// RouteTable is the routing state produced by the routes hook.
	RouteTable = internal.RouteTable

	// URLRule is a rule registered on the application's routing table.
	URLRule = internal.URLRule

	// View is a view function together with the routes it declares.
	View = internal.View

	// Controller groups view methods that share a URL prefix.
	Controller = internal.Controller

	// ControllerMethod is a controller view method.
	ControllerMethod = internal.ControllerMethod

	// ViewsModule is a bundle's views submodule.
	ViewsModule = internal.ViewsModule

	// RoutesModule is a bundle's explicit routes submodule.
	RoutesModule = internal.RoutesModule

	// Action records one thing a hook did while the application was built.
	Action = internal.Action

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// HandlerFunc is the signature for views.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from views.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// CheckFunc is a readiness check.
	CheckFunc = internal.CheckFunc

	// HTTPError is an error a view can return to control the response status.
	HTTPError = internal.HTTPError

	// DependencyError describes a dependency-graph failure.
	DependencyError = internal.DependencyError

	// ConfigError describes a configuration problem in a bundle module.
	ConfigError = internal.ConfigError

	// ResponseWriter wraps http.ResponseWriter with status tracking and write hooks.
	ResponseWriter = internal.ResponseWriter

	// Extractor tries multiple sources in order and returns the first match.
	Extractor = internal.Extractor

	// ExtractorSource reads one candidate value from a request.
	ExtractorSource = internal.ExtractorSource

	// Scalar lists the types the typed request helpers convert to.
	Scalar = internal.Scalar

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithComponentLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor
)

// Collector gathers objects from every bundle and merges them by key.
type Collector[T any] = internal.Collector[T]

// Supported environments.
const (
	Development = internal.Development
	Production  = internal.Production
	Staging     = internal.Staging
	Test        = internal.Test
)

// Errors
var (
	ErrCircularDependency = internal.ErrCircularDependency
	ErrMissingDependency  = internal.ErrMissingDependency
	ErrBundleNotFound     = internal.ErrBundleNotFound
	ErrInvalidBundle      = internal.ErrInvalidBundle
	ErrDuplicateBundle    = internal.ErrDuplicateBundle
	ErrMissingRoutes      = internal.ErrMissingRoutes
	ErrUnsupportedEnv     = internal.ErrUnsupportedEnv
	ErrMissingConfig      = internal.ErrMissingConfig
	ErrInvalidConfig      = internal.ErrInvalidConfig
	ErrFrozen             = internal.ErrFrozen
	ErrDuplicateEndpoint  = internal.ErrDuplicateEndpoint
	ErrInvalidRule        = internal.ErrInvalidRule
	ErrUnknownEndpoint    = internal.ErrUnknownEndpoint
	ErrDuplicateHook      = internal.ErrDuplicateHook
	ErrInjection          = internal.ErrInjection
)

// Constructors

// CreateApp builds an application for env from the bundles given with WithBundles.
// The last bundle must be the app bundle.
//
// Example:
//
//	app, err := unchained.CreateApp(unchained.Production,
//	    unchained.WithBundles(vendor.Bundle, myapp.Bundle),
//	    unchained.WithConfigFile("config.yaml"),
//	)
//	if err != nil {
//	    return err
//	}
//	return app.Run(":8080")
func CreateApp(env Env, opts ...Option) (*App, error) {
	return internal.CreateApp(env, opts...)
}

// ParseEnv converts s into an Env. Matching is case-insensitive.
func ParseEnv(s string) (Env, error) {
	return internal.ParseEnv(s)
}

// LoadBundles validates a bundle list and resolves the metadata of every bundle.
func LoadBundles(fsys afero.Fs, root string, bundles []*Bundle) (map[*Bundle]Metadata, error) {
	return internal.LoadBundles(fsys, root, bundles)
}

// ResolveMetadata computes the folder layout of a bundle without modifying it.
func ResolveMetadata(fsys afero.Fs, root string, b *Bundle) Metadata {
	return internal.ResolveMetadata(fsys, root, b)
}

// NewRegistry creates an empty, writable registry.
func NewRegistry() *Registry {
	return internal.NewRegistry()
}

// ResolveOrder returns node names ordered so that every node follows its dependencies.
func ResolveOrder(nodes []Node, external func(name string) bool) ([]string, error) {
	return internal.ResolveOrder(nodes, external)
}

// ResolveExtensionOrder returns extension names in initialization order.
func ResolveExtensionOrder(entries []ExtensionEntry, registered func(name string) bool) ([]string, error) {
	return internal.ResolveExtensionOrder(entries, registered)
}

// SnakeCase converts a CamelCase identifier to snake_case.
func SnakeCase(s string) string {
	return internal.SnakeCase(s)
}

// Hooks

// DefaultHooks returns the hooks every application runs unless WithHooks replaces them.
func DefaultHooks() []Hook {
	return internal.DefaultHooks()
}

// NewConfigHook creates the hook that populates bundle configs.
func NewConfigHook() Hook { return internal.NewConfigHook() }

// NewExtensionsHook creates the hook that initializes extensions.
func NewExtensionsHook() Hook { return internal.NewExtensionsHook() }

// NewServicesHook creates the hook that registers and injects services.
func NewServicesHook() Hook { return internal.NewServicesHook() }

// NewRoutesHook creates the hook that builds the routing table.
func NewRoutesHook() Hook { return internal.NewRoutesHook() }

// NewBundleRoutesHook creates the hook that serves bundle-owned routes.
func NewBundleRoutesHook() Hook { return internal.NewBundleRoutesHook() }

// NewStaticHook creates the hook that serves bundle static folders.
func NewStaticHook() Hook { return internal.NewStaticHook() }

// Route declarations

// Func declares routes for view.
func Func(rule string, view *View, opts ...RouteOption) RouteNode {
	return internal.Func(rule, view, opts...)
}

// Get declares a GET route for view.
func Get(rule string, view *View, opts ...RouteOption) RouteNode {
	return internal.Get(rule, view, opts...)
}

// Post declares a POST route for view.
func Post(rule string, view *View, opts ...RouteOption) RouteNode {
	return internal.Post(rule, view, opts...)
}

// Put declares a PUT route for view.
func Put(rule string, view *View, opts ...RouteOption) RouteNode {
	return internal.Put(rule, view, opts...)
}

// Patch declares a PATCH route for view.
func Patch(rule string, view *View, opts ...RouteOption) RouteNode {
	return internal.Patch(rule, view, opts...)
}

// Delete declares a DELETE route for view.
func Delete(rule string, view *View, opts ...RouteOption) RouteNode {
	return internal.Delete(rule, view, opts...)
}

// Prefix nests children under a URL prefix.
func Prefix(prefix string, children ...RouteNode) RouteNode {
	return internal.Prefix(prefix, children...)
}

// Include nests the declarations of another routes module under a URL prefix.
func Include(prefix string, module *RoutesModule) RouteNode {
	return internal.Include(prefix, module)
}

// ControllerRoutes declares the routes of every routed method of ctrl.
func ControllerRoutes(prefix string, ctrl *Controller) RouteNode {
	return internal.ControllerRoutes(prefix, ctrl)
}

// Reduce flattens route declarations into concrete routes.
func Reduce(nodes ...RouteNode) ([]*Route, error) {
	return internal.Reduce(nodes...)
}

// WithEndpoint overrides the derived endpoint name.
func WithEndpoint(endpoint string) RouteOption {
	return internal.WithEndpoint(endpoint)
}

// WithMethods sets the accepted HTTP methods.
func WithMethods(methods ...string) RouteOption {
	return internal.WithMethods(methods...)
}

// WithDefaults sets default values for URL parameters.
func WithDefaults(defaults map[string]string) RouteOption {
	return internal.WithDefaults(defaults)
}

// WithRuleOptions sets extra options carried to the URL rule.
func WithRuleOptions(opts map[string]any) RouteOption {
	return internal.WithRuleOptions(opts)
}

// OnlyIf registers the route only when policy returns true for the app being built.
func OnlyIf(policy func(a *App) bool) RouteOption {
	return internal.OnlyIf(policy)
}

// App options

// WithBundles sets the bundles the application is built from, app bundle last.
func WithBundles(bundles ...*Bundle) Option {
	return internal.WithBundles(bundles...)
}

// WithHooks replaces the default hooks.
func WithHooks(hooks ...Hook) Option {
	return internal.WithHooks(hooks...)
}

// WithFS sets the filesystem bundle folders and the config file are read from.
func WithFS(fsys afero.Fs) Option {
	return internal.WithFS(fsys)
}

// WithRootPath sets the directory module paths are resolved against.
func WithRootPath(root string) Option {
	return internal.WithRootPath(root)
}

// WithConfigFile loads a YAML file whose top-level keys are bundle names.
func WithConfigFile(path string) Option {
	return internal.WithConfigFile(path)
}

// WithMiddleware adds global middleware to the application.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithErrorHandler sets a custom error handler for view errors.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks and extension checks.
//
// Example:
//
//	unchained.WithHealthChecks(
//	    unchained.WithReadinessCheck("upstream", pingUpstream),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithComponentLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id).
//
// Example:
//
//	unchained.WithComponentLogger("web", middlewares.RequestIDExtractor())
func WithComponentLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithComponentLogger(component, extractors...)
}

// Health options

// WithLivenessPath sets the liveness endpoint path. Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets the readiness endpoint path. Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Address sets the HTTP server address.
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the server logger. Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function run before the server accepts requests.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors and injection

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

// AsHTTPError extracts the HTTPError from an error chain if present.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Inject sets the `inject`-tagged fields of the struct target points to from the registry.
func Inject(r *Registry, target any) error {
	return internal.Inject(r, target)
}

// Resolve returns the registry entry named name as T.
func Resolve[T any](r *Registry, name string) (T, error) {
	return internal.Resolve[T](r, name)
}

// ConfigAs returns the config registered for bundleName as T.
func ConfigAs[T any](a *App, bundleName string) (T, bool) {
	return internal.ConfigAs[T](a, bundleName)
}

// Request helpers

// ContextValue returns the value stored under key with Set.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns the URL parameter name converted to T.
func Param[T Scalar](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns the query parameter name converted to T.
func Query[T Scalar](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault is like Query but returns defaultValue when the parameter is missing or invalid.
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// ExtensionAs returns the extension registered as name when it has type T.
func ExtensionAs[T any](c Context, name string) (T, bool) {
	return internal.ExtensionAs[T](c, name)
}

// ServiceAs returns the service registered as name when it has type T.
func ServiceAs[T any](c Context, name string) (T, bool) {
	return internal.ServiceAs[T](c, name)
}

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader returns a source that reads a request header.
func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

// FromQuery returns a source that reads a query parameter.
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

// FromParam returns a source that reads a URL parameter.
func FromParam(name string) ExtractorSource { return internal.FromParam(name) }

// FromContextValue returns a source that reads a string stored with Set.
func FromContextValue(key any) ExtractorSource { return internal.FromContextValue(key) }

// FromBearerToken returns a source that reads a Bearer token from the Authorization header.
func FromBearerToken() ExtractorSource { return internal.FromBearerToken() }

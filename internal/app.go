package internal

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"

	"github.com/dmitrymomot/unchained/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App is the application assembled from bundles.
// It owns the routing table and the shared registry. App is built by
// CreateApp and is read-only once construction has finished.
type App struct {
	env        Env
	fs         afero.Fs
	rootPath   string
	configFile string
	logger     *slog.Logger
	router     chi.Router

	bundles  []*Bundle
	meta     map[*Bundle]Metadata
	hooks    []Hook
	registry *Registry
	routes   *RouteTable
	configs  *orderedMap[any]
	actions  []Action

	rules     []*URLRule
	endpoints map[string][]*URLRule

	middlewares             []Middleware
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	shutdownHooks           []func(context.Context) error
	closers                 []func(context.Context) error

	built bool
}

// URLRule is a rule registered on the application's routing table.
type URLRule struct {
	Rule     string
	Endpoint string

	// ViewName is the qualified name of the view. An endpoint may be bound to
	// several rules, but only ever to one view.
	ViewName string
	Methods  []string
	Defaults map[string]string
	Options  map[string]any
	View     HandlerFunc

	// Middleware applies to this rule only, inside the app middleware.
	Middleware []Middleware
}

// Action records one thing a hook did while the application was built.
type Action struct {
	Hook   string
	Name   string
	Detail string
}

func newApp() *App {
	return &App{
		env:       Development,
		fs:        afero.NewOsFs(),
		rootPath:  ".",
		logger:    logger.NewNope(),
		router:    chi.NewRouter(),
		registry:  NewRegistry(),
		routes:    newRouteTable(),
		configs:   newOrderedMap[any](),
		endpoints: make(map[string][]*URLRule),
	}
}

// Env returns the environment the app was built for.
func (a *App) Env() Env {
	return a.env
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// FS returns the filesystem bundle folders are resolved on.
func (a *App) FS() afero.Fs {
	return a.fs
}

// Bundles returns the loaded bundles, app bundle last.
func (a *App) Bundles() []*Bundle {
	return slices.Clone(a.bundles)
}

// BundleMeta returns the metadata b was loaded with. A bundle outside the
// app's hierarchy has its identity only.
func (a *App) BundleMeta(b *Bundle) Metadata {
	if m, ok := a.meta[b]; ok {
		return m
	}
	return b.Meta()
}

// AppBundle returns the application bundle.
func (a *App) AppBundle() *Bundle {
	if len(a.bundles) == 0 {
		return nil
	}
	return a.bundles[len(a.bundles)-1]
}

// Hooks returns the hooks in the order they ran.
func (a *App) Hooks() []Hook {
	return slices.Clone(a.hooks)
}

// Registry returns the shared extension and service registry.
func (a *App) Registry() *Registry {
	return a.registry
}

// Routes returns the route table built by the routes hook.
func (a *App) Routes() *RouteTable {
	return a.routes
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// Handler returns the application as an http.Handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Actions returns what the hooks did, in order.
func (a *App) Actions() []Action {
	return slices.Clone(a.actions)
}

func (a *App) recordAction(hook, name, detail string) {
	a.actions = append(a.actions, Action{Hook: hook, Name: name, Detail: detail})
}

// Config returns the config struct loaded for the named bundle, or nil.
func (a *App) Config(bundleName string) any {
	v, _ := a.configs.get(bundleName)
	return v
}

// AppConfig returns the app bundle's config struct.
func (a *App) AppConfig() any {
	if b := a.AppBundle(); b != nil {
		return a.Config(b.Name())
	}
	return nil
}

// URLRules returns every registered rule in registration order.
func (a *App) URLRules() []URLRule {
	out := make([]URLRule, 0, len(a.rules))
	for _, r := range a.rules {
		out = append(out, *r)
	}
	return out
}

// ViewFunctions returns the endpoint to view mapping.
func (a *App) ViewFunctions() map[string]HandlerFunc {
	out := make(map[string]HandlerFunc, len(a.endpoints))
	for endpoint, rules := range a.endpoints {
		out[endpoint] = rules[0].View
	}
	return out
}

// Use appends application middleware. It runs for every registered rule.
// Use is only valid while the app is being built, e.g. from a bundle's
// deferred functions.
func (a *App) Use(mw ...Middleware) error {
	if a.built {
		return fmt.Errorf("%w: cannot add middleware", ErrFrozen)
	}
	a.middlewares = append(a.middlewares, mw...)
	return nil
}

// OnShutdown registers a cleanup function run by Run after the server stops.
func (a *App) OnShutdown(fn func(context.Context) error) error {
	if a.built {
		return fmt.Errorf("%w: cannot add shutdown hook", ErrFrozen)
	}
	if fn != nil {
		a.shutdownHooks = append(a.shutdownHooks, fn)
	}
	return nil
}

// AddURLRule registers rule on the routing table.
// Binding an endpoint that already serves a different view fails with
// ErrDuplicateEndpoint; a rule the router rejects fails with ErrInvalidRule.
func (a *App) AddURLRule(rule URLRule) error {
	return a.addURLRule(a.router, rule)
}

func (a *App) addURLRule(router chi.Router, rule URLRule) (err error) {
	if a.built {
		return fmt.Errorf("%w: cannot add url rule %s", ErrFrozen, rule.Rule)
	}
	if rule.View == nil {
		return fmt.Errorf("%w: %s has no view", ErrInvalidRule, rule.Rule)
	}
	if rule.Rule == "" || rule.Rule[0] != '/' {
		return fmt.Errorf("%w: %q must start with a slash", ErrInvalidRule, rule.Rule)
	}
	if rule.Endpoint == "" {
		rule.Endpoint = rule.ViewName
	}
	if existing, ok := a.endpoints[rule.Endpoint]; ok && existing[0].ViewName != rule.ViewName {
		return fmt.Errorf("%w: %s is bound to %s, cannot bind it to %s",
			ErrDuplicateEndpoint, rule.Endpoint, existing[0].ViewName, rule.ViewName)
	}

	r := rule
	r.Methods = normalizeMethods(rule.Methods)
	if len(r.Methods) == 0 {
		r.Methods = []string{http.MethodGet}
	}
	r.Defaults = maps.Clone(rule.Defaults)
	r.Options = maps.Clone(rule.Options)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: %v", ErrInvalidRule, r.Rule, rec)
		}
	}()
	h := a.serve(&r)
	for _, m := range r.Methods {
		router.Method(m, r.Rule, h)
	}

	a.rules = append(a.rules, &r)
	a.endpoints[r.Endpoint] = append(a.endpoints[r.Endpoint], &r)
	a.logger.Debug("registered url rule",
		slog.String("rule", r.Rule),
		slog.String("endpoint", r.Endpoint),
		slog.Any("methods", r.Methods),
	)
	return nil
}

// serve adapts a rule's view to http.Handler. Middleware is resolved per
// request because deferred functions may still add app middleware after
// routes have been registered.
func (a *App) serve(rule *URLRule) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a, rule)
		h := chain(rule.View, a.middlewares, rule.Middleware)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// wrapHandler converts a HandlerFunc without a rule, such as the not-found handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a, nil)
		if err := chain(h, a.middlewares)(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError handles errors from views using the configured error handler.
func (a *App) handleError(c Context, err error) {
	// Check if response has already been written
	if c.Written() {
		a.logger.ErrorContext(c, "view failed after response was written",
			slog.String("endpoint", c.Endpoint()),
			slog.Any("error", err),
		)
		return
	}
	h := a.errorHandler
	if h == nil {
		h = defaultErrorHandler
	}
	if herr := h(c, err); herr != nil && !c.Written() {
		http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// finalize installs the fallback handlers and probes once every hook has run.
func (a *App) finalize() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}
	if a.healthConfig != nil {
		checks := make(healthChecks, len(a.healthConfig.checks))
		maps.Copy(checks, a.healthConfig.checks)
		for _, name := range a.registry.ExtensionNames() {
			ext, _ := a.registry.Extension(name)
			if hc, ok := ext.(HealthChecker); ok {
				if _, exists := checks[name]; !exists {
					checks[name] = hc.HealthCheck
				}
			}
		}
		a.router.Get(a.healthConfig.livenessPath, livenessHandler())
		a.router.Get(a.healthConfig.readinessPath, readinessHandler(checks, a.logger))
	}
	a.registry.Freeze()
	a.built = true
}

var ruleParam = regexp.MustCompile(`\{([^{}:]+)(?::[^{}]*)?\}`)

// URLFor builds the path of endpoint. Params fill the rule's placeholders,
// missing ones fall back to the rule's defaults, and the remaining params
// become the query string. When an endpoint has several rules, the first
// one whose placeholders can all be filled is used.
//
// Example:
//
//	path, err := app.URLFor("site_controller.post", map[string]string{"id": "42", "ref": "home"})
//	// "/posts/42?ref=home"
func (a *App) URLFor(endpoint string, params map[string]string) (string, error) {
	rules, ok := a.endpoints[endpoint]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownEndpoint, endpoint)
	}

	for _, rule := range rules {
		used := make(map[string]bool)
		missing := false
		path := ruleParam.ReplaceAllStringFunc(rule.Rule, func(m string) string {
			name := ruleParam.FindStringSubmatch(m)[1]
			v, ok := params[name]
			if !ok {
				v, ok = rule.Defaults[name]
			}
			if !ok {
				missing = true
				return m
			}
			used[name] = true
			return url.PathEscape(v)
		})
		if missing {
			continue
		}
		if strings.HasSuffix(path, "*") {
			path = strings.TrimSuffix(path, "*") + strings.TrimPrefix(params["*"], "/")
			used["*"] = true
		}

		query := url.Values{}
		for k, v := range params {
			if used[k] {
				continue
			}
			if d, ok := rule.Defaults[k]; ok && d == v {
				continue
			}
			query.Set(k, v)
		}
		if len(query) > 0 {
			path += "?" + query.Encode()
		}
		return path, nil
	}
	return "", fmt.Errorf("%w: %s: missing parameters for %s", ErrUnknownEndpoint, endpoint, rules[0].Rule)
}

// URLForController builds the path of a controller method keyed "<controller>.<method>".
func (a *App) URLForController(key string, params map[string]string) (string, error) {
	route, ok := a.routes.controllerEndpoints.get(key)
	if !ok {
		return "", fmt.Errorf("%w: controller method %s", ErrUnknownEndpoint, key)
	}
	return a.URLFor(route.FullEndpoint(), params)
}

// ShellContext returns the names available to an interactive shell:
// the app, the registry, and whatever the hooks contribute.
func (a *App) ShellContext() map[string]any {
	ctx := map[string]any{
		"app":      a,
		"registry": a.registry,
	}
	for _, h := range a.hooks {
		if u, ok := h.(ShellContextUpdater); ok {
			u.UpdateShellContext(a, ctx)
		}
	}
	return ctx
}

package internal

import (
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Route is a concrete URL rule bound to a view, produced by reducing route declarations.
type Route struct {
	// Rule is the rule as declared, before prefixes are applied.
	Rule string

	// Endpoint overrides the derived endpoint name.
	Endpoint string

	// Methods accepted by the route. Defaults to GET.
	Methods []string

	// Defaults are values for URL parameters the rule does not capture.
	Defaults map[string]string

	// Options are extra rule options passed through to the URL rule.
	Options map[string]any

	// View handles matched requests.
	View HandlerFunc

	// ViewName is the view function or controller method name.
	ViewName string

	// ModuleName is the dotted path of the module the view is declared in.
	ModuleName string

	// ControllerName is the snake-cased controller name for controller methods.
	ControllerName string

	onlyIf   func(a *App) bool
	fullRule string
}

// FullRule returns the rule with every enclosing prefix applied.
func (r *Route) FullRule() string {
	if r.fullRule == "" {
		return joinRule(r.Rule)
	}
	return r.fullRule
}

// FullEndpoint returns the endpoint the route is registered under.
// Controller routes default to "<controller>.<method>", view routes to
// "<last module segment>.<view>".
func (r *Route) FullEndpoint() string {
	if r.Endpoint != "" {
		return r.Endpoint
	}
	if r.ControllerName != "" {
		return r.ControllerName + "." + r.ViewName
	}
	if r.ModuleName != "" {
		return lastSegment(r.ModuleName) + "." + r.ViewName
	}
	return r.ViewName
}

// FullName returns the fully qualified view name.
func (r *Route) FullName() string {
	parts := make([]string, 0, 3)
	if r.ModuleName != "" {
		parts = append(parts, r.ModuleName)
	}
	if r.ControllerName != "" {
		parts = append(parts, r.ControllerName)
	}
	return strings.Join(append(parts, r.ViewName), ".")
}

// MethodName returns the view name, which for controller routes is the method name.
func (r *Route) MethodName() string {
	return r.ViewName
}

// HTTPMethods returns the accepted methods, GET when none were declared.
func (r *Route) HTTPMethods() []string {
	if len(r.Methods) == 0 {
		return []string{http.MethodGet}
	}
	return r.Methods
}

// ShouldRegister reports whether the route is registered on a.
// Routes without an OnlyIf policy are always registered.
func (r *Route) ShouldRegister(a *App) bool {
	return r.onlyIf == nil || r.onlyIf(a)
}

func (r *Route) reduce(prefix string) ([]*Route, error) {
	if r.View == nil {
		return nil, invalidRouteError(r.FullName(), "has no view")
	}
	cp := r.clone()
	cp.fullRule = joinRule(prefix, r.FullRule())
	return []*Route{cp}, nil
}

func (r *Route) clone() *Route {
	cp := *r
	cp.Methods = slices.Clone(r.Methods)
	cp.Defaults = maps.Clone(r.Defaults)
	cp.Options = maps.Clone(r.Options)
	return &cp
}

// urlRule converts the route into the rule registered on the application.
func (r *Route) urlRule() URLRule {
	return URLRule{
		Rule:     r.FullRule(),
		Endpoint: r.FullEndpoint(),
		ViewName: r.FullName(),
		Methods:  r.HTTPMethods(),
		Defaults: r.Defaults,
		Options:  r.Options,
		View:     r.View,
	}
}

// RouteOption customizes a declared route.
type RouteOption func(*Route)

// WithEndpoint overrides the derived endpoint name.
func WithEndpoint(endpoint string) RouteOption {
	return func(r *Route) {
		r.Endpoint = endpoint
	}
}

// WithMethods sets the accepted HTTP methods.
func WithMethods(methods ...string) RouteOption {
	return func(r *Route) {
		r.Methods = normalizeMethods(methods)
	}
}

// WithDefaults sets default values for URL parameters.
func WithDefaults(defaults map[string]string) RouteOption {
	return func(r *Route) {
		if r.Defaults == nil {
			r.Defaults = make(map[string]string, len(defaults))
		}
		maps.Copy(r.Defaults, defaults)
	}
}

// WithRuleOptions sets extra options carried to the URL rule.
func WithRuleOptions(opts map[string]any) RouteOption {
	return func(r *Route) {
		if r.Options == nil {
			r.Options = make(map[string]any, len(opts))
		}
		maps.Copy(r.Options, opts)
	}
}

// OnlyIf registers the route only when policy returns true for the app being built.
//
// Example:
//
//	unchained.Get("/debug", views.Debug, unchained.OnlyIf(func(a *unchained.App) bool {
//	    return a.Env() == unchained.Development
//	}))
func OnlyIf(policy func(a *App) bool) RouteOption {
	return func(r *Route) {
		r.onlyIf = policy
	}
}

func normalizeMethods(methods []string) []string {
	out := make([]string, 0, len(methods))
	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" && !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

// joinRule joins rule segments into a single rule with one leading slash
// and no duplicate slashes. A trailing slash on the last segment is kept,
// but a bare "/" under a prefix adds nothing: Prefix("/api", Get("/", v))
// serves /api, the rule Include mounts collection views at.
func joinRule(parts ...string) string {
	segments := make([]string, 0, len(parts))
	trailing := false
	for _, p := range parts {
		if p == "" {
			continue
		}
		trailing = strings.HasSuffix(p, "/") && strings.Trim(p, "/") != ""
		if s := strings.Trim(p, "/"); s != "" {
			segments = append(segments, s)
		}
	}
	rule := "/" + strings.Join(segments, "/")
	if trailing {
		rule += "/"
	}
	return rule
}

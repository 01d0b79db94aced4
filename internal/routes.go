package internal

import (
	"fmt"
	"maps"
)

// RouteNode is a route declaration: a single route, a prefixed group, an
// included routes module or a controller. Reduce flattens a tree of them.
type RouteNode interface {
	reduce(prefix string) ([]*Route, error)
}

// RouteSpec is route metadata attached to a view or a controller method.
type RouteSpec struct {
	Rule     string
	Methods  []string
	Endpoint string
	Defaults map[string]string
	Options  map[string]any
	OnlyIf   func(a *App) bool
}

// View is a view function together with the routes it declares.
type View struct {
	// Name is the view function name, e.g. "view_one".
	Name string

	// Module is the dotted path of the module the view lives in.
	Module string

	Handler HandlerFunc

	// Routes declared on the view. Only views with routes are auto-discovered.
	Routes []RouteSpec
}

// Controller groups methods that share a URL prefix.
type Controller struct {
	// Type is the controller type name, e.g. "SiteController".
	Type string

	// Module is the dotted path of the module the controller lives in.
	Module string

	// URLPrefix is prepended to every method rule.
	URLPrefix string

	Methods []ControllerMethod
}

// ControllerMethod is a controller view method.
type ControllerMethod struct {
	Name    string
	Handler HandlerFunc
	Routes  []RouteSpec
}

// Name returns the snake-cased controller name used in endpoints.
func (c *Controller) Name() string {
	return SnakeCase(c.Type)
}

// ViewsModule is a bundle's views submodule: the source of auto-discovered routes.
type ViewsModule struct {
	Module      string
	Controllers []*Controller
	Views       []*View

	// Routes, when set, contributes further declarations after the discovered ones.
	Routes func() []RouteNode
}

// RoutesModule is a bundle's explicit routes submodule.
type RoutesModule struct {
	Module string

	// Routes returns the route declarations. A routes module without it is a
	// configuration error.
	Routes func() []RouteNode
}

func (m *RoutesModule) routes() ([]RouteNode, error) {
	if m.Routes == nil {
		return nil, missingRoutesError(m.Module)
	}
	return m.Routes(), nil
}

// Func declares routes for view. An empty rule uses the routes declared on
// the view, or "/<view name>" when it declares none.
//
// Example:
//
//	unchained.Func("/", views.Index, unchained.WithMethods("GET", "POST"))
func Func(rule string, view *View, opts ...RouteOption) RouteNode {
	return &viewNode{rule: rule, view: view, opts: opts}
}

// Get declares a GET route for view.
func Get(rule string, view *View, opts ...RouteOption) RouteNode {
	return Func(rule, view, append([]RouteOption{WithMethods("GET")}, opts...)...)
}

// Post declares a POST route for view.
func Post(rule string, view *View, opts ...RouteOption) RouteNode {
	return Func(rule, view, append([]RouteOption{WithMethods("POST")}, opts...)...)
}

// Put declares a PUT route for view.
func Put(rule string, view *View, opts ...RouteOption) RouteNode {
	return Func(rule, view, append([]RouteOption{WithMethods("PUT")}, opts...)...)
}

// Patch declares a PATCH route for view.
func Patch(rule string, view *View, opts ...RouteOption) RouteNode {
	return Func(rule, view, append([]RouteOption{WithMethods("PATCH")}, opts...)...)
}

// Delete declares a DELETE route for view.
func Delete(rule string, view *View, opts ...RouteOption) RouteNode {
	return Func(rule, view, append([]RouteOption{WithMethods("DELETE")}, opts...)...)
}

// Prefix nests children under a URL prefix.
//
// Example:
//
//	unchained.Prefix("/api",
//	    unchained.Get("/users", views.ListUsers),
//	    unchained.Post("/users", views.CreateUser),
//	)
func Prefix(prefix string, children ...RouteNode) RouteNode {
	return &groupNode{prefix: prefix, children: children}
}

// Include nests the declarations of another routes module under a URL prefix.
func Include(prefix string, module *RoutesModule) RouteNode {
	return &includeNode{prefix: prefix, module: module}
}

// ControllerRoutes declares the routes of every routed method of ctrl.
// A non-empty prefix replaces the controller's own URL prefix.
func ControllerRoutes(prefix string, ctrl *Controller) RouteNode {
	return &controllerNode{prefix: prefix, ctrl: ctrl}
}

// Reduce flattens route declarations into concrete routes in declaration order.
func Reduce(nodes ...RouteNode) ([]*Route, error) {
	return reduceAll("", nodes)
}

func reduceAll(prefix string, nodes []RouteNode) ([]*Route, error) {
	var out []*Route
	for _, n := range nodes {
		if n == nil {
			continue
		}
		routes, err := n.reduce(prefix)
		if err != nil {
			return nil, err
		}
		out = append(out, routes...)
	}
	return out, nil
}

type viewNode struct {
	rule string
	view *View
	opts []RouteOption
}

func (n *viewNode) reduce(prefix string) ([]*Route, error) {
	if n.view == nil {
		return nil, invalidRouteError(n.rule, "has no view")
	}
	specs := n.view.Routes
	if n.rule != "" || len(specs) == 0 {
		rule := n.rule
		if rule == "" {
			rule = "/" + n.view.Name
		}
		specs = []RouteSpec{{Rule: rule}}
	}

	out := make([]*Route, 0, len(specs))
	for _, spec := range specs {
		r := routeFromSpec(spec, n.view.Handler)
		r.ViewName = n.view.Name
		r.ModuleName = n.view.Module
		for _, opt := range n.opts {
			opt(r)
		}
		reduced, err := r.reduce(prefix)
		if err != nil {
			return nil, err
		}
		out = append(out, reduced...)
	}
	return out, nil
}

type groupNode struct {
	prefix   string
	children []RouteNode
}

func (n *groupNode) reduce(prefix string) ([]*Route, error) {
	return reduceAll(joinRule(prefix, n.prefix), n.children)
}

type includeNode struct {
	prefix string
	module *RoutesModule
}

func (n *includeNode) reduce(prefix string) ([]*Route, error) {
	if n.module == nil {
		return nil, invalidRouteError(n.prefix, "includes a nil routes module")
	}
	nodes, err := n.module.routes()
	if err != nil {
		return nil, err
	}
	return reduceAll(joinRule(prefix, n.prefix), nodes)
}

type controllerNode struct {
	prefix string
	ctrl   *Controller
}

func (n *controllerNode) reduce(prefix string) ([]*Route, error) {
	if n.ctrl == nil {
		return nil, invalidRouteError(n.prefix, "declares a nil controller")
	}
	ctrlPrefix := n.ctrl.URLPrefix
	if n.prefix != "" {
		ctrlPrefix = n.prefix
	}
	var out []*Route
	for _, m := range n.ctrl.Methods {
		for _, spec := range m.Routes {
			r := routeFromSpec(spec, m.Handler)
			r.ViewName = m.Name
			r.ModuleName = n.ctrl.Module
			r.ControllerName = n.ctrl.Name()
			reduced, err := r.reduce(joinRule(prefix, ctrlPrefix))
			if err != nil {
				return nil, err
			}
			out = append(out, reduced...)
		}
	}
	return out, nil
}

func routeFromSpec(spec RouteSpec, h HandlerFunc) *Route {
	return &Route{
		Rule:     spec.Rule,
		Endpoint: spec.Endpoint,
		Methods:  normalizeMethods(spec.Methods),
		Defaults: maps.Clone(spec.Defaults),
		Options:  maps.Clone(spec.Options),
		View:     h,
		onlyIf:   spec.OnlyIf,
	}
}

// collectViewRoutes auto-discovers the routes of a views module:
// controllers first, then routed views, then its extra declarations.
// Controllers and views without a module inherit the views module's path.
func collectViewRoutes(vm *ViewsModule) []RouteNode {
	var nodes []RouteNode
	for _, ctrl := range vm.Controllers {
		if ctrl == nil {
			continue
		}
		if ctrl.Module == "" {
			cp := *ctrl
			cp.Module = vm.Module
			ctrl = &cp
		}
		nodes = append(nodes, ControllerRoutes("", ctrl))
	}
	for _, v := range vm.Views {
		if v == nil || len(v.Routes) == 0 {
			continue
		}
		if v.Module == "" {
			cp := *v
			cp.Module = vm.Module
			v = &cp
		}
		nodes = append(nodes, Func("", v))
	}
	if vm.Routes != nil {
		nodes = append(nodes, vm.Routes()...)
	}
	return nodes
}

func invalidRouteError(what, problem string) error {
	return fmt.Errorf("%w: route %s %s", ErrInvalidRule, what, problem)
}

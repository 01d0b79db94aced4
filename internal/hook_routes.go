package internal

import (
	"log/slog"
)

// RouteTable is the routing state produced by the routes hook.
type RouteTable struct {
	endpoints           *orderedMap[*Route]
	controllerEndpoints *orderedMap[*Route]
	bundleRoutes        *orderedMap[[]*Route]
	otherRoutes         []*Route
}

func newRouteTable() *RouteTable {
	return &RouteTable{
		endpoints:           newOrderedMap[*Route](),
		controllerEndpoints: newOrderedMap[*Route](),
		bundleRoutes:        newOrderedMap[[]*Route](),
	}
}

// Endpoints returns the stored routes in first-declaration order of their endpoints.
func (t *RouteTable) Endpoints() []*Route {
	return t.endpoints.list()
}

// EndpointNames returns the stored endpoint names in order.
func (t *RouteTable) EndpointNames() []string {
	return t.endpoints.names()
}

// Endpoint returns the route stored for endpoint.
func (t *RouteTable) Endpoint(endpoint string) (*Route, bool) {
	return t.endpoints.get(endpoint)
}

// ControllerEndpoint returns the route of a controller method keyed "<controller>.<method>".
func (t *RouteTable) ControllerEndpoint(key string) (*Route, bool) {
	return t.controllerEndpoints.get(key)
}

// BundleRoutes returns the routes attributed to the bundle with the given module name.
func (t *RouteTable) BundleRoutes(module string) []*Route {
	routes, _ := t.bundleRoutes.get(module)
	return routes
}

// OtherRoutes returns the routes registered directly on the app.
func (t *RouteTable) OtherRoutes() []*Route {
	return append([]*Route(nil), t.otherRoutes...)
}

// RoutesHook builds the routing table from the app bundle's route declarations.
type RoutesHook struct{}

// NewRoutesHook creates the routes hook.
func NewRoutesHook() *RoutesHook {
	return &RoutesHook{}
}

func (h *RoutesHook) Spec() HookSpec {
	return HookSpec{
		Name:             "routes",
		BundleModuleName: "routes",
		Priority:         70,
		RunBefore:        []string{"bundle_routes"},
		RunAfter:         []string{"services"},
	}
}

// RunHook uses the app bundle's explicit routes module when it has one and
// otherwise discovers routes from its views module.
func (h *RoutesHook) RunHook(a *App, bundles []*Bundle) error {
	if len(bundles) == 0 {
		return nil
	}
	appBundle := bundles[len(bundles)-1]

	var (
		nodes []RouteNode
		err   error
	)
	if appBundle.Routes != nil {
		nodes, err = ExplicitRoutes(appBundle)
	} else {
		nodes = CollectRoutes(appBundle)
	}
	if err != nil {
		return err
	}
	return h.processObjects(a, nodes)
}

// ExplicitRoutes returns the declarations of the bundle's routes module.
// A routes module that does not expose its routes is a configuration error.
func ExplicitRoutes(b *Bundle) ([]RouteNode, error) {
	if b.Routes == nil {
		return nil, missingRoutesError(b.ModuleName() + ".routes")
	}
	if b.Routes.Module == "" {
		m := *b.Routes
		m.Module = b.ModuleName() + ".routes"
		return m.routes()
	}
	return b.Routes.routes()
}

// CollectRoutes discovers routes from the views module of the bundle, or of
// its nearest ancestor that declares one.
func CollectRoutes(b *Bundle) []RouteNode {
	for cur := b; cur != nil; cur = cur.Parent {
		if cur.Views == nil {
			continue
		}
		vm := cur.Views
		if vm.Module == "" {
			cp := *vm
			cp.Module = cur.ViewsModule()
			vm = &cp
		}
		return collectViewRoutes(vm)
	}
	return nil
}

func (h *RoutesHook) processObjects(a *App, nodes []RouteNode) error {
	routes, err := Reduce(nodes...)
	if err != nil {
		return err
	}

	table := a.routes
	for _, route := range routes {
		if !route.ShouldRegister(a) {
			a.logger.Debug("skipping route", slog.String("endpoint", route.FullEndpoint()))
			continue
		}
		endpoint := route.FullEndpoint()
		if prev, dup := table.endpoints.get(endpoint); dup {
			a.logger.Warn("endpoint declared twice, the last declaration wins",
				slog.String("endpoint", endpoint),
				slog.String("previous", prev.FullName()),
				slog.String("view", route.FullName()),
			)
		}
		table.endpoints.set(endpoint, route)
		if route.ControllerName != "" {
			table.controllerEndpoints.set(route.ControllerName+"."+route.MethodName(), route)
		}
	}

	owners := contributingBundles(a.bundles)
	for _, endpoint := range table.endpoints.names() {
		route, _ := table.endpoints.get(endpoint)
		owner, owned := routeOwner(route.ModuleName, owners)
		if !owned {
			table.otherRoutes = append(table.otherRoutes, route)
			continue
		}
		list, _ := table.bundleRoutes.get(owner)
		table.bundleRoutes.set(owner, append(list, route))
	}

	for _, route := range table.otherRoutes {
		if err := a.AddURLRule(route.urlRule()); err != nil {
			return err
		}
		a.recordAction("routes", route.FullEndpoint(), route.FullRule()+" "+route.FullName())
	}
	a.logger.Info("routes registered",
		slog.Int("endpoints", table.endpoints.len()),
		slog.Int("app_routes", len(table.otherRoutes)),
	)
	return nil
}

// bundleOwner pairs a loaded bundle's module with the modules of its
// ancestors that declare views.
type bundleOwner struct {
	module    string
	ancestors []string
}

func contributingBundles(bundles []*Bundle) []bundleOwner {
	owners := make([]bundleOwner, 0, len(bundles))
	for _, b := range bundles {
		var ancestors []string
		for _, parent := range b.Hierarchy(false, false) {
			if parent.HasViews() {
				ancestors = append(ancestors, parent.ModuleName())
			}
		}
		if len(ancestors) > 0 {
			owners = append(owners, bundleOwner{module: b.ModuleName(), ancestors: ancestors})
		}
	}
	return owners
}

// routeOwner returns the module of the first loaded bundle whose ancestor
// contains module. Matching respects dotted path boundaries.
func routeOwner(module string, owners []bundleOwner) (string, bool) {
	if module == "" {
		return "", false
	}
	for _, o := range owners {
		for _, ancestor := range o.ancestors {
			if withinModule(module, ancestor) {
				return o.module, true
			}
		}
	}
	return "", false
}

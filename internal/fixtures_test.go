package internal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/unchained/internal"
)

const (
	appModule       = "tests.bundles.app"
	appViewsModule  = "tests.bundles.app.views"
	vendorModule    = "tests.bundles.vendor"
	vendorViews     = "tests.bundles.vendor.views"
	vendorExtModule = "tests.bundles.vendor_ext"
)

// renders returns a view that writes "<name> rendered".
func renders(name string) internal.HandlerFunc {
	return func(c internal.Context) error {
		return c.String(http.StatusOK, name+" rendered")
	}
}

func routed(name, module, rule string) *internal.View {
	return &internal.View{
		Name:    name,
		Module:  module,
		Handler: renders(name),
		Routes:  []internal.RouteSpec{{Rule: rule}},
	}
}

// appViews mirrors a typical views package: one controller, two local views,
// two views imported from submodules and one helper without routes.
type appViews struct {
	site  *internal.Controller
	one   *internal.View
	two   *internal.View
	three *internal.View
	four  *internal.View
}

func newAppViews() appViews {
	return appViews{
		site: &internal.Controller{
			Type: "SiteController",
			Methods: []internal.ControllerMethod{
				{Name: "index", Handler: renders("index"), Routes: []internal.RouteSpec{{Rule: "/"}}},
				{Name: "about", Handler: renders("about"), Routes: []internal.RouteSpec{{Rule: "/about"}}},
			},
		},
		one:   routed("view_one", appViewsModule, "/one"),
		two:   routed("view_two", appViewsModule, "/two"),
		three: routed("view_three", appViewsModule+".three", "/three"),
		four:  routed("view_four", appViewsModule+".four", "/four"),
	}
}

func (v appViews) module() *internal.ViewsModule {
	return &internal.ViewsModule{
		Controllers: []*internal.Controller{v.site},
		Views: []*internal.View{
			v.one,
			v.two,
			v.three,
			v.four,
			{Name: "helper", Handler: renders("helper")},
		},
	}
}

// siteConfig is the app bundle config of the fixtures.
type siteConfig struct {
	Title string `yaml:"title"`
}

// siteConfigs declares a config for every environment.
func siteConfigs() map[internal.Env]any {
	return map[internal.Env]any{
		internal.Development: &siteConfig{Title: "dev"},
		internal.Production:  &siteConfig{Title: "prod"},
		internal.Staging:     &siteConfig{Title: "staging"},
		internal.Test:        &siteConfig{Title: "test"},
	}
}

// appBundle returns an app bundle whose routes are discovered from its views.
func appBundle() *internal.Bundle {
	return &internal.Bundle{
		Type:   "AppBundle",
		Module: appModule + ".bundle",
		App:    true,
		Views:  newAppViews().module(),
		Config: siteConfigs(),
	}
}

// explicitAppBundle declares five routes, two of them for the same view.
func explicitAppBundle() *internal.Bundle {
	v := newAppViews()
	return &internal.Bundle{
		Type:   "AppBundle",
		Module: appModule,
		App:    true,
		Views:  v.module(),
		Config: siteConfigs(),
		Routes: &internal.RoutesModule{Routes: func() []internal.RouteNode {
			return []internal.RouteNode{
				internal.Func("/", v.one),
				internal.Func("/two", v.two),
				internal.Prefix("/nested", internal.Func("", v.three)),
				internal.Func("/four", v.four),
				internal.Func("/one-again", v.one),
			}
		}},
	}
}

func vendorIndex() *internal.View {
	return routed("vendor_index", vendorViews, "/vendor")
}

func vendorBundle() *internal.Bundle {
	return &internal.Bundle{
		Type:   "VendorBundle",
		Module: vendorModule,
		Views:  &internal.ViewsModule{Views: []*internal.View{vendorIndex()}},
		Middleware: []internal.Middleware{
			headerMiddleware("X-Layer", "vendor"),
		},
	}
}

func extendedVendorBundle(parent *internal.Bundle) *internal.Bundle {
	return &internal.Bundle{
		Type:   "VendorExtBundle",
		Module: vendorExtModule,
		Parent: parent,
		Middleware: []internal.Middleware{
			headerMiddleware("X-Layer", "vendor_ext"),
		},
	}
}

// headerMiddleware appends value to the response header name.
func headerMiddleware(name, value string) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.Response().Header().Add(name, value)
			return next(c)
		}
	}
}

func newTestApp(t *testing.T, env internal.Env, opts ...internal.Option) *internal.App {
	t.Helper()
	opts = append([]internal.Option{internal.WithFS(afero.NewMemMapFs())}, opts...)
	app, err := internal.CreateApp(env, opts...)
	require.NoError(t, err)
	return app
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// recorder collects lifecycle events from concurrent callers.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

type fakeExtension struct {
	name      string
	rec       *recorder
	initErr   error
	healthErr error
}

func (e *fakeExtension) InitApp(*internal.App) error {
	e.rec.add("init:" + e.name)
	return e.initErr
}

func (e *fakeExtension) HealthCheck(context.Context) error {
	return e.healthErr
}

func (e *fakeExtension) Shutdown(context.Context) error {
	e.rec.add("shutdown:" + e.name)
	return nil
}

func extensionEntry(name string, rec *recorder, deps ...string) internal.ExtensionEntry {
	return internal.ExtensionEntry{
		Name:         name,
		Extension:    &fakeExtension{name: name, rec: rec},
		Dependencies: deps,
	}
}

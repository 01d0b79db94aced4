package internal

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
)

// BundleRoutesHook serves the routes the routes hook attributed to a bundle.
// Each bundle gets its own chi group, and its routes run the middleware the
// bundle and its ancestors declare, base-most first.
type BundleRoutesHook struct{}

// NewBundleRoutesHook creates the bundle routes hook.
func NewBundleRoutesHook() *BundleRoutesHook {
	return &BundleRoutesHook{}
}

func (h *BundleRoutesHook) Spec() HookSpec {
	return HookSpec{
		Name:     "bundle_routes",
		Priority: 75,
	}
}

func (h *BundleRoutesHook) RunHook(a *App, bundles []*Bundle) error {
	for _, b := range bundles {
		routes := a.routes.BundleRoutes(b.ModuleName())
		if len(routes) == 0 {
			continue
		}

		var mw []Middleware
		for _, hb := range b.Hierarchy(true, true) {
			mw = append(mw, hb.Middleware...)
		}

		var err error
		a.router.Group(func(r chi.Router) {
			for _, route := range routes {
				rule := route.urlRule()
				rule.Middleware = mw
				if err = a.addURLRule(r, rule); err != nil {
					return
				}
				a.recordAction("bundle_routes", route.FullEndpoint(), b.Name()+" "+route.FullRule())
			}
		})
		if err != nil {
			return err
		}
		a.logger.Debug("bundle routes registered",
			slog.String("bundle", b.Name()),
			slog.Int("count", len(routes)),
		)
	}
	return nil
}

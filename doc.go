// Package unchained composes web applications out of bundles.
//
// A bundle is a self-contained unit of functionality: it contributes
// configuration, extensions, services, views and routes. An application is
// assembled from an ordered list of bundles, the last of which is the app
// bundle. Bundles may extend other bundles; a derived bundle inherits its
// parent's contributions and overrides them entry by entry.
//
// # Quick Start
//
// Declare the app bundle, build the application and run it:
//
//	var Bundle = &unchained.Bundle{
//	    Type:   "MyAppBundle",
//	    Module: "myapp",
//	    App:    true,
//	    Views:  &unchained.ViewsModule{Views: []*unchained.View{views.Index}},
//	    Config: map[unchained.Env]any{
//	        unchained.Development: &DevConfig{},
//	        unchained.Production:  &ProdConfig{},
//	    },
//	}
//
//	app, err := unchained.CreateApp(unchained.Production,
//	    unchained.WithBundles(security.Bundle, Bundle),
//	    unchained.WithConfigFile("config.yaml"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Hooks
//
// Everything a bundle contributes is discovered by a hook. The default hooks
// populate configs, initialize extensions in dependency order, register and
// inject services, build the routing table and serve bundle static folders.
// Custom hooks declare a priority and the hooks they must run before or after:
//
//	type commandsHook struct{}
//
//	func (commandsHook) Spec() unchained.HookSpec {
//	    return unchained.HookSpec{Name: "commands", Priority: 80, RunAfter: []string{"routes"}}
//	}
//
//	func (commandsHook) RunHook(a *unchained.App, bundles []*unchained.Bundle) error { ... }
//
//	unchained.CreateApp(env, unchained.WithHooks(append(unchained.DefaultHooks(), commandsHook{})...))
//
// # Routes
//
// The app bundle decides which routes exist. Without an explicit routes
// module, every routed view and controller of its views module is
// registered. With one, only the declared routes are:
//
//	Routes: &unchained.RoutesModule{Routes: func() []unchained.RouteNode {
//	    return []unchained.RouteNode{
//	        unchained.Get("/", views.Index),
//	        unchained.Include("/auth", security.Routes),
//	        unchained.ControllerRoutes("/site", views.Site),
//	    }
//	}},
//
// Routes whose views live in another bundle are served with that bundle's
// middleware. Endpoints are reversed with App.URLFor.
//
// # Views
//
// Views receive a [Context], which embeds context.Context:
//
//	func showUser(c unchained.Context) error {
//	    users, _ := unchained.ServiceAs[*UserManager](c, "user_manager")
//	    user, err := users.Get(c, unchained.Param[int64](c, "id"))
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusOK, user)
//	}
//
// Return an [HTTPError] to control the response status, or install a custom
// error handler with [WithErrorHandler].
package unchained

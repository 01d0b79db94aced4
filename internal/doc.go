// Package internal provides the core types and implementation for the Unchained framework.
//
// This package is internal and should not be used directly. Import "github.com/dmitrymomot/unchained"
// instead, which re-exports the public API.
//
// # Core Types
//
//   - Bundle: A unit of functionality contributing config, extensions, services, views and routes
//   - App: The application assembled from bundles, with its routing table and registry
//   - Hook: Discovers one kind of object across all bundles and applies it to the App
//   - Registry: The shared store of extensions and services, frozen once the App is built
//   - Route: A concrete URL rule produced by reducing route declarations
//   - Context: Provides request/response access and helper methods to views
//
// # Building an Application
//
// CreateApp loads the bundles, runs every bundle's BeforeInit, runs the hooks
// in dependency order, applies the bundles' deferred functions, runs AfterInit
// and freezes the registry:
//
//	app, err := internal.CreateApp(internal.Production,
//	    internal.WithBundles(vendor.Bundle, myapp.Bundle),
//	    internal.WithConfigFile("config.yaml"),
//	)
//
// The last bundle is the app bundle. It alone decides which routes exist:
// either through its explicit routes module or, without one, through the
// controllers and views of its views module.
//
// # Hooks
//
// The default hooks run in this order:
//
//	config         selects and populates each bundle's config for the environment
//	extensions     initializes extensions in dependency order and registers them
//	services       registers services and injects their tagged fields
//	routes         builds the routing table from the app bundle's declarations
//	bundle_routes  serves routes owned by a bundle with that bundle's middleware
//	static         serves each bundle's static folder
//
// Hooks order themselves by Priority, then by their RunBefore and RunAfter
// constraints. Custom hooks are installed with WithHooks.
//
// # Bundle Inheritance
//
// A bundle may extend another through Parent. Contributions are merged from
// the base-most bundle to the most derived one, so a derived bundle replaces
// an entry of its parent by declaring one with the same name. Merged entries
// keep the position of their first declaration.
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any function
// that expects a standard library context:
//
//	func showUser(c unchained.Context) error {
//	    users, _ := unchained.ServiceAs[*UserManager](c, "user_manager")
//	    user, err := users.Get(c, unchained.Param[int64](c, "id"))
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusOK, user)
//	}
package internal

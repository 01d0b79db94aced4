package internal

import (
	"context"
	"slices"
)

// Run starts the HTTP server and blocks until shutdown.
// After the server stops, hooks registered with OnShutdown and ShutdownHook
// run first, then extensions implementing Shutdowner are shut down in
// reverse initialization order.
//
// Example:
//
//	app, err := unchained.CreateApp(unchained.Production, unchained.WithBundles(...))
//	if err != nil {
//	    return err
//	}
//	err = app.Run(":8080", unchained.Logger(log))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if addr != "" {
		cfg.address = addr
	}
	if cfg.logger == nil {
		cfg.logger = a.logger
	}

	shutdownHooks := slices.Concat(a.shutdownHooks, cfg.shutdownHooks)
	closers := slices.Clone(a.closers)
	slices.Reverse(closers)
	shutdownHooks = append(shutdownHooks, closers...)

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         cfg.address,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// Shutdown runs the same cleanup as a stopping server without one:
// shutdown hooks first, then extension shutdown in reverse init order.
// It is meant for commands that build an app but never serve it.
func (a *App) Shutdown(ctx context.Context) error {
	closers := slices.Clone(a.closers)
	slices.Reverse(closers)
	return runHooks(ctx, slices.Concat(a.shutdownHooks, closers), nil)
}

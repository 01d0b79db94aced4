package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CreateApp builds an application for env from the configured bundles.
//
// Construction runs in a fixed sequence: load and validate the bundles, run
// every bundle's BeforeInit, run the hooks in dependency order, apply each
// bundle's deferred functions, run AfterInit, and freeze the registry. Any
// error aborts construction: extensions initialized so far are shut down in
// reverse order and no App is returned.
//
// Example:
//
//	app, err := unchained.CreateApp(unchained.Production,
//	    unchained.WithBundles(vendor.Bundle, myapp.Bundle),
//	    unchained.WithLogger(log),
//	)
//	if err != nil {
//	    return err
//	}
//	return app.Run(":8080")
func CreateApp(env Env, opts ...Option) (*App, error) {
	if !env.Valid() {
		return nil, unsupportedEnvError(string(env))
	}

	a := newApp()
	a.env = env
	for _, opt := range opts {
		opt(a)
	}
	if a.hooks == nil {
		a.hooks = DefaultHooks()
	}

	start := time.Now()
	if err := a.build(); err != nil {
		a.logger.Error("application build failed", slog.Any("error", err))
		if cerr := a.Shutdown(context.Background()); cerr != nil {
			a.logger.Warn("release after failed build", slog.Any("error", cerr))
		}
		return nil, err
	}
	a.logger.Info("application built",
		slog.String("env", string(a.env)),
		slog.Int("bundles", len(a.bundles)),
		slog.Int("routes", len(a.rules)),
		slog.Duration("took", time.Since(start)),
	)
	return a, nil
}

func (a *App) build() error {
	meta, err := LoadBundles(a.fs, a.rootPath, a.bundles)
	if err != nil {
		return err
	}
	a.meta = meta

	for _, b := range a.bundles {
		if fn := b.lifecycle(func(hb *Bundle) func(*App) error { return hb.BeforeInit }); fn != nil {
			if err := fn(a); err != nil {
				return fmt.Errorf("bundle %s before init: %w", b.Name(), err)
			}
		}
	}

	hooks, err := orderHooks(a.hooks)
	if err != nil {
		return err
	}
	a.hooks = hooks
	a.logger.Debug("running hooks", slog.String("order", hookNames(hooks)))

	for _, h := range hooks {
		name := h.Spec().Name
		a.logger.Debug("hook started", slog.String("hook", name))
		if err := h.RunHook(a, a.bundles); err != nil {
			return fmt.Errorf("hook %s: %w", name, err)
		}
		a.logger.Debug("hook finished", slog.String("hook", name))
	}

	if err := a.applyDeferred(); err != nil {
		return err
	}

	for _, b := range a.bundles {
		if fn := b.lifecycle(func(hb *Bundle) func(*App) error { return hb.AfterInit }); fn != nil {
			if err := fn(a); err != nil {
				return fmt.Errorf("bundle %s after init: %w", b.Name(), err)
			}
		}
	}

	a.finalize()
	return nil
}

// applyDeferred runs the deferred functions of every bundle, base-most
// ancestor first. A bundle shared by several hierarchies runs once.
func (a *App) applyDeferred() error {
	seen := make(map[*Bundle]bool)
	for _, bundle := range a.bundles {
		for _, b := range bundle.Hierarchy(true, true) {
			if seen[b] {
				continue
			}
			seen[b] = true
			for i, fn := range b.Deferred {
				if fn == nil {
					continue
				}
				if err := fn(a); err != nil {
					return fmt.Errorf("bundle %s deferred function %d: %w", b.Name(), i, err)
				}
			}
		}
	}
	return nil
}

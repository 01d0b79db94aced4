package internal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Extension is shared infrastructure attached once to the application,
// such as a database pool.
type Extension interface {
	InitApp(a *App) error
}

// HealthChecker is implemented by extensions that contribute a readiness check.
// The check is registered under the extension's name.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Shutdowner is implemented by extensions that hold resources.
// Extensions are shut down in reverse initialization order when the server
// stops, or right away when a later build step fails.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// ExtensionEntry declares an extension contributed by a bundle.
type ExtensionEntry struct {
	Name         string
	Extension    Extension
	Dependencies []string
}

// ExtensionsHook resolves the extension initialization order, attaches every
// extension to the app and registers them in the shared registry.
type ExtensionsHook struct {
	collector Collector[ExtensionEntry]
}

// NewExtensionsHook creates the extensions hook.
func NewExtensionsHook() *ExtensionsHook {
	return &ExtensionsHook{
		collector: Collector[ExtensionEntry]{
			CollectFromBundle: func(b *Bundle) ([]ExtensionEntry, error) {
				return b.Extensions, nil
			},
			TypeCheck: func(e ExtensionEntry) bool {
				return e.Name != "" && e.Extension != nil
			},
			KeyName: func(e ExtensionEntry) string {
				return e.Name
			},
		},
	}
}

func (h *ExtensionsHook) Spec() HookSpec {
	return HookSpec{
		Name:             "extensions",
		BundleModuleName: "extensions",
		Priority:         60,
	}
}

func (h *ExtensionsHook) RunHook(a *App, bundles []*Bundle) error {
	entries, err := h.collector.Collect(bundles)
	if err != nil {
		return err
	}
	return h.processObjects(a, entries)
}

func (h *ExtensionsHook) processObjects(a *App, entries []ExtensionEntry) error {
	order, err := ResolveExtensionOrder(entries, a.registry.HasExtension)
	if err != nil {
		return err
	}

	byName := make(map[string]ExtensionEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	initialized := make([]ExtensionEntry, 0, len(order))
	for _, name := range order {
		e := byName[name]
		a.logger.Debug("initializing extension",
			slog.String("extension", name),
			slog.String("type", fmt.Sprintf("%T", e.Extension)),
		)
		if err := e.Extension.InitApp(a); err != nil {
			return fmt.Errorf("init extension %s: %w", name, err)
		}
		if s, ok := e.Extension.(Shutdowner); ok {
			a.closers = append(a.closers, s.Shutdown)
		}
		initialized = append(initialized, e)
		a.recordAction("extensions", name, strings.Join(e.Dependencies, ", "))
	}

	for _, e := range initialized {
		if err := a.registry.RegisterExtension(e.Name, e.Extension); err != nil {
			return err
		}
	}
	return nil
}

func (h *ExtensionsHook) UpdateShellContext(a *App, ctx map[string]any) {
	for _, name := range a.registry.ExtensionNames() {
		ext, _ := a.registry.Extension(name)
		ctx[name] = ext
	}
}

// ResolveExtensionOrder returns extension names in initialization order.
// A dependency outside entries is allowed only when registered reports it as
// already registered.
func ResolveExtensionOrder(entries []ExtensionEntry, registered func(name string) bool) ([]string, error) {
	nodes := make([]Node, 0, len(entries))
	for _, e := range entries {
		nodes = append(nodes, Node{Name: e.Name, Dependencies: e.Dependencies})
	}
	return ResolveOrder(nodes, registered)
}

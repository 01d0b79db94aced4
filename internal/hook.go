package internal

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// HookSpec describes a hook's identity and its place in the run order.
type HookSpec struct {
	// Name identifies the hook in RunBefore/RunAfter lists and error messages.
	Name string

	// BundleModuleName is the bundle submodule the hook discovers objects in.
	BundleModuleName string

	// Priority orders hooks with no relative constraint between them. Lower runs first.
	Priority int

	// RunBefore lists hooks that must run after this one.
	RunBefore []string

	// RunAfter lists hooks that must run before this one.
	RunAfter []string
}

// Hook discovers one kind of object across all bundles and applies it to the app.
// A hook runs once per application build.
type Hook interface {
	Spec() HookSpec
	RunHook(a *App, bundles []*Bundle) error
}

// ShellContextUpdater is implemented by hooks that contribute names to the interactive shell.
type ShellContextUpdater interface {
	UpdateShellContext(a *App, ctx map[string]any)
}

// Collector gathers objects from every bundle and merges them by key.
// Bundles are visited in the given order and, within a bundle, from the
// base-most ancestor to the bundle itself, so later contributions replace
// earlier ones with the same key while keeping the first one's position.
type Collector[T any] struct {
	// CollectFromBundle returns the objects one bundle declares itself.
	// A bundle that declares nothing returns nil, which is not an error.
	CollectFromBundle func(b *Bundle) ([]T, error)

	// TypeCheck filters discovered objects. Nil accepts everything.
	TypeCheck func(obj T) bool

	// KeyName derives the merge key of an object.
	KeyName func(obj T) string
}

// Collect merges the contributions of bundles and returns them in merge order.
func (c Collector[T]) Collect(bundles []*Bundle) ([]T, error) {
	merged := newOrderedMap[T]()
	visited := make(map[*Bundle]bool)
	for _, bundle := range bundles {
		for _, b := range bundle.Hierarchy(true, true) {
			if visited[b] {
				continue
			}
			visited[b] = true
			objs, err := c.CollectFromBundle(b)
			if err != nil {
				return nil, fmt.Errorf("collect from %s: %w", b, err)
			}
			for _, obj := range objs {
				if c.TypeCheck != nil && !c.TypeCheck(obj) {
					continue
				}
				merged.set(c.KeyName(obj), obj)
			}
		}
	}
	return merged.list(), nil
}

// orderHooks returns hooks in a total order that satisfies every
// RunBefore/RunAfter constraint. Priority breaks ties; constraints naming
// hooks that are not installed are ignored.
func orderHooks(hooks []Hook) ([]Hook, error) {
	sorted := slices.Clone(hooks)
	slices.SortStableFunc(sorted, func(a, b Hook) int {
		return cmp.Compare(a.Spec().Priority, b.Spec().Priority)
	})

	byName := make(map[string]Hook, len(sorted))
	deps := make(map[string][]string, len(sorted))
	for _, h := range sorted {
		spec := h.Spec()
		if _, ok := byName[spec.Name]; ok {
			return nil, fmt.Errorf("%w: hook %q is installed twice", ErrDuplicateHook, spec.Name)
		}
		byName[spec.Name] = h
	}
	for _, h := range sorted {
		spec := h.Spec()
		for _, after := range spec.RunAfter {
			if _, ok := byName[after]; ok {
				deps[spec.Name] = append(deps[spec.Name], after)
			}
		}
		for _, before := range spec.RunBefore {
			if _, ok := byName[before]; ok {
				deps[before] = append(deps[before], spec.Name)
			}
		}
	}

	nodes := make([]Node, 0, len(sorted))
	for _, h := range sorted {
		name := h.Spec().Name
		nodes = append(nodes, Node{Name: name, Dependencies: deps[name]})
	}
	order, err := ResolveOrder(nodes, nil)
	if err != nil {
		return nil, fmt.Errorf("order hooks: %w", err)
	}

	out := make([]Hook, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out, nil
}

// hookNames renders hook names for logging.
func hookNames(hooks []Hook) string {
	names := make([]string, 0, len(hooks))
	for _, h := range hooks {
		names = append(names, h.Spec().Name)
	}
	return strings.Join(names, ", ")
}

// DefaultHooks returns the hooks every application runs unless WithHooks replaces them.
func DefaultHooks() []Hook {
	return []Hook{
		NewConfigHook(),
		NewExtensionsHook(),
		NewServicesHook(),
		NewRoutesHook(),
		NewBundleRoutesHook(),
		NewStaticHook(),
	}
}

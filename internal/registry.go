package internal

import (
	"fmt"
	"sync"
)

// Registry is the shared store of extensions and services built during
// application construction. It accumulates entries while hooks run and is
// frozen once the App is built; from then on it is read-only.
type Registry struct {
	mu         sync.RWMutex
	extensions *orderedMap[Extension]
	services   *orderedMap[Service]
	frozen     bool
}

// NewRegistry creates an empty, writable registry.
func NewRegistry() *Registry {
	return &Registry{
		extensions: newOrderedMap[Extension](),
		services:   newOrderedMap[Service](),
	}
}

// RegisterExtension stores ext under name, replacing an earlier entry with the same name.
func (r *Registry) RegisterExtension(name string, ext Extension) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: cannot register extension %q", ErrFrozen, name)
	}
	r.extensions.set(name, ext)
	return nil
}

// RegisterService stores svc under its injection name.
func (r *Registry) RegisterService(svc Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := svc.InjectionName()
	if r.frozen {
		return fmt.Errorf("%w: cannot register service %q", ErrFrozen, name)
	}
	r.services.set(name, svc)
	return nil
}

// Extension returns the extension registered under name.
func (r *Registry) Extension(name string) (Extension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.extensions.get(name)
}

// Service returns the service registered under name.
func (r *Registry) Service(name string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.services.get(name)
}

// HasExtension reports whether an extension named name is registered.
func (r *Registry) HasExtension(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.extensions.has(name)
}

// Lookup resolves name against extensions first and services second.
func (r *Registry) Lookup(name string) (any, bool) {
	if ext, ok := r.Extension(name); ok {
		return ext, true
	}
	if svc, ok := r.Service(name); ok {
		return svc, true
	}
	return nil, false
}

// Extensions returns the registered extensions in registration order.
func (r *Registry) Extensions() []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.extensions.list()
}

// ExtensionNames returns the registered extension names in registration order.
func (r *Registry) ExtensionNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.extensions.names()
}

// Services returns the registered services in registration order.
func (r *Registry) Services() []Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.services.list()
}

// ServiceNames returns the registered service names in registration order.
func (r *Registry) ServiceNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.services.names()
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Resolve returns the registry entry named name as T.
// Extensions take precedence over services with the same name.
//
// Example:
//
//	pool, err := unchained.Resolve[*db.Extension](app.Registry(), "db")
func Resolve[T any](r *Registry, name string) (T, error) {
	var zero T
	v, ok := r.Lookup(name)
	if !ok {
		return zero, fmt.Errorf("%w: nothing registered under %q", ErrInjection, name)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %T, not %T", ErrInjection, name, v, zero)
	}
	return typed, nil
}

package internal

import (
	"fmt"
	"reflect"
	"strings"
)

const injectTag = "inject"

// initServices injects registry entries into the tagged fields of every
// registered service and then runs their ServiceInitializer, in registration order.
func initServices(r *Registry) error {
	for _, svc := range r.Services() {
		if err := Inject(r, svc); err != nil {
			return err
		}
	}
	for _, svc := range r.Services() {
		if si, ok := svc.(ServiceInitializer); ok {
			if err := si.InitService(r); err != nil {
				return fmt.Errorf("init service %s: %w", svc.InjectionName(), err)
			}
		}
	}
	return nil
}

// Inject sets every exported field of the struct target points to that
// carries an `inject` tag. The tag value names the registry entry; an empty
// value uses the snake-cased field name, and the "optional" option leaves the
// field unset when nothing is registered under the name. Extensions take
// precedence over services with the same name. Fields that are already set
// are left alone.
func Inject(r *Registry, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return nil
	}
	rt := rv.Type()

	for i := range rt.NumField() {
		field := rt.Field(i)
		tag, ok := field.Tag.Lookup(injectTag)
		if !ok || tag == "-" {
			continue
		}
		name, opt, _ := strings.Cut(tag, ",")
		if !field.IsExported() {
			return fmt.Errorf("%w: %s.%s is not exported", ErrInjection, rt.Name(), field.Name)
		}
		if name == "" {
			name = SnakeCase(field.Name)
		}

		fv := rv.Field(i)
		if !fv.IsZero() {
			continue
		}
		dep, found := r.Lookup(name)
		if !found {
			if opt == "optional" {
				continue
			}
			return fmt.Errorf("%w: %s.%s needs %q, which is not registered", ErrInjection, rt.Name(), field.Name, name)
		}
		dv := reflect.ValueOf(dep)
		if !dv.Type().AssignableTo(field.Type) {
			return fmt.Errorf("%w: %s.%s is %s, %q is %s", ErrInjection, rt.Name(), field.Name, field.Type, name, dv.Type())
		}
		fv.Set(dv)
	}
	return nil
}

package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Env selects which configuration the application is built with.
type Env string

// Supported environments.
const (
	Development Env = "development"
	Production  Env = "production"
	Staging     Env = "staging"
	Test        Env = "test"
)

var supportedEnvs = []Env{Development, Production, Staging, Test}

// configNames maps each environment to the conventional name of its config struct.
var configNames = map[Env]string{
	Development: "DevConfig",
	Production:  "ProdConfig",
	Staging:     "StagingConfig",
	Test:        "TestConfig",
}

// ParseEnv converts s into an Env. Matching is case-insensitive.
// An unknown value yields a *ConfigError wrapping ErrUnsupportedEnv that
// lists every supported environment.
func ParseEnv(s string) (Env, error) {
	e := Env(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", unsupportedEnvError(s)
	}
	return e, nil
}

// Valid reports whether e is one of the supported environments.
func (e Env) Valid() bool {
	_, ok := configNames[e]
	return ok
}

// ConfigName returns the conventional config struct name for e ("DevConfig" for development).
func (e Env) ConfigName() string {
	return configNames[e]
}

func (e Env) String() string {
	return string(e)
}

// configSections holds the per-bundle sections of a YAML config file keyed by bundle name.
type configSections map[string]yaml.Node

// readConfigFile parses a YAML document whose top-level keys are bundle names.
// A missing file is not an error when optional is true.
func readConfigFile(fsys afero.Fs, path string, optional bool) (configSections, error) {
	if path == "" {
		return nil, nil
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	sections := make(configSections)
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, errors.Join(ErrInvalidConfig, fmt.Errorf("parse config file %s: %w", path, err))
	}
	return sections, nil
}

// populateConfig returns a copy of declared filled from its YAML section and
// then from environment variables. The declared struct is left as is, so every
// app built from the same bundles starts from the declared values. Variables
// of the app bundle are read without a prefix; every other bundle reads
// NAME_-prefixed variables.
//
// A variable that is set wins over the file. An envDefault only fills a
// field that is still zero after the file was applied.
func populateConfig(declared any, section *yaml.Node, prefix string) (any, error) {
	rv := reflect.ValueOf(declared)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: config must be a non-nil pointer to a struct, got %T", ErrInvalidConfig, declared)
	}
	target := reflect.New(rv.Elem().Type())
	target.Elem().Set(rv.Elem())

	if section != nil {
		if err := section.Decode(target.Interface()); err != nil {
			return nil, errors.Join(ErrInvalidConfig, fmt.Errorf("decode config section: %w", err))
		}
	}

	fromEnv := reflect.New(rv.Elem().Type())
	if err := env.ParseWithOptions(fromEnv.Interface(), env.Options{Prefix: prefix}); err != nil {
		return nil, errors.Join(ErrInvalidConfig, fmt.Errorf("parse env: %w", err))
	}
	overlayEnv(target.Elem(), fromEnv.Elem(), prefix)
	return target.Interface(), nil
}

// overlayEnv copies env-tagged fields of src into dst when their variable is
// set or dst still holds the zero value. Untagged struct fields are walked
// with their envPrefix appended.
func overlayEnv(dst, src reflect.Value, prefix string) {
	t := dst.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, ok := f.Tag.Lookup("env"); ok {
			name, _, _ := strings.Cut(tag, ",")
			if name == "" {
				continue
			}
			_, set := os.LookupEnv(prefix + name)
			if set || dst.Field(i).IsZero() {
				dst.Field(i).Set(src.Field(i))
			}
			continue
		}
		if f.Type.Kind() == reflect.Struct {
			overlayEnv(dst.Field(i), src.Field(i), prefix+f.Tag.Get("envPrefix"))
		}
	}
}

// envPrefix is the environment variable prefix for a bundle's config.
func envPrefix(b *Bundle) string {
	if b.App {
		return ""
	}
	return strings.ToUpper(b.Name()) + "_"
}

// ConfigAs returns the config registered for bundleName as T.
//
// Example:
//
//	cfg, ok := unchained.ConfigAs[*config.ProdConfig](app, "my_app")
func ConfigAs[T any](a *App, bundleName string) (T, bool) {
	v, ok := a.Config(bundleName).(T)
	return v, ok
}

// sectionFor returns the YAML section of b: its own name first, then the
// names of its ancestors from the most derived.
func sectionFor(sections configSections, b *Bundle) *yaml.Node {
	if len(sections) == 0 {
		return nil
	}
	for _, hb := range b.Hierarchy(true, false) {
		if node, ok := sections[hb.Name()]; ok {
			return &node
		}
	}
	return nil
}

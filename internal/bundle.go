package internal

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/dmitrymomot/unchained/pkg/slug"
)

const (
	defaultViewsModuleName = "views"
	templatesDir           = "templates"
	staticDir              = "static"
)

// Bundle is a self-contained unit of application functionality.
// Bundles are declared once, usually as package-level values, and are not
// mutated after the application has been built.
//
// Example:
//
//	var Bundle = &unchained.Bundle{
//	    Type:   "SecurityBundle",
//	    Module: "security.bundle",
//	    Extensions: []unchained.ExtensionEntry{
//	        {Name: "security", Extension: NewSecurity(), Dependencies: []string{"db"}},
//	    },
//	}
type Bundle struct {
	// Type is the bundle's type name, e.g. "VendorBundle".
	// The bundle name is derived from it.
	Type string

	// Module is the dotted module path the bundle is defined in.
	// A trailing ".bundle" segment is ignored.
	Module string

	// Parent is the bundle this one extends, if any.
	// Contributions of the parent are merged first and overridden by this bundle.
	Parent *Bundle

	// App marks the application bundle. Exactly one bundle, the last one, is the app bundle.
	App bool

	// ViewsModuleName is the views submodule name. Defaults to "views".
	ViewsModuleName string

	// Extensions contributed to the application, keyed by entry name.
	Extensions []ExtensionEntry

	// Services contributed to the shared registry.
	Services []Service

	// Routes is the explicit routes submodule. When set on the app bundle it
	// is the only source of routes.
	Routes *RoutesModule

	// Views is the views submodule scanned for controllers and views.
	Views *ViewsModule

	// Config holds a pointer to a config struct per environment.
	Config map[Env]any

	// Middleware applied to the routes served on this bundle's behalf.
	Middleware []Middleware

	// BeforeInit runs before any hook. Extending bundles inherit it unless they set their own.
	BeforeInit func(a *App) error

	// AfterInit runs after every hook and deferred function. Inherited like BeforeInit.
	AfterInit func(a *App) error

	// Deferred functions are applied in order when the bundle attaches to the app.
	Deferred []func(a *App) error
}

// Metadata is the bundle identity and folder layout, resolved per App at load time.
// Folders that do not exist resolve to the empty string.
type Metadata struct {
	Name           string
	ModuleName     string
	Folder         string
	RootFolder     string
	TemplateFolder string
	StaticFolder   string
	StaticURLPath  string
}

// Name returns the snake-cased bundle name.
// The app bundle's name also drops a "Bundle" suffix: "MyAppBundle" becomes "my_app".
func (b *Bundle) Name() string {
	return bundleName(b.Type, b.App)
}

// ModuleName returns the normalized module path.
func (b *Bundle) ModuleName() string {
	return NormalizeModuleName(b.Module)
}

// Meta returns the bundle identity. Folder fields are resolved by
// LoadBundles and read through App.BundleMeta.
func (b *Bundle) Meta() Metadata {
	return Metadata{Name: b.Name(), ModuleName: b.ModuleName()}
}

// ViewsModule returns the dotted path of the bundle's views submodule.
func (b *Bundle) ViewsModule() string {
	name := b.ViewsModuleName
	if name == "" {
		name = defaultViewsModuleName
	}
	return b.ModuleName() + "." + name
}

// Hierarchy returns the bundle's ancestor chain.
// With baseFirst the base-most bundle comes first and the most derived last,
// which is the order in which contributions are merged.
func (b *Bundle) Hierarchy(includeSelf, baseFirst bool) []*Bundle {
	var chain []*Bundle
	start := b
	if !includeSelf {
		start = b.Parent
	}
	for cur := start; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	if baseFirst {
		slices.Reverse(chain)
	}
	return chain
}

// HasViews reports whether any bundle in the hierarchy, itself included, declares views.
func (b *Bundle) HasViews() bool {
	for cur := b; cur != nil; cur = cur.Parent {
		if cur.Views != nil {
			return true
		}
	}
	return false
}

// GetConfig returns the config declared for env by the most derived bundle
// in the hierarchy that declares one.
func (b *Bundle) GetConfig(e Env) (any, bool) {
	for cur := b; cur != nil; cur = cur.Parent {
		if cfg, ok := cur.Config[e]; ok && cfg != nil {
			return cfg, true
		}
	}
	return nil, false
}

// lifecycle returns the callback pick selects from the most derived bundle
// in the hierarchy that sets one, so extending bundles inherit their
// parent's BeforeInit and AfterInit unless they replace them.
func (b *Bundle) lifecycle(pick func(*Bundle) func(*App) error) func(*App) error {
	for cur := b; cur != nil; cur = cur.Parent {
		if fn := pick(cur); fn != nil {
			return fn
		}
	}
	return nil
}

func (b *Bundle) String() string {
	return fmt.Sprintf("%s(%s)", b.Type, b.ModuleName())
}

// ResolveMetadata computes the folder layout of b from its module path under root.
// It reads fsys and never modifies the bundle.
func ResolveMetadata(fsys afero.Fs, root string, b *Bundle) Metadata {
	m := b.Meta()
	folder := path.Join(root, strings.ReplaceAll(m.ModuleName, ".", "/"))
	if !isDir(fsys, folder) {
		return m
	}
	m.Folder = folder
	m.RootFolder = path.Dir(folder)
	if dir := path.Join(folder, templatesDir); isDir(fsys, dir) {
		m.TemplateFolder = dir
	}
	if dir := path.Join(folder, staticDir); isDir(fsys, dir) {
		m.StaticFolder = dir
		m.StaticURLPath = "/" + slug.Make(m.Name) + "/" + staticDir
	}
	return m
}

func isDir(fsys afero.Fs, name string) bool {
	ok, err := afero.DirExists(fsys, name)
	return err == nil && ok
}

// LoadBundles validates the declared bundle list and resolves the metadata of
// every bundle and its ancestors. The app bundle must be the last entry.
// The declarations are left untouched, so one list can back several apps.
func LoadBundles(fsys afero.Fs, root string, bundles []*Bundle) (map[*Bundle]Metadata, error) {
	if len(bundles) == 0 {
		return nil, fmt.Errorf("%w: no bundles declared", ErrBundleNotFound)
	}

	seen := make(map[string]*Bundle, len(bundles))
	for i, b := range bundles {
		if b == nil {
			return nil, fmt.Errorf("%w: bundle at position %d is nil", ErrBundleNotFound, i)
		}
		if err := validateBundle(b); err != nil {
			return nil, err
		}
		if b.App && i != len(bundles)-1 {
			return nil, fmt.Errorf("%w: app bundle %s must be the last bundle", ErrInvalidBundle, b)
		}
		if prev, ok := seen[b.ModuleName()]; ok {
			return nil, fmt.Errorf("%w: %s and %s share module %s", ErrDuplicateBundle, prev.Type, b.Type, b.ModuleName())
		}
		seen[b.ModuleName()] = b
	}
	if last := bundles[len(bundles)-1]; !last.App {
		return nil, fmt.Errorf("%w: no app bundle, last bundle is %s", ErrBundleNotFound, last)
	}

	meta := make(map[*Bundle]Metadata)
	for _, b := range bundles {
		for _, hb := range b.Hierarchy(true, true) {
			if _, ok := meta[hb]; !ok {
				meta[hb] = ResolveMetadata(fsys, root, hb)
			}
		}
	}
	return meta, nil
}

// validateBundle checks the declaration and its parent chain.
func validateBundle(b *Bundle) error {
	visited := make(map[*Bundle]bool)
	for cur := b; cur != nil; cur = cur.Parent {
		if visited[cur] {
			return &DependencyError{Err: ErrCircularDependency, Node: b.Type, Dependency: cur.Type}
		}
		visited[cur] = true
		if cur.Type == "" {
			return fmt.Errorf("%w: bundle in module %q has no type name", ErrInvalidBundle, cur.Module)
		}
		if cur.Module == "" {
			return fmt.Errorf("%w: bundle %s has no module", ErrInvalidBundle, cur.Type)
		}
	}
	return nil
}

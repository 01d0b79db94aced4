package internal_test

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/unchained/internal"
)

func TestBundleNames(t *testing.T) {
	t.Parallel()

	vendor := vendorBundle()
	assert.Equal(t, "vendor_bundle", vendor.Name())
	assert.Equal(t, vendorModule, vendor.ModuleName())
	assert.Equal(t, vendorModule+".views", vendor.ViewsModule())

	app := appBundle()
	assert.Equal(t, "app", app.Name())
	assert.Equal(t, appModule, app.ModuleName(), "trailing .bundle is dropped")

	custom := &internal.Bundle{Type: "ShopBundle", Module: "shop", ViewsModuleName: "pages"}
	assert.Equal(t, "shop.pages", custom.ViewsModule())
}

func TestBundleHierarchy(t *testing.T) {
	t.Parallel()

	base := vendorBundle()
	mid := extendedVendorBundle(base)
	top := &internal.Bundle{Type: "TopBundle", Module: "top", Parent: mid}

	assert.Equal(t, []*internal.Bundle{base, mid, top}, top.Hierarchy(true, true))
	assert.Equal(t, []*internal.Bundle{top, mid, base}, top.Hierarchy(true, false))
	assert.Equal(t, []*internal.Bundle{mid, base}, top.Hierarchy(false, false))
	assert.Empty(t, base.Hierarchy(false, true))

	assert.True(t, base.HasViews())
	assert.True(t, mid.HasViews(), "inherited from the parent")
	assert.False(t, (&internal.Bundle{Type: "XBundle", Module: "x"}).HasViews())
}

func TestBundleGetConfig(t *testing.T) {
	t.Parallel()

	type cfg struct{ Name string }
	baseDev := &cfg{Name: "base-dev"}
	baseProd := &cfg{Name: "base-prod"}
	childProd := &cfg{Name: "child-prod"}

	base := &internal.Bundle{Type: "BaseBundle", Module: "base", Config: map[internal.Env]any{
		internal.Development: baseDev,
		internal.Production:  baseProd,
	}}
	child := &internal.Bundle{Type: "ChildBundle", Module: "child", Parent: base, Config: map[internal.Env]any{
		internal.Production: childProd,
	}}

	got, ok := child.GetConfig(internal.Production)
	require.True(t, ok)
	assert.Same(t, childProd, got)

	got, ok = child.GetConfig(internal.Development)
	require.True(t, ok)
	assert.Same(t, baseDev, got, "inherited from the parent")

	_, ok = child.GetConfig(internal.Test)
	assert.False(t, ok)
}

func TestLoadBundles(t *testing.T) {
	t.Parallel()

	t.Run("resolves folders", func(t *testing.T) {
		t.Parallel()
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/srv/tests/bundles/vendor/static", 0o755))
		require.NoError(t, fs.MkdirAll("/srv/tests/bundles/vendor/templates", 0o755))
		require.NoError(t, fs.MkdirAll("/srv/tests/bundles/app", 0o755))

		vendor := vendorBundle()
		app := appBundle()
		metas, err := internal.LoadBundles(fs, "/srv", []*internal.Bundle{vendor, app})
		require.NoError(t, err)

		meta := metas[vendor]
		assert.Equal(t, "vendor_bundle", meta.Name)
		assert.Equal(t, "/srv/tests/bundles/vendor", meta.Folder)
		assert.Equal(t, "/srv/tests/bundles", meta.RootFolder)
		assert.Equal(t, "/srv/tests/bundles/vendor/templates", meta.TemplateFolder)
		assert.Equal(t, "/srv/tests/bundles/vendor/static", meta.StaticFolder)
		assert.Equal(t, "/vendor-bundle/static", meta.StaticURLPath)

		appMeta := metas[app]
		assert.Equal(t, "/srv/tests/bundles/app", appMeta.Folder)
		assert.Empty(t, appMeta.TemplateFolder)
		assert.Empty(t, appMeta.StaticFolder)
		assert.Empty(t, appMeta.StaticURLPath)

		assert.Empty(t, vendor.Meta().Folder, "the declaration is not modified")
	})

	t.Run("each load resolves against its own filesystem", func(t *testing.T) {
		t.Parallel()
		withStatic := afero.NewMemMapFs()
		require.NoError(t, withStatic.MkdirAll("/srv/tests/bundles/vendor/static", 0o755))

		vendor := vendorBundle()
		bundles := []*internal.Bundle{vendor, appBundle()}

		first, err := internal.LoadBundles(withStatic, "/srv", bundles)
		require.NoError(t, err)
		assert.Equal(t, "/srv/tests/bundles/vendor/static", first[vendor].StaticFolder)

		second, err := internal.LoadBundles(afero.NewMemMapFs(), "/srv", bundles)
		require.NoError(t, err)
		assert.Empty(t, second[vendor].Folder)
		assert.Empty(t, second[vendor].StaticFolder)
	})

	t.Run("unloaded bundle has identity only", func(t *testing.T) {
		t.Parallel()
		meta := vendorBundle().Meta()
		assert.Equal(t, "vendor_bundle", meta.Name)
		assert.Equal(t, vendorModule, meta.ModuleName)
		assert.Empty(t, meta.Folder)
	})

	tests := []struct {
		name    string
		bundles func() []*internal.Bundle
		wantErr error
	}{
		{
			name:    "empty list",
			bundles: func() []*internal.Bundle { return nil },
			wantErr: internal.ErrBundleNotFound,
		},
		{
			name:    "nil bundle",
			bundles: func() []*internal.Bundle { return []*internal.Bundle{nil, appBundle()} },
			wantErr: internal.ErrBundleNotFound,
		},
		{
			name:    "no app bundle",
			bundles: func() []*internal.Bundle { return []*internal.Bundle{vendorBundle()} },
			wantErr: internal.ErrBundleNotFound,
		},
		{
			name:    "app bundle not last",
			bundles: func() []*internal.Bundle { return []*internal.Bundle{appBundle(), vendorBundle()} },
			wantErr: internal.ErrInvalidBundle,
		},
		{
			name: "missing type",
			bundles: func() []*internal.Bundle {
				return []*internal.Bundle{{Module: "x"}, appBundle()}
			},
			wantErr: internal.ErrInvalidBundle,
		},
		{
			name: "missing module",
			bundles: func() []*internal.Bundle {
				return []*internal.Bundle{{Type: "XBundle"}, appBundle()}
			},
			wantErr: internal.ErrInvalidBundle,
		},
		{
			name: "duplicate module",
			bundles: func() []*internal.Bundle {
				return []*internal.Bundle{vendorBundle(), vendorBundle(), appBundle()}
			},
			wantErr: internal.ErrDuplicateBundle,
		},
		{
			name: "parent cycle",
			bundles: func() []*internal.Bundle {
				a := &internal.Bundle{Type: "ABundle", Module: "a"}
				b := &internal.Bundle{Type: "BBundle", Module: "b", Parent: a}
				a.Parent = b
				return []*internal.Bundle{a, appBundle()}
			},
			wantErr: internal.ErrCircularDependency,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := internal.LoadBundles(afero.NewMemMapFs(), "/", tt.bundles())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

package internal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/unchained/internal"
)

type mailService struct {
	DB          *fakeExtension `inject:"db"`
	initialized bool
}

func (*mailService) InjectionName() string { return "mail_service" }

func (s *mailService) InitService(*internal.Registry) error {
	s.initialized = s.DB != nil
	return nil
}

type userManager struct {
	MailService *mailService   `inject:""`
	DB          *fakeExtension `inject:"db"`
	Ignored     *mailService   `inject:"-"`
	Plain       string
}

func (*userManager) InjectionName() string { return "user_manager" }

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("register and look up", func(t *testing.T) {
		t.Parallel()
		r := internal.NewRegistry()
		db := &fakeExtension{name: "db", rec: &recorder{}}
		mail := &mailService{}

		require.NoError(t, r.RegisterExtension("db", db))
		require.NoError(t, r.RegisterService(mail))

		ext, ok := r.Extension("db")
		require.True(t, ok)
		assert.Same(t, db, ext)
		assert.True(t, r.HasExtension("db"))

		svc, ok := r.Service("mail_service")
		require.True(t, ok)
		assert.Same(t, mail, svc)

		assert.Equal(t, []string{"db"}, r.ExtensionNames())
		assert.Equal(t, []string{"mail_service"}, r.ServiceNames())
	})

	t.Run("re-registering keeps position", func(t *testing.T) {
		t.Parallel()
		r := internal.NewRegistry()
		rec := &recorder{}
		first := &fakeExtension{name: "db", rec: rec}
		second := &fakeExtension{name: "db", rec: rec}

		require.NoError(t, r.RegisterExtension("db", first))
		require.NoError(t, r.RegisterExtension("cache", &fakeExtension{name: "cache", rec: rec}))
		require.NoError(t, r.RegisterExtension("db", second))

		assert.Equal(t, []string{"db", "cache"}, r.ExtensionNames())
		ext, _ := r.Extension("db")
		assert.Same(t, second, ext)
	})

	t.Run("frozen registry rejects writes", func(t *testing.T) {
		t.Parallel()
		r := internal.NewRegistry()
		r.Freeze()
		assert.True(t, r.Frozen())

		err := r.RegisterExtension("db", &fakeExtension{name: "db", rec: &recorder{}})
		require.ErrorIs(t, err, internal.ErrFrozen)
		require.ErrorIs(t, r.RegisterService(&mailService{}), internal.ErrFrozen)
	})

	t.Run("resolve", func(t *testing.T) {
		t.Parallel()
		r := internal.NewRegistry()
		mail := &mailService{}
		require.NoError(t, r.RegisterService(mail))

		got, err := internal.Resolve[*mailService](r, "mail_service")
		require.NoError(t, err)
		assert.Same(t, mail, got)

		_, err = internal.Resolve[*userManager](r, "mail_service")
		require.ErrorIs(t, err, internal.ErrInjection)

		_, err = internal.Resolve[*mailService](r, "missing")
		require.ErrorIs(t, err, internal.ErrInjection)
	})

	t.Run("extension wins over service of the same name", func(t *testing.T) {
		t.Parallel()
		r := internal.NewRegistry()
		db := &fakeExtension{name: "mail_service", rec: &recorder{}}
		require.NoError(t, r.RegisterService(&mailService{}))
		require.NoError(t, r.RegisterExtension("mail_service", db))

		v, ok := r.Lookup("mail_service")
		require.True(t, ok)
		assert.Same(t, db, v)
	})
}

func TestInject(t *testing.T) {
	t.Parallel()

	newRegistry := func(t *testing.T) (*internal.Registry, *fakeExtension, *mailService) {
		t.Helper()
		r := internal.NewRegistry()
		db := &fakeExtension{name: "db", rec: &recorder{}}
		mail := &mailService{}
		require.NoError(t, r.RegisterExtension("db", db))
		require.NoError(t, r.RegisterService(mail))
		return r, db, mail
	}

	t.Run("fills tagged fields", func(t *testing.T) {
		t.Parallel()
		r, db, mail := newRegistry(t)
		um := &userManager{}

		require.NoError(t, internal.Inject(r, um))
		assert.Same(t, mail, um.MailService)
		assert.Same(t, db, um.DB)
		assert.Nil(t, um.Ignored)
		assert.Empty(t, um.Plain)
	})

	t.Run("keeps fields that are already set", func(t *testing.T) {
		t.Parallel()
		r, _, _ := newRegistry(t)
		own := &mailService{}
		um := &userManager{MailService: own}

		require.NoError(t, internal.Inject(r, um))
		assert.Same(t, own, um.MailService)
	})

	t.Run("missing dependency", func(t *testing.T) {
		t.Parallel()
		r := internal.NewRegistry()
		err := internal.Inject(r, &userManager{})
		require.ErrorIs(t, err, internal.ErrInjection)
		assert.Contains(t, err.Error(), `"mail_service"`)
	})

	t.Run("optional dependency", func(t *testing.T) {
		t.Parallel()
		r, db, _ := newRegistry(t)
		target := &struct {
			DB    *fakeExtension `inject:"db,optional"`
			Cache *fakeExtension `inject:"cache,optional"`
		}{}
		require.NoError(t, internal.Inject(r, target))
		assert.Same(t, db, target.DB)
		assert.Nil(t, target.Cache)
	})

	t.Run("type mismatch", func(t *testing.T) {
		t.Parallel()
		r, _, _ := newRegistry(t)
		target := &struct {
			DB *mailService `inject:"db"`
		}{}
		require.ErrorIs(t, internal.Inject(r, target), internal.ErrInjection)
	})

	t.Run("unexported tagged field", func(t *testing.T) {
		t.Parallel()
		r, _, _ := newRegistry(t)
		target := &struct {
			db *fakeExtension `inject:"db"`
		}{}
		require.ErrorIs(t, internal.Inject(r, target), internal.ErrInjection)
		assert.Nil(t, target.db)
	})

	t.Run("non struct targets are ignored", func(t *testing.T) {
		t.Parallel()
		r, _, _ := newRegistry(t)
		require.NoError(t, internal.Inject(r, nil))
		require.NoError(t, internal.Inject(r, userManager{}))
		n := 1
		require.NoError(t, internal.Inject(r, &n))
	})
}

func TestServicesHook(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	mail := &mailService{}
	um := &userManager{}
	vendor := vendorBundle()
	vendor.Extensions = []internal.ExtensionEntry{extensionEntry("db", rec)}
	vendor.Services = []internal.Service{um}
	app := appBundle()
	app.Services = []internal.Service{mail}

	a := newTestApp(t, internal.Test, internal.WithBundles(vendor, app))

	assert.Equal(t, []string{"user_manager", "mail_service"}, a.Registry().ServiceNames())
	assert.Same(t, mail, um.MailService, "services are injected after every service is registered")
	assert.NotNil(t, um.DB)
	assert.True(t, mail.initialized)
	assert.True(t, a.Registry().Frozen())

	got, err := internal.Resolve[*userManager](a.Registry(), "user_manager")
	require.NoError(t, err)
	assert.Same(t, um, got)
}

package unchainedtest_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/unchained"
	"github.com/dmitrymomot/unchained/unchainedtest"
)

type clock struct {
	closed bool
}

func (c *clock) InitApp(*unchained.App) error { return nil }

func (c *clock) Shutdown(context.Context) error {
	c.closed = true
	return nil
}

type greeter struct{}

func (greeter) InjectionName() string { return "greeter" }

func bundle(ext *clock) *unchained.Bundle {
	return &unchained.Bundle{
		Type:       "FixtureBundle",
		Module:     "fixture",
		App:        true,
		Config:     map[unchained.Env]any{unchained.Test: &struct{}{}},
		Extensions: []unchained.ExtensionEntry{{Name: "clock", Extension: ext}},
		Services:   []unchained.Service{greeter{}},
		Views: &unchained.ViewsModule{Views: []*unchained.View{{
			Name: "echo",
			Handler: func(c unchained.Context) error {
				return c.String(http.StatusOK, c.Request().Method+" "+c.Header("Content-Type"))
			},
			Routes: []unchained.RouteSpec{{Rule: "/echo", Methods: []string{http.MethodGet, http.MethodPost}}},
		}}},
	}
}

func TestNewAndInject(t *testing.T) {
	t.Parallel()

	ext := &clock{}
	t.Run("build", func(t *testing.T) {
		app := unchainedtest.New(t, unchained.WithFS(afero.NewMemMapFs()), unchained.WithBundles(bundle(ext)))
		assert.Equal(t, unchained.Test, app.Env())

		assert.Same(t, ext, unchainedtest.Inject[*clock](t, app, "clock"))
		assert.Equal(t, greeter{}, unchainedtest.Inject[greeter](t, app, "greeter"))
	})
	assert.True(t, ext.closed, "app is shut down when the test ends")
}

func TestRequest(t *testing.T) {
	t.Parallel()

	app := unchainedtest.New(t, unchained.WithFS(afero.NewMemMapFs()), unchained.WithBundles(bundle(&clock{})))

	rec := unchainedtest.Request(t, app, http.MethodGet, "/echo")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GET ", rec.Body.String())

	rec = unchainedtest.RequestBody(t, app, http.MethodPost, "/echo", "application/json", `{}`)
	assert.Equal(t, "POST application/json", rec.Body.String())

	rec = unchainedtest.Request(t, app, http.MethodDelete, "/echo")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// fatalTB records fatal failures instead of stopping the goroutine.
type fatalTB struct {
	testing.TB
	fatals []string
}

func (f *fatalTB) Helper()        {}
func (f *fatalTB) Cleanup(func()) {}
func (f *fatalTB) Fatalf(format string, args ...any) {
	f.fatals = append(f.fatals, fmt.Sprintf(format, args...))
}

func TestFailures(t *testing.T) {
	t.Parallel()

	t.Run("build failure", func(t *testing.T) {
		t.Parallel()

		tb := &fatalTB{TB: t}
		unchainedtest.New(tb, unchained.WithFS(afero.NewMemMapFs()))
		require.Len(t, tb.fatals, 1)
		assert.Contains(t, tb.fatals[0], "create app")
	})

	t.Run("unknown name and wrong type", func(t *testing.T) {
		t.Parallel()

		app := unchainedtest.New(t, unchained.WithFS(afero.NewMemMapFs()), unchained.WithBundles(bundle(&clock{})))
		tb := &fatalTB{TB: t}

		unchainedtest.Inject[*clock](tb, app, "missing")
		unchainedtest.Inject[greeter](tb, app, "clock")
		require.Len(t, tb.fatals, 2)
		assert.Contains(t, tb.fatals[0], `inject "missing"`)
		assert.Contains(t, tb.fatals[1], `inject "clock"`)
	})
}

// Package unchainedtest builds unchained applications inside tests.
//
//	func TestNotes(t *testing.T) {
//	    app := unchainedtest.New(t, unchained.WithBundles(notes.Bundle, app.NewBundle()))
//	    store := unchainedtest.Inject[*notes.Store](t, app, "note_store")
//	    store.Add(notes.Note{Title: "first"})
//
//	    rec := unchainedtest.Request(t, app, http.MethodGet, "/notes/")
//	    assert.Equal(t, http.StatusOK, rec.Code)
//	}
package unchainedtest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrymomot/unchained"
)

// New builds an App for the test environment and fails the test when the
// build fails. The app is shut down when the test ends.
func New(t testing.TB, opts ...unchained.Option) *unchained.App {
	t.Helper()
	return NewEnv(t, unchained.Test, opts...)
}

// NewEnv is New for an explicit environment.
func NewEnv(t testing.TB, env unchained.Env, opts ...unchained.Option) *unchained.App {
	t.Helper()

	app, err := unchained.CreateApp(env, opts...)
	if err != nil {
		t.Fatalf("unchainedtest: create app: %v", err)
	}
	t.Cleanup(func() {
		if err := app.Shutdown(context.Background()); err != nil {
			t.Errorf("unchainedtest: shutdown app: %v", err)
		}
	})
	return app
}

// Inject returns the registry entry named name as T. Extensions are looked
// up before services.
func Inject[T any](t testing.TB, app *unchained.App, name string) T {
	t.Helper()

	v, err := unchained.Resolve[T](app.Registry(), name)
	if err != nil {
		t.Fatalf("unchainedtest: inject %q: %v", name, err)
	}
	return v
}

// Request serves a request without a body through the app.
func Request(t testing.TB, app *unchained.App, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	return Do(t, app, httptest.NewRequest(method, path, nil))
}

// RequestBody serves a request with body and content type through the app.
func RequestBody(t testing.TB, app *unchained.App, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return Do(t, app, req)
}

// Do serves req through the app and returns the recorded response.
func Do(t testing.TB, app *unchained.App, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

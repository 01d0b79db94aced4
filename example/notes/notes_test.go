package notes_test

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/unchained"
	"github.com/dmitrymomot/unchained/example/notes"
	"github.com/dmitrymomot/unchained/unchainedtest"
)

func newApp(t *testing.T, opts ...unchained.Option) *unchained.App {
	t.Helper()

	site := &unchained.Bundle{
		Type:   "SiteBundle",
		Module: "site",
		App:    true,
		Config: map[unchained.Env]any{unchained.Test: &struct{}{}},
		Routes: &unchained.RoutesModule{Routes: func() []unchained.RouteNode {
			return []unchained.RouteNode{unchained.Include("/api/notes", notes.Routes)}
		}},
	}
	return unchainedtest.New(t, append([]unchained.Option{
		unchained.WithFS(afero.NewMemMapFs()),
		unchained.WithBundles(notes.NewBundle(), site),
	}, opts...)...)
}

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := notes.NewStore(&notes.Config{PageSize: 2, MaxPageSize: 3})

	for _, title := range []string{"a", "b", "c", "d"} {
		_, err := s.Add(ctx, title, "")
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		requested int
		want      []string
	}{
		{name: "default page size", requested: 0, want: []string{"a", "b"}},
		{name: "explicit limit", requested: 1, want: []string{"a"}},
		{name: "clamped to max", requested: 50, want: []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			list, err := s.List(ctx, tt.requested)
			require.NoError(t, err)
			titles := make([]string, 0, len(list))
			for _, n := range list {
				titles = append(titles, n.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}

	n, err := s.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "c", n.Title)

	_, err = s.Get(ctx, 99)
	assert.ErrorIs(t, err, notes.ErrNotFound)
}

func TestNotesAPI(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	store := unchainedtest.Inject[*notes.Store](t, app, "note_store")
	assert.Nil(t, store.DB, "db extension is optional")

	rec := unchainedtest.RequestBody(t, app, http.MethodPost, "/api/notes", "application/json", `{"title":" first ","body":"hello"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/api/notes/1", rec.Header().Get("Location"))

	var created notes.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "first", created.Title)

	rec = unchainedtest.Request(t, app, http.MethodGet, "/api/notes/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"body":"hello"`)

	rec = unchainedtest.Request(t, app, http.MethodGet, "/api/notes?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Notes []notes.Note `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Notes, 1)
}

func TestStoreUsesLoadedConfig(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "config.yaml", []byte("notes_bundle:\n  page_size: 1\n  max_page_size: 2\n"), 0o644))
	app := newApp(t, unchained.WithFS(fs), unchained.WithConfigFile("config.yaml"))

	store := unchainedtest.Inject[*notes.Store](t, app, "note_store")
	assert.Equal(t, 1, store.Limit(0))
	assert.Equal(t, 2, store.Limit(10))

	defaults := newApp(t)
	store = unchainedtest.Inject[*notes.Store](t, defaults, "note_store")
	assert.Equal(t, 20, store.Limit(0))
	assert.Equal(t, 100, store.Limit(500))
}

func TestNotesAPIErrors(t *testing.T) {
	t.Parallel()

	app := newApp(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
	}{
		{name: "unknown note", method: http.MethodGet, path: "/api/notes/42", wantCode: http.StatusNotFound},
		{name: "invalid id", method: http.MethodGet, path: "/api/notes/abc", wantCode: http.StatusBadRequest},
		{name: "invalid json", method: http.MethodPost, path: "/api/notes", body: `{`, wantCode: http.StatusBadRequest},
		{name: "missing title", method: http.MethodPost, path: "/api/notes", body: `{"title":"  "}`, wantCode: http.StatusUnprocessableEntity},
		{name: "method not allowed", method: http.MethodDelete, path: "/api/notes", wantCode: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := unchainedtest.RequestBody(t, app, tt.method, tt.path, "application/json", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestDiscoveredRoutes(t *testing.T) {
	t.Parallel()

	// Listed as the app bundle, the notes views are discovered at their own rules.
	b := notes.NewBundle()
	b.App = true
	app := unchainedtest.New(t, unchained.WithFS(afero.NewMemMapFs()), unchained.WithBundles(b))

	u, err := app.URLFor("views.show_note", map[string]string{"id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "/notes/7", u)

	rec := unchainedtest.Request(t, app, http.MethodGet, "/notes")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	names, err := fs.Glob(notes.Migrations(), "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_create_notes.sql"}, names)
}

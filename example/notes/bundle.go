// Package notes is a vendor bundle that serves a small JSON notes API.
//
// Apps either let the notes views be discovered by listing the bundle, or
// mount them under a prefix of their own with Routes.
package notes

import (
	"embed"
	"io/fs"
	"strconv"

	"github.com/dmitrymomot/unchained"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Config holds the notes bundle settings, read from the "notes_bundle"
// section of the config file and NOTES_BUNDLE_* variables.
type Config struct {
	PageSize    int `yaml:"page_size" env:"PAGE_SIZE" envDefault:"20"`
	MaxPageSize int `yaml:"max_page_size" env:"MAX_PAGE_SIZE" envDefault:"100"`
}

// NewBundle declares the notes bundle. The store switches to the populated
// config once the app is built.
func NewBundle() *unchained.Bundle {
	cfg := &Config{}
	store := NewStore(&Config{PageSize: 20, MaxPageSize: 100})
	return &unchained.Bundle{
		Type:     "NotesBundle",
		Module:   "example.notes",
		Services: []unchained.Service{store},
		AfterInit: func(a *unchained.App) error {
			for _, b := range a.Bundles() {
				if loaded, ok := unchained.ConfigAs[*Config](a, b.Name()); ok {
					store.config = loaded
					break
				}
			}
			return nil
		},
		Views: &unchained.ViewsModule{
			Module: viewsModule,
			Views:  []*unchained.View{List, Show, Create},
		},
		Config: map[unchained.Env]any{
			unchained.Development: cfg,
			unchained.Production:  cfg,
			unchained.Staging:     cfg,
			unchained.Test:        cfg,
		},
	}
}

// Routes mounts the notes views relative to the prefix they are included under.
var Routes = &unchained.RoutesModule{
	Module: "example.notes.routes",
	Routes: func() []unchained.RouteNode {
		return []unchained.RouteNode{
			unchained.Get("/", List),
			unchained.Get("/{id}", Show),
			unchained.Post("/", Create),
		}
	},
}

// Migrations returns the schema migrations of the notes table for db.WithMigrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

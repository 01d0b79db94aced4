// Package app is the example application bundle. It mounts the notes API
// under /api/notes and adds a landing page and a hit counter.
package app

import (
	"github.com/dmitrymomot/unchained"
	"github.com/dmitrymomot/unchained/example/notes"
	"github.com/dmitrymomot/unchained/middlewares"
	"github.com/dmitrymomot/unchained/pkg/db"
	"github.com/dmitrymomot/unchained/pkg/redis"
)

// Config is the application config. One instance is declared per environment.
type Config struct {
	Name    string `yaml:"name" env:"APP_NAME" envDefault:"unchained example"`
	Address string `yaml:"address" env:"ADDRESS" envDefault:":8080"`
	Debug   bool   `yaml:"debug" env:"DEBUG"`
}

// Options selects the optional infrastructure the app runs with.
type Options struct {
	// DB, when set, stores notes in PostgreSQL.
	DB *db.Config

	// Redis, when set, backs the hit counter.
	Redis *redis.Config
}

// NewBundle declares the app bundle.
func NewBundle(opts Options) *unchained.Bundle {
	var extensions []unchained.ExtensionEntry
	if opts.DB != nil {
		extensions = append(extensions, unchained.ExtensionEntry{
			Name:      db.Name,
			Extension: db.New(*opts.DB, db.WithMigrations(notes.Migrations())),
		})
	}
	if opts.Redis != nil {
		extensions = append(extensions, unchained.ExtensionEntry{
			Name:      redis.Name,
			Extension: redis.New(*opts.Redis),
		})
	}

	return &unchained.Bundle{
		Type:       "ExampleAppBundle",
		Module:     "example.app",
		App:        true,
		Extensions: extensions,
		Config: map[unchained.Env]any{
			unchained.Development: &Config{Debug: true},
			unchained.Production:  &Config{},
			unchained.Staging:     &Config{},
			unchained.Test:        &Config{Address: "127.0.0.1:0"},
		},
		Routes: &unchained.RoutesModule{Routes: func() []unchained.RouteNode {
			return []unchained.RouteNode{
				unchained.Get("/", Home),
				unchained.Get("/stats", Stats),
				unchained.Include("/api/notes", notes.Routes),
			}
		}},
		Deferred: []func(*unchained.App) error{
			func(a *unchained.App) error {
				return a.Use(middlewares.RequestID(), middlewares.Recover())
			},
		},
	}
}

// Bundles returns the bundles the example app is built from, app bundle last.
func Bundles(opts Options) []*unchained.Bundle {
	return []*unchained.Bundle{notes.NewBundle(), NewBundle(opts)}
}

package app

import (
	"net/http"
	"sync/atomic"

	"github.com/dmitrymomot/unchained"
	"github.com/dmitrymomot/unchained/pkg/redis"
)

const viewsModule = "example.app.views"

// Home describes the API.
var Home = &unchained.View{
	Name:   "home",
	Module: viewsModule,
	Handler: func(c unchained.Context) error {
		cfg, _ := unchained.ConfigAs[*Config](c.App(), c.App().AppBundle().Name())
		notesURL, err := c.URLFor("views.list_notes")
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{
			"name":  cfg.Name,
			"env":   c.App().Env(),
			"notes": notesURL,
		})
	},
}

// Stats counts requests, in Redis when the redis extension is registered.
var Stats = &unchained.View{
	Name:    "stats",
	Module:  viewsModule,
	Handler: stats,
}

var localHits atomic.Int64

func stats(c unchained.Context) error {
	if ext, ok := unchained.ExtensionAs[*redis.Extension](c, redis.Name); ok {
		hits, err := ext.Client().Incr(c, "unchained:example:hits").Result()
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{"hits": hits, "backend": "redis"})
	}
	return c.JSON(http.StatusOK, map[string]any{"hits": localHits.Add(1), "backend": "memory"})
}

// Package db provides a PostgreSQL extension for unchained applications.
//
// The extension wraps a [github.com/jackc/pgx/v5/pgxpool] pool. It connects
// when the extensions hook initializes it, optionally applies
// [github.com/pressly/goose/v3] migrations, contributes a readiness check and
// closes the pool on shutdown.
//
// # Configuration
//
// Config carries yaml and env tags, so a bundle can embed it in its own
// config struct or read it directly with ConfigFromEnv:
//
//	DATABASE_CONN_URL           - PostgreSQL connection URL
//	DATABASE_CONNECT_TIMEOUT    - Bound on the whole connect phase (default: 30s)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 10)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 5)
//	DATABASE_HEALTHCHECK_PERIOD - Health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - Connection attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 5s)
//	DATABASE_MIGRATIONS_TABLE   - Migrations table name (default: schema_migrations)
//
// # Usage
//
// Contribute the extension from a bundle:
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//
//	var Bundle = &unchained.Bundle{
//		Type:   "StoreBundle",
//		Module: "store",
//		Extensions: []unchained.ExtensionEntry{
//			{Name: db.Name, Extension: db.New(cfg, db.WithMigrations(migrations))},
//		},
//	}
//
// Services receive it through injection and run transactions with WithTx:
//
//	type Orders struct {
//		DB *db.Extension `inject:"db"`
//	}
//
//	func (o *Orders) Place(ctx context.Context, order Order) error {
//		return db.WithTx(ctx, o.DB, func(tx pgx.Tx) error {
//			_, err := tx.Exec(ctx, "INSERT INTO orders (id, total) VALUES ($1, $2)", order.ID, order.Total)
//			return err
//		})
//	}
package db

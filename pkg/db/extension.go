package db

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/unchained"
)

// Name is the registry name bundles usually register the extension under.
const Name = "db"

// Extension owns a PostgreSQL pool for the application.
// It connects when the extensions hook initializes it, contributes a
// readiness check and closes the pool when the server stops.
type Extension struct {
	cfg        Config
	migrations fs.FS

	mu   sync.RWMutex
	pool *pgxpool.Pool
}

// Option configures the extension.
type Option func(*Extension)

// WithMigrations applies the goose migrations found at the root of fsys
// right after connecting.
func WithMigrations(fsys fs.FS) Option {
	return func(e *Extension) {
		e.migrations = fsys
	}
}

// New creates the extension. Nothing connects until InitApp.
//
// Example:
//
//	unchained.ExtensionEntry{Name: db.Name, Extension: db.New(cfg, db.WithMigrations(migrations))}
func New(cfg Config, opts ...Option) *Extension {
	e := &Extension{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InitApp connects the pool and applies migrations.
func (e *Extension) InitApp(a *unchained.App) error {
	log := a.Logger().With(slog.String("extension", Name))

	ctx := context.Background()
	if e.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.ConnectTimeout)
		defer cancel()
	}

	pool, err := Connect(ctx, e.cfg, log)
	if err != nil {
		return err
	}
	if e.migrations != nil {
		if err := Migrate(ctx, pool, e.migrations, e.cfg.MigrationsTable, log); err != nil {
			pool.Close()
			return err
		}
	}

	e.mu.Lock()
	e.pool = pool
	e.mu.Unlock()

	log.Info("database connected", slog.Int("max_conns", int(pool.Config().MaxConns)))
	return nil
}

// Pool returns the connection pool, or nil before InitApp.
func (e *Extension) Pool() *pgxpool.Pool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pool
}

// Begin starts a transaction on the pool.
func (e *Extension) Begin(ctx context.Context) (pgx.Tx, error) {
	pool := e.Pool()
	if pool == nil {
		return nil, ErrNotConnected
	}
	return pool.Begin(ctx)
}

// HealthCheck pings the database.
func (e *Extension) HealthCheck(ctx context.Context) error {
	pool := e.Pool()
	if pool == nil {
		return errors.Join(ErrHealthcheckFailed, ErrNotConnected)
	}
	if err := pool.Ping(ctx); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}

// Shutdown closes the pool. It is safe to call more than once.
func (e *Extension) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pool != nil {
		e.pool.Close()
		e.pool = nil
	}
	return nil
}

var (
	_ unchained.Extension     = (*Extension)(nil)
	_ unchained.HealthChecker = (*Extension)(nil)
	_ unchained.Shutdowner    = (*Extension)(nil)
)

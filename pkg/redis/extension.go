package redis

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/unchained"
)

// Name is the registry name bundles usually register the extension under.
const Name = "redis"

// Extension owns a Redis client for the application.
type Extension struct {
	cfg Config

	mu     sync.RWMutex
	client redis.UniversalClient
}

// New creates the extension. Nothing connects until InitApp.
func New(cfg Config) *Extension {
	return &Extension{cfg: cfg}
}

// InitApp opens the client.
func (e *Extension) InitApp(a *unchained.App) error {
	log := a.Logger().With(slog.String("extension", Name))

	client, err := Open(context.Background(), e.cfg, log)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.client = client
	e.mu.Unlock()

	log.Info("redis connected")
	return nil
}

// Client returns the Redis client, or nil before InitApp.
func (e *Extension) Client() redis.UniversalClient {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.client
}

// HealthCheck pings Redis.
func (e *Extension) HealthCheck(ctx context.Context) error {
	client := e.Client()
	if client == nil {
		return errors.Join(ErrHealthcheckFailed, ErrNotConnected)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}

// Shutdown closes the client. It is safe to call more than once.
func (e *Extension) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

var (
	_ unchained.Extension     = (*Extension)(nil)
	_ unchained.HealthChecker = (*Extension)(nil)
	_ unchained.Shutdowner    = (*Extension)(nil)
)

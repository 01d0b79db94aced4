package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/unchained"
	"github.com/dmitrymomot/unchained/pkg/db"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DATABASE_CONN_URL", "postgres://app@localhost:5432/app")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "20")

	cfg, err := db.ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app@localhost:5432/app", cfg.ConnectionString)
	assert.Equal(t, int32(20), cfg.MaxOpenConns)
	assert.Equal(t, int32(5), cfg.MinConns)
	assert.Equal(t, "schema_migrations", cfg.MigrationsTable)
	assert.Equal(t, 3, cfg.RetryAttempts)
}

func TestConnectValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{name: "empty", url: "", wantErr: db.ErrEmptyConnectionString},
		{name: "invalid port", url: "postgres://app@localhost:notaport/app", wantErr: db.ErrFailedToParseDBConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool, err := db.Connect(context.Background(), db.Config{ConnectionString: tt.url}, nil)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, pool)
		})
	}
}

func TestExtensionInitAppFailure(t *testing.T) {
	t.Parallel()

	ext := db.New(db.Config{})
	app := &unchained.Bundle{
		Type:       "StoreBundle",
		Module:     "store",
		App:        true,
		Config:     map[unchained.Env]any{unchained.Test: &struct{}{}},
		Extensions: []unchained.ExtensionEntry{{Name: db.Name, Extension: ext}},
	}

	_, err := unchained.CreateApp(unchained.Test,
		unchained.WithFS(afero.NewMemMapFs()),
		unchained.WithBundles(app),
	)
	require.ErrorIs(t, err, db.ErrEmptyConnectionString)
	assert.Nil(t, ext.Pool())
}

func TestExtensionNotConnected(t *testing.T) {
	t.Parallel()

	ext := db.New(db.Config{})
	ctx := context.Background()

	err := ext.HealthCheck(ctx)
	require.ErrorIs(t, err, db.ErrHealthcheckFailed)
	require.ErrorIs(t, err, db.ErrNotConnected)

	_, err = ext.Begin(ctx)
	require.ErrorIs(t, err, db.ErrNotConnected)

	require.NoError(t, ext.Shutdown(ctx))
	require.NoError(t, ext.Shutdown(ctx))
}

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestWithTx(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	errFn := errors.New("insert failed")

	t.Run("commits on success", func(t *testing.T) {
		t.Parallel()
		b := &fakeBeginner{tx: &fakeTx{}}
		require.NoError(t, db.WithTx(ctx, b, func(pgx.Tx) error { return nil }))
		assert.True(t, b.tx.committed)
		assert.False(t, b.tx.rolledBack)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		t.Parallel()
		b := &fakeBeginner{tx: &fakeTx{}}
		require.ErrorIs(t, db.WithTx(ctx, b, func(pgx.Tx) error { return errFn }), errFn)
		assert.False(t, b.tx.committed)
		assert.True(t, b.tx.rolledBack)
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		t.Parallel()
		b := &fakeBeginner{tx: &fakeTx{}}
		assert.PanicsWithValue(t, "boom", func() {
			_ = db.WithTx(ctx, b, func(pgx.Tx) error { panic("boom") })
		})
		assert.True(t, b.tx.rolledBack)
	})

	t.Run("begin failure", func(t *testing.T) {
		t.Parallel()
		b := &fakeBeginner{err: db.ErrNotConnected}
		called := false
		err := db.WithTx(ctx, b, func(pgx.Tx) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, db.ErrNotConnected)
		assert.False(t, called)
	})

	t.Run("extension satisfies beginner", func(t *testing.T) {
		t.Parallel()
		err := db.WithTx(ctx, db.New(db.Config{}), func(pgx.Tx) error { return nil })
		require.ErrorIs(t, err, db.ErrNotConnected)
	})
}

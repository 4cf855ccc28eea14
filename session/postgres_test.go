package session

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bengkelink/authcore"
)

// newTestPostgres connects to the database named by TEST_POSTGRES_DSN and
// prepares the sessions table. Without the variable the tests are skipped;
// the file and Redis backends cover the shared decode/heal logic.
func newTestPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, sessionsSchema); err != nil {
		t.Fatalf("create sessions table: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM authcore_sessions`)
	})
	return pool
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	pool := newTestPostgres(t)
	store := NewPostgresStore(pool, "test")
	ctx := context.Background()

	got, err := store.Load(ctx)
	if err != nil || got != nil {
		t.Fatalf("Load on empty store = %+v, %v; want nil, nil", got, err)
	}

	want := testIdentity()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err = store.Load(ctx)
	if err != nil || got == nil || got.ID != want.ID {
		t.Fatalf("Load = %+v, %v; want %+v", got, err, want)
	}

	// Save twice exercises the upsert path.
	want.Name = "Updated Name"
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil || got == nil || got.Name != "Updated Name" {
		t.Fatalf("Load after upsert = %+v, %v", got, err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil || got != nil {
		t.Fatalf("Load after Clear = %+v, %v; want nil, nil", got, err)
	}
}

func TestPostgresStoreHealsCorruptRecord(t *testing.T) {
	pool := newTestPostgres(t)
	store := NewPostgresStore(pool, "test")
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO authcore_sessions (store_key, record, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (store_key) DO UPDATE SET record = EXCLUDED.record`,
		"test:"+DefaultKey, []byte(`{"id":"u1"}`))
	if err != nil {
		t.Fatalf("seed corrupt record: %v", err)
	}

	if _, err := store.Load(ctx); !errors.Is(err, authcore.ErrCorruptedSession) {
		t.Fatalf("Load = %v, want ErrCorruptedSession", err)
	}

	got, err := store.Load(ctx)
	if err != nil || got != nil {
		t.Fatalf("Load after heal = %+v, %v; want nil, nil", got, err)
	}
}

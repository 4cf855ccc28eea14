package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bengkelink/authcore"
)

// PostgresStore persists the identity record as one keyed row. Server-side
// shells that already run against the marketplace database use it instead of
// a local file.
//
// Schema:
//
//	CREATE TABLE authcore_sessions (
//	    store_key  text PRIMARY KEY,
//	    record     jsonb NOT NULL,
//	    updated_at timestamptz NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
	key  string
}

// sessionsSchema creates the table the store expects. Deployments apply it
// through their regular migration tooling; tests apply it directly.
const sessionsSchema = `
CREATE TABLE IF NOT EXISTS authcore_sessions (
    store_key  text PRIMARY KEY,
    record     jsonb NOT NULL,
    updated_at timestamptz NOT NULL DEFAULT now()
)`

// NewPostgresStore creates a Postgres-backed store. An empty key uses
// [DefaultKey].
func NewPostgresStore(pool *pgxpool.Pool, key string) *PostgresStore {
	if key == "" {
		key = DefaultKey
	}
	return &PostgresStore{pool: pool, key: key}
}

// Load reads the persisted record. A missing row is absent; a corrupt row is
// deleted and reported through [authcore.ErrCorruptedSession].
func (s *PostgresStore) Load(ctx context.Context) (*authcore.Identity, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT record
		FROM authcore_sessions
		WHERE store_key = $1
	`, s.key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	id, err := decodeRecord(raw)
	if err != nil {
		if _, delErr := s.pool.Exec(ctx, `
			DELETE FROM authcore_sessions WHERE store_key = $1
		`, s.key); delErr != nil {
			return nil, errors.Join(ErrStoreUnavailable, delErr)
		}
		return nil, authcore.ErrCorruptedSession
	}
	return id, nil
}

// Save upserts the record.
func (s *PostgresStore) Save(ctx context.Context, id *authcore.Identity) error {
	raw, err := encodeRecord(id)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO authcore_sessions (store_key, record, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (store_key)
		DO UPDATE SET record = EXCLUDED.record, updated_at = now()
	`, s.key, raw)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Clear removes the record. Clearing an absent record is a no-op.
func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM authcore_sessions WHERE store_key = $1
	`, s.key)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

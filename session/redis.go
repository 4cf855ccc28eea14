package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/bengkelink/authcore"
)

// RedisStore persists the identity record under a single Redis key. Used by
// kiosk-style deployments where the shell runs behind a shared cache rather
// than on a device with local disk.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore creates a Redis-backed store. An empty prefix uses
// [DefaultKey] alone.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	key := DefaultKey
	if prefix != "" {
		key = prefix + ":" + DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// Load reads the persisted record. A missing key is absent; a corrupt value
// is deleted and reported through [authcore.ErrCorruptedSession].
func (s *RedisStore) Load(ctx context.Context) (*authcore.Identity, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	id, err := decodeRecord(raw)
	if err != nil {
		if delErr := s.client.Del(ctx, s.key).Err(); delErr != nil {
			return nil, errors.Join(ErrStoreUnavailable, delErr)
		}
		return nil, authcore.ErrCorruptedSession
	}
	return id, nil
}

// Save writes the record. The key carries no TTL: the record lives until
// logout clears it, matching the file-backend contract.
func (s *RedisStore) Save(ctx context.Context, id *authcore.Identity) error {
	raw, err := encodeRecord(id)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Clear removes the record. Clearing an absent record is a no-op.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

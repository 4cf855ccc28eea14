package authcore

import (
	"context"
	"errors"
)

// ErrCorruptedSession is returned by [Store.Load] after a malformed
// persisted record was found and cleared. It signals absence, not failure:
// the controller treats it exactly like a missing record and never surfaces
// it to consumers, but records that a heal happened.
var ErrCorruptedSession = errors.New("corrupted session record cleared")

// Store is the durable persistence collaborator for one identity record.
// Implementations live in the session package (file, Redis, Postgres).
//
// Load returns (nil, nil) when no record exists and (nil,
// [ErrCorruptedSession]) when a malformed record was found and cleared; it
// never returns a decoding failure. Save and Clear must be atomic from the
// caller's perspective. Implementations must be safe for concurrent use.
type Store interface {
	Load(ctx context.Context) (*Identity, error)
	Save(ctx context.Context, id *Identity) error
	Clear(ctx context.Context) error
}

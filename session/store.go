// Package session provides the durable persistence backends for the
// bengkelink auth controller: at most one identity record per store.
//
// Load is self-healing. Any record that fails to decode or validate is
// cleared and reported via [authcore.ErrCorruptedSession], so a corrupt
// record can never wedge startup. Save and Clear are atomic from the
// caller's perspective.
//
// # Backends
//
//   - FileStore — JSON file on local disk (default; no network I/O)
//   - RedisStore — one Redis key via redis/go-redis
//   - PostgresStore — one keyed row via jackc/pgx
//
// # What this package must NOT do
//
//   - Interpret session semantics (phases, transitions) — that is the
//     controller's job.
//   - Surface record corruption as a failure.
package session

import (
	"encoding/json"
	"errors"

	"github.com/bengkelink/authcore"
)

// DefaultKey is the storage key the marketplace app has always used for the
// persisted identity record.
const DefaultKey = "bengkelink_user"

// ErrStoreUnavailable is returned when the backend cannot be reached.
// FileStore never returns it.
var ErrStoreUnavailable = errors.New("session store unavailable")

// decodeRecord unmarshals and validates a persisted record. Any failure
// means the record is corrupt.
func decodeRecord(raw []byte) (*authcore.Identity, error) {
	var id authcore.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, authcore.ErrIdentityInvalid
	}
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &id, nil
}

// encodeRecord marshals an identity after validating it. Saving an invalid
// identity is a programming error surfaced to the caller instead of being
// written out and healed away on the next Load.
func encodeRecord(id *authcore.Identity) ([]byte, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(id)
}

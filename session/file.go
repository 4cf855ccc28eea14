package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bengkelink/authcore"
)

// FileStore persists the identity record as one JSON file. It is the default
// backend: synchronous, local, no network I/O. Writes go through a temp file
// and rename so a crash mid-write leaves either the old record or the new
// one, never a torn file.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store rooted at dir. The record lives
// at dir/<DefaultKey>.json.
func NewFileStore(dir string) *FileStore {
	return NewFileStoreAt(filepath.Join(dir, DefaultKey+".json"))
}

// NewFileStoreAt creates a file-backed store with an explicit record path.
func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted record. A missing file is absent; an unreadable
// or invalid record is deleted and reported through
// [authcore.ErrCorruptedSession].
func (s *FileStore) Load(ctx context.Context) (*authcore.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		// Unreadable on-disk state counts as corrupt, not as a hard error.
		return nil, s.heal()
	}

	id, err := decodeRecord(raw)
	if err != nil {
		return nil, s.heal()
	}
	return id, nil
}

// Save writes the record atomically.
func (s *FileStore) Save(ctx context.Context, id *authcore.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := encodeRecord(id)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("session: create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".identity-*.tmp")
	if err != nil {
		return fmt.Errorf("session: create temp record: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("session: write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("session: close record: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("session: commit record: %w", err)
	}
	return nil
}

// Clear removes the record. Clearing an absent record is a no-op.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: clear record: %w", err)
	}
	return nil
}

func (s *FileStore) heal() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: clear corrupt record: %w", err)
	}
	return authcore.ErrCorruptedSession
}

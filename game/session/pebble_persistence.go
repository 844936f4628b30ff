package session

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/DataDog/zstd"
	"github.com/cockroachdb/pebble"

	"github.com/wricardo/mcp-training/shortestmaze/game/service"
)

const sessionKeyPrefix = "session/"

// PebblePersistence implements SessionPersistence on a pebble key-value
// store. Records are the same JSON as FilePersistence, zstd-compressed,
// under the key "session/<id>".
type PebblePersistence struct {
	db            *pebble.DB
	configManager service.ConfigManager
}

// NewPebblePersistence opens (or creates) a pebble database in dir
func NewPebblePersistence(dir string, configManager service.ConfigManager) (*PebblePersistence, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return &PebblePersistence{db: db, configManager: configManager}, nil
}

// Close flushes and closes the underlying database
func (pp *PebblePersistence) Close() error {
	return pp.db.Close()
}

// Save persists a session
func (pp *PebblePersistence) Save(session *service.Session) error {
	raw, err := encodeSession(session, false)
	if err != nil {
		return err
	}

	compressed, err := zstd.Compress(nil, raw)
	if err != nil {
		return fmt.Errorf("failed to compress session data: %w", err)
	}

	if err := pp.db.Set(sessionKey(session.ID), compressed, pebble.Sync); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Load retrieves a session by ID
func (pp *PebblePersistence) Load(id string) (*service.Session, error) {
	if err := ValidateSessionID(id); err != nil {
		return nil, err
	}

	val, closer, err := pp.db.Get(sessionKey(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	// val is only valid until closer.Close
	raw, err := zstd.Decompress(nil, val)
	closer.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to decompress session data: %w", err)
	}

	return decodeSession(raw, pp.configManager)
}

// Delete removes a session
func (pp *PebblePersistence) Delete(id string) error {
	if !pp.Exists(id) {
		return ErrSessionNotFound
	}
	if err := pp.db.Delete(sessionKey(id), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListAll returns all persisted session IDs in key order
func (pp *PebblePersistence) ListAll() ([]string, error) {
	prefix := []byte(sessionKeyPrefix)
	iter, err := pp.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessionIDs := []string{}
	for iter.First(); iter.Valid(); iter.Next() {
		sessionIDs = append(sessionIDs, string(bytes.TrimPrefix(iter.Key(), prefix)))
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessionIDs, nil
}

// Exists checks if a session is stored
func (pp *PebblePersistence) Exists(id string) bool {
	if ValidateSessionID(id) != nil {
		return false
	}
	_, closer, err := pp.db.Get(sessionKey(id))
	if err != nil {
		return false
	}
	closer.Close()
	return true
}

func sessionKey(id string) []byte {
	return []byte(sessionKeyPrefix + id)
}

// prefixUpperBound returns the smallest key greater than every key starting with prefix
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

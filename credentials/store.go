// Package credentials persists the client's authenticated Session through a
// pluggable key-value port.
package credentials

import (
	"encoding/json"
	"errors"
	"sync"
)

// Store saves, restores and clears the Session. Each part is written as an
// independent entry, so an interrupted Save may leave a partial store behind;
// Load treats any partial store as "no session".
type Store struct {
	kv KV
	mu sync.Mutex
}

// NewStore creates a Store backed by kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Save writes the session, overwriting any previous values.
func (s *Store) Save(session Session) error {
	if !json.Valid(session.User) {
		return &PersistenceError{Op: "save", Key: KeyUser, Err: errors.New("user payload is not valid JSON")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := []struct{ key, value string }{
		{KeyAccessToken, session.AccessToken},
		{KeyRefreshToken, session.RefreshToken},
		{KeyUser, string(session.User)},
	}
	for _, e := range entries {
		if err := s.kv.Set(e.key, e.value); err != nil {
			return &PersistenceError{Op: "save", Key: e.key, Err: err}
		}
	}
	return nil
}

// Load returns the stored session and true only when all three entries are
// present and non-empty. A partially written store yields false and no error.
func (s *Store) Load() (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(map[string]string, len(Keys))
	for _, key := range Keys {
		value, ok, err := s.kv.Get(key)
		if err != nil {
			return Session{}, false, &PersistenceError{Op: "load", Key: key, Err: err}
		}
		if !ok || value == "" {
			return Session{}, false, nil
		}
		values[key] = value
	}

	user := json.RawMessage(values[KeyUser])
	if !json.Valid(user) {
		return Session{}, false, &PersistenceError{Op: "load", Key: KeyUser, Err: errors.New("stored user is not valid JSON")}
	}

	return Session{
		AccessToken:  values[KeyAccessToken],
		RefreshToken: values[KeyRefreshToken],
		User:         user,
	}, true, nil
}

// Clear removes every session entry. All removals are attempted even if one fails.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, key := range Keys {
		if err := s.kv.Remove(key); err != nil && firstErr == nil {
			firstErr = &PersistenceError{Op: "clear", Key: key, Err: err}
		}
	}
	return firstErr
}

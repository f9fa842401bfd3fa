// Package session implements the token store mapping opaque auth tokens
// to user identifiers. Entries carry a TTL so abandoned sessions expire
// without a reaper process.
package session

import (
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

var ErrNotFound = errors.New("session not found")

// keyPrefix namespaces session entries inside the store.
const keyPrefix = "auth_"

type Store struct {
	db *badger.DB
}

// Open opens (or creates) the session store at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens an ephemeral store. Used in tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return &Store{db: db}, nil
}

func key(token string) []byte {
	return []byte(keyPrefix + token)
}

// Set stores token -> userID with the given expiry.
func (s *Store) Set(token, userID string, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key(token), []byte(userID)).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

// Get resolves a token to a user id. Expired or unknown tokens return
// ErrNotFound.
func (s *Store) Get(token string) (string, error) {
	var userID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(token))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return userID, nil
}

// Delete revokes a token. Deleting an unknown token is not an error.
func (s *Store) Delete(token string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(token))
	})
}

// IsAlive reports whether the underlying store is usable.
func (s *Store) IsAlive() bool {
	return s.db != nil && !s.db.IsClosed()
}

func (s *Store) Close() error {
	return s.db.Close()
}

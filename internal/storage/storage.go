// Package storage keeps snapshots of board sessions in BadgerDB so that a
// restarted server picks its boards back up.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2/log"
)

const sessionPrefix = "session/"

var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the persisted form of one board session.
type Snapshot struct {
	ID        string    `json:"id"`
	Placement string    `json:"placement"` // FEN piece placement field
	Strict    bool      `json:"strict"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store wraps BadgerDB for snapshot storage
type Store struct {
	db *badger.DB
}

// Open opens the store in dir. An empty dir keeps everything in memory.
func Open(dir string) (*Store, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func sessionKey(id string) []byte {
	return []byte(sessionPrefix + id)
}

// Save writes or replaces the snapshot for snap.ID.
func (s *Store) Save(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey(snap.ID), data)
	})
}

// Load reads the snapshot for id, returning ErrNotFound when there is none.
func (s *Store) Load(id string) (Snapshot, error) {
	var snap Snapshot

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})

	return snap, err
}

func (s *Store) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(id))
	})
}

// List returns every stored snapshot in key order. Values that do not decode
// are logged and left out.
func (s *Store) List() ([]Snapshot, error) {
	var snaps []Snapshot

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var snap Snapshot
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &snap)
			}); err != nil {
				log.Warnf("skipping snapshot %s: %v", strings.TrimPrefix(string(item.Key()), sessionPrefix), err)
				continue
			}
			snaps = append(snaps, snap)
		}
		return nil
	})

	return snaps, err
}

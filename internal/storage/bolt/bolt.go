// Package bolt is the durable mirror behind the content store: one bbolt
// file with a single bucket, one JSON blob per content key.
package bolt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

var bucket = []byte("Content")

// Mirror implements storage.Mirror on a bbolt database file.
type Mirror struct {
	db *bbolt.DB
}

// Open opens (or creates) the bbolt file at path and makes sure the content
// bucket exists.
func Open(path string) (*Mirror, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("bolt.Open: content path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("bolt.Open: create dir: %w", err)
	}

	// Timeout keeps a second process from hanging forever on the file lock.
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt.Open: open db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt.Open: create bucket: %w", err)
	}

	return &Mirror{db: db}, nil
}

// Close closes the database file.
func (m *Mirror) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Load returns a copy of the blob stored under key, or nil if there is none.
func (m *Mirror) Load(key string) ([]byte, error) {
	var out []byte
	err := m.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucket)
		}
		// Values are only valid inside the transaction.
		if v := b.Get([]byte(key)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bolt.Load %s: %w", key, err)
	}
	return out, nil
}

// Save replaces the blob stored under key. The write is committed and
// fsynced before Save returns.
func (m *Mirror) Save(key string, value []byte) error {
	err := m.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("bolt.Save %s: %w", key, err)
	}
	return nil
}

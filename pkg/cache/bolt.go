package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/Declyn50s/Traine-Savates/pkg/logger"
)

var addressBucket = []byte("addresses")

// Open returns a cache persisted in the bbolt file at path, creating the file
// and its directory when missing.
func Open(path string, opts ...Option) (*Addresses, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open address cache %s: %w", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(addressBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init address cache: %w", err)
	}
	logger.Info("Address cache opened at %s", path)
	return newAddresses(boltBackend{db}, opts), nil
}

type boltBackend struct {
	db *bbolt.DB
}

func (b boltBackend) get(key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(addressBucket).Get([]byte(key)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

func (b boltBackend) put(key string, value []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(addressBucket).Put([]byte(key), value)
	})
}

func (b boltBackend) each(fn func(key string, value []byte) error) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(addressBucket).ForEach(func(k, v []byte) error {
			return fn(string(k), v)
		})
	})
}

func (b boltBackend) close() error { return b.db.Close() }

package localstore

import (
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"hanlumi/pkg/errors"
)

var bucketName = []byte("app_state")

// Store is the durable device-local key/value store: string keys, opaque
// JSON-encoded values. It backs the hidden-room set and last-seen map, which
// have no server-side copy.
type Store struct {
	db *bolt.DB
}

func Open(dataDir string) (*Store, error) {
	path := filepath.Join(dataDir, "hanlumi.db")
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Internal("Failed to open local store", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Internal("Failed to init local store", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored value, or nil when the key is absent.
func (s *Store) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketName).Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Internal("Failed to read local store", err)
	}
	return value, nil
}

func (s *Store) Put(key string, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
	if err != nil {
		return errors.Internal("Failed to write local store", err)
	}
	return nil
}

// Update runs a read-modify-write of one key inside a single transaction, so
// interleaved writers cannot clobber each other's updates. Returning nil new
// value leaves the key untouched.
func (s *Store) Update(key string, fn func(current []byte) ([]byte, error)) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		next, err := fn(bucket.Get([]byte(key)))
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		return bucket.Put([]byte(key), next)
	})
	if err != nil {
		return errors.Internal("Failed to update local store", err)
	}
	return nil
}

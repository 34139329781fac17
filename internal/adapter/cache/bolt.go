package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"go.etcd.io/bbolt"
)

var bucketDocstrings = []byte("docstrings")

// BoltCache persists generated docstrings so repeated runs over unchanged
// entities skip the provider call entirely.
type BoltCache struct {
	db *bbolt.DB
}

// NewBoltCache opens (or creates) the cache database at path.
func NewBoltCache(path string) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDocstrings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltCache{db: db}, nil
}

func (c *BoltCache) Get(key string) (string, bool) {
	var value []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketDocstrings).Get([]byte(key))
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || value == nil {
		return "", false
	}
	return string(value), true
}

func (c *BoltCache) Put(key string, docstring string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocstrings).Put([]byte(key), []byte(docstring))
	})
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}

// Key derives the cache key for a generation: the snippet text plus
// everything that changes the output (kind, provider, model).
func Key(snippet, kind, provider, model string) string {
	h := sha256.New()
	h.Write([]byte(snippet))
	h.Write([]byte{0})
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(provider))
	h.Write([]byte{0})
	h.Write([]byte(model))
	return hex.EncodeToString(h.Sum(nil)[:16])
}

package store

import (
	"fmt"

	"go.etcd.io/bbolt"

	"techdocs/config"
)

var bucketCollections = []byte("collections")

// Client wraps the bbolt database backing all collections. Clients are
// created and invalidated only through the Manager.
type Client struct {
	db *bbolt.DB
}

// openClient opens the database file and eagerly self-tests it. A client
// that fails the self-test is closed and never returned.
func openClient(persistDir string) (*Client, error) {
	if err := config.EnsurePersistDir(persistDir); err != nil {
		return nil, fmt.Errorf("failed to create persist directory: %w", err)
	}

	db, err := bbolt.Open(config.VectorDBPath(persistDir), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCollections)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("vector store initialization failed: %w", err)
	}

	c := &Client{db: db}
	if err := c.heartbeat(); err != nil {
		db.Close()
		return nil, fmt.Errorf("vector store self-test failed: %w", err)
	}

	return c, nil
}

// heartbeat performs a trivial read to verify the client is usable.
func (c *Client) heartbeat() error {
	return c.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketCollections) == nil {
			return fmt.Errorf("collections bucket missing")
		}
		return nil
	})
}

// close flushes and closes the underlying database. Best effort: the sync
// failure is not fatal as Close syncs again.
func (c *Client) close() error {
	_ = c.db.Sync()
	return c.db.Close()
}

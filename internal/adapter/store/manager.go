package store

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"techdocs/config"
)

// Waits used during destructive resets. The embedded store holds OS file
// handles; deleting the directory too early fails with "directory busy"
// on some platforms.
const (
	clearReleaseWait = 1500 * time.Millisecond
	clearRetryWait   = 500 * time.Millisecond
)

// ClearResult is the structured outcome of a destructive reset. Clear never
// fails with an error; interactive callers render the message either way.
type ClearResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// CollectionStats reports existence and size of a collection without
// creating it.
type CollectionStats struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Exists bool   `json:"exists"`
}

// Manager is the single point of truth for the persistent vector store.
// It owns the persistence directory and a process-wide client handle,
// guarded by one mutex covering creation, lookup and invalidation so no
// caller can observe a half-initialized or just-invalidated client.
type Manager struct {
	persistDir string

	mu     sync.Mutex
	client *Client
}

// NewManager creates a manager for the given persistence directory.
func NewManager(persistDir string) *Manager {
	return &Manager{persistDir: persistDir}
}

// PersistDir returns the managed persistence directory.
func (m *Manager) PersistDir() string {
	return m.persistDir
}

// Client returns the shared storage client, creating it on first use.
// Creation self-tests connectivity; on failure nothing is cached and the
// error is fatal for the caller.
func (m *Manager) Client() (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clientLocked()
}

func (m *Manager) clientLocked() (*Client, error) {
	if m.client != nil {
		return m.client, nil
	}

	client, err := openClient(m.persistDir)
	if err != nil {
		return nil, err
	}
	m.client = client
	return m.client, nil
}

// InvalidateClient closes the cached client and clears the handle. Safe to
// call when no client exists. Close failures are best-effort and ignored:
// the handle is dropped regardless.
func (m *Manager) InvalidateClient() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		_ = m.client.close()
		m.client = nil
	}
}

// GetOrCreateCollection returns a handle to the named collection, creating
// it with the fixed cosine configuration if absent. Idempotent.
func (m *Manager) GetOrCreateCollection(name string) (*Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}

	m.mu.Lock()
	client, err := m.clientLocked()
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	err = client.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCollections)
		if b == nil {
			return fmt.Errorf("collections bucket missing")
		}
		if b.Get([]byte(name)) == nil {
			if err := writeCollectionMeta(tx, name, collectionMeta{Metric: MetricCosine}); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucketIfNotExists([]byte("col:" + name))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %q: %w", name, err)
	}

	return &Collection{name: name, db: client.db}, nil
}

// CollectionStats reports whether the collection exists and how many chunks
// it holds. Absence is reported, not treated as an error, and the
// collection is never created as a side effect.
func (m *Manager) CollectionStats(name string) (CollectionStats, error) {
	stats := CollectionStats{Name: name}

	m.mu.Lock()
	client, err := m.clientLocked()
	m.mu.Unlock()
	if err != nil {
		return stats, err
	}

	err = client.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCollections)
		if b == nil || b.Get([]byte(name)) == nil {
			return nil
		}
		stats.Exists = true
		if items := tx.Bucket([]byte("col:" + name)); items != nil {
			stats.Count = items.Stats().KeyN
		}
		return nil
	})
	if err != nil {
		return CollectionStats{Name: name}, fmt.Errorf("failed to read collection stats: %w", err)
	}
	return stats, nil
}

// ClearDatabase irreversibly wipes the persisted state: invalidate the
// client, let the runtime and filesystem release file handles, delete the
// persistence directory (one retry), then recreate it empty. Failures are
// reported as a structured result, never raised, since interactive flows
// call this and must not crash.
func (m *Manager) ClearDatabase() ClearResult {
	m.InvalidateClient()

	// Release any file handles still referenced by collected clients.
	runtime.GC()
	time.Sleep(clearReleaseWait)

	if _, err := os.Stat(m.persistDir); err == nil {
		if err := os.RemoveAll(m.persistDir); err != nil {
			time.Sleep(clearRetryWait)
			if err = os.RemoveAll(m.persistDir); err != nil {
				return ClearResult{
					Success: false,
					Message: fmt.Sprintf("failed to delete vector store directory after retry: %v", err),
					Path:    m.persistDir,
				}
			}
		}
	}

	if err := config.EnsurePersistDir(m.persistDir); err != nil {
		return ClearResult{
			Success: false,
			Message: fmt.Sprintf("failed to recreate vector store directory: %v", err),
			Path:    m.persistDir,
		}
	}

	return ClearResult{
		Success: true,
		Message: "Database cleared successfully. All indexed documents were removed.",
		Path:    m.persistDir,
	}
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"
)

// HotSwapDB wraps a DB with thread-safe hot-swap capability, used when a
// snapshot restore replaces the database file at runtime. Read operations
// acquire a read lock, allowing concurrent queries; Swap acquires the
// write lock and replaces the underlying connections atomically.
type HotSwapDB struct {
	mu       sync.RWMutex
	current  *DB
	cacheTTL time.Duration
}

// NewHotSwapDB creates a new HotSwapDB with the given initial database path.
func NewHotSwapDB(ctx context.Context, dbPath string, cacheTTL time.Duration) (*HotSwapDB, error) {
	db, err := New(ctx, dbPath, cacheTTL)
	if err != nil {
		return nil, fmt.Errorf("hotswap: create initial db: %w", err)
	}

	return &HotSwapDB{
		current:  db,
		cacheTTL: cacheTTL,
	}, nil
}

// DB returns the current database handle. The handle is stable across
// swaps; only its internal connections change.
func (h *HotSwapDB) DB() *DB {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Swap atomically replaces the current database with the one at newDbPath.
// The old connections are closed asynchronously so in-flight queries can
// complete, and the old database files are removed.
func (h *HotSwapDB) Swap(ctx context.Context, newDbPath string) error {
	// Open and validate the new database before acquiring the lock
	newDB, err := New(ctx, newDbPath, h.cacheTTL)
	if err != nil {
		return fmt.Errorf("hotswap: open new db: %w", err)
	}

	if err := newDB.Ready(ctx); err != nil {
		_ = newDB.Close()
		return fmt.Errorf("hotswap: validate new db: %w", err)
	}

	h.mu.Lock()
	oldWriter, oldReader, oldPath := h.current.SwapConnections(newDB)
	h.mu.Unlock()

	go closeSwappedOut(oldWriter, oldReader, oldPath, newDbPath)

	return nil
}

func closeSwappedOut(oldWriter, oldReader *sql.DB, oldPath, currentPath string) {
	if oldReader != nil {
		_ = oldReader.Close()
	}
	if oldWriter != nil {
		_ = oldWriter.Close()
	}

	// Remove the old .db, -wal and -shm files once the connections are gone
	if oldPath != currentPath && oldPath != ":memory:" {
		_ = os.Remove(oldPath)
		_ = os.Remove(oldPath + "-wal")
		_ = os.Remove(oldPath + "-shm")
	}
}

// Path returns the current database file path.
func (h *HotSwapDB) Path() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Path()
}

// Close closes the current database connections.
func (h *HotSwapDB) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current != nil {
		return h.current.Close()
	}
	return nil
}

// Ping checks if the current database is accessible.
func (h *HotSwapDB) Ping(ctx context.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Ping(ctx)
}

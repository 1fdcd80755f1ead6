// Package snapshot keeps the SQLite cache durable across restarts by
// uploading compressed snapshots to object storage and restoring from them
// on boot. One replica at a time holds the distributed leader lock and
// uploads; the others poll the snapshot key and hot-swap their database
// when the ETag changes.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/admibot/admibot-go/internal/logger"
	"github.com/admibot/admibot-go/internal/objstore"
	"github.com/admibot/admibot-go/internal/storage"
)

// ErrNotFound indicates no snapshot exists in object storage.
var ErrNotFound = errors.New("snapshot: not found")

// dbFileName is the file name snapshots restore to inside the dest dir.
const dbFileName = "admibot.db"

// objectClient is the object storage surface the manager needs. It is a
// superset of what the distributed lock needs, so the same value backs both.
type objectClient interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	HeadObject(ctx context.Context, key string) (string, error)
	PutObjectIfNotExists(ctx context.Context, key string, body io.Reader, contentType string) (bool, string, error)
	PutObjectIfMatch(ctx context.Context, key string, body io.Reader, etag string, contentType string) (bool, string, error)
	DeleteObject(ctx context.Context, key string) error
}

// Config holds snapshot manager settings.
type Config struct {
	SnapshotKey  string        // object key of the compressed snapshot
	LockKey      string        // object key of the leader lock
	LockTTL      time.Duration
	PollInterval time.Duration
	TempDir      string // scratch dir for snapshot files, defaults to os.TempDir
}

// Manager synchronizes the local SQLite database with the snapshot object.
type Manager struct {
	client objectClient
	config Config
	logger *logger.Logger

	mu          sync.RWMutex
	currentETag string

	pollCancel context.CancelFunc
	pollDone   chan struct{}

	leaderMu    sync.Mutex
	leaderLock  *objstore.DistributedLock
	renewCancel context.CancelFunc
	renewDone   chan struct{}
}

// New creates a snapshot manager.
func New(client objectClient, cfg Config, log *logger.Logger) *Manager {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if log == nil {
		log = logger.New("info")
	}
	return &Manager{
		client:   client,
		config:   cfg,
		logger:   log.WithModule("snapshot"),
		pollDone: make(chan struct{}),
	}
}

// DownloadSnapshot restores the latest snapshot into destDir and returns the
// database path and the snapshot's ETag. Returns ErrNotFound when no
// snapshot has been uploaded yet.
func (m *Manager) DownloadSnapshot(ctx context.Context, destDir string) (string, string, error) {
	body, etag, err := m.client.Download(ctx, m.config.SnapshotKey)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return "", "", ErrNotFound
		}
		return "", "", fmt.Errorf("download snapshot: %w", err)
	}
	defer body.Close()

	dbPath := filepath.Join(destDir, dbFileName)
	if err := objstore.DecompressStream(body, dbPath); err != nil {
		os.Remove(dbPath)
		return "", "", fmt.Errorf("decompress snapshot: %w", err)
	}

	m.setETag(etag)
	return dbPath, etag, nil
}

// UploadSnapshot writes a consistent copy of the database, compresses it and
// uploads it as the new snapshot. Returns the uploaded object's ETag.
func (m *Manager) UploadSnapshot(ctx context.Context, db *storage.DB) (string, error) {
	snapshotPath := filepath.Join(m.config.TempDir, fmt.Sprintf("snapshot_%d.db", time.Now().UnixNano()))
	if err := db.CreateSnapshot(ctx, snapshotPath); err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(snapshotPath)

	compressedPath := snapshotPath + ".zst"
	if err := objstore.CompressFile(snapshotPath, compressedPath); err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}
	defer os.Remove(compressedPath)

	compressed, err := os.Open(compressedPath)
	if err != nil {
		return "", fmt.Errorf("open compressed snapshot: %w", err)
	}
	defer compressed.Close()

	etag, err := m.client.Upload(ctx, m.config.SnapshotKey, compressed, "application/zstd")
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	m.setETag(etag)
	return etag, nil
}

// AcquireLeaderLock attempts to become the snapshot leader. When acquired,
// a background goroutine renews the lease until ReleaseLeaderLock.
func (m *Manager) AcquireLeaderLock(ctx context.Context) (bool, error) {
	lock := objstore.NewDistributedLock(m.client, m.config.LockKey, m.config.LockTTL)
	acquired, err := lock.Acquire(ctx)
	if err != nil || !acquired {
		return acquired, err
	}

	m.leaderMu.Lock()
	if m.renewCancel != nil {
		m.renewCancel()
		if m.renewDone != nil {
			<-m.renewDone
		}
	}
	m.leaderLock = lock
	renewCtx, cancel := context.WithCancel(ctx)
	m.renewCancel = cancel
	m.renewDone = make(chan struct{})
	go m.renewLoop(renewCtx, lock, m.renewDone)
	m.leaderMu.Unlock()

	return true, nil
}

// ReleaseLeaderLock stops renewing and releases the leader lock.
func (m *Manager) ReleaseLeaderLock(ctx context.Context) error {
	m.leaderMu.Lock()
	lock := m.leaderLock
	cancel := m.renewCancel
	done := m.renewDone
	m.leaderLock = nil
	m.renewCancel = nil
	m.renewDone = nil
	m.leaderMu.Unlock()

	if cancel != nil {
		cancel()
		if done != nil {
			<-done
		}
	}

	if lock == nil {
		return nil
	}
	return lock.Release(ctx)
}

func (m *Manager) renewLoop(ctx context.Context, lock *objstore.DistributedLock, done chan struct{}) {
	defer close(done)

	interval := m.config.LockTTL / 3
	if interval < 10*time.Second {
		interval = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			renewed, err := lock.Renew(ctx)
			if err != nil {
				m.logger.WithError(err).Warn("Leader lock renew failed")
				return
			}
			if !renewed {
				m.logger.Warn("Leader lock lost during renew")
				return
			}
		}
	}
}

// StartPolling watches the snapshot key and hot-swaps the database whenever
// a new snapshot appears. Call StopPolling to shut the watcher down.
func (m *Manager) StartPolling(ctx context.Context, hotSwapDB *storage.HotSwapDB, destDir string) {
	pollCtx, cancel := context.WithCancel(ctx)
	m.pollCancel = cancel

	go func() {
		defer close(m.pollDone)

		ticker := time.NewTicker(m.config.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				m.logger.Info("Snapshot polling stopped")
				return
			case <-ticker.C:
				m.pollOnce(pollCtx, hotSwapDB, destDir)
			}
		}
	}()

	m.logger.WithFields(map[string]any{
		"interval":     m.config.PollInterval.String(),
		"snapshot_key": m.config.SnapshotKey,
	}).Info("Snapshot polling started")
}

// StopPolling stops the watcher goroutine and waits for it to exit.
func (m *Manager) StopPolling() {
	if m.pollCancel != nil {
		m.pollCancel()
		<-m.pollDone
	}
}

// pollOnce compares the remote ETag against the loaded one and hot-swaps
// when they differ.
func (m *Manager) pollOnce(ctx context.Context, hotSwapDB *storage.HotSwapDB, destDir string) {
	currentETag := m.CurrentETag()

	remoteETag, err := m.client.HeadObject(ctx, m.config.SnapshotKey)
	if err != nil {
		if !errors.Is(err, objstore.ErrNotFound) {
			m.logger.WithError(err).Warn("Snapshot poll: head object failed")
		}
		return
	}
	if remoteETag == currentETag {
		return
	}

	m.logger.WithFields(map[string]any{
		"old_etag": currentETag,
		"new_etag": remoteETag,
	}).Info("New snapshot detected, starting hot-swap")

	body, _, err := m.client.Download(ctx, m.config.SnapshotKey)
	if err != nil {
		m.logger.WithError(err).Error("Snapshot poll: download failed")
		return
	}
	defer body.Close()

	// Unique path per swap so a failed swap never clobbers the live file.
	newDbPath := filepath.Join(destDir, fmt.Sprintf("admibot_%d.db", time.Now().UnixNano()))
	if err := objstore.DecompressStream(body, newDbPath); err != nil {
		m.logger.WithError(err).Error("Snapshot poll: decompress failed")
		os.Remove(newDbPath)
		return
	}

	if err := hotSwapDB.Swap(ctx, newDbPath); err != nil {
		m.logger.WithError(err).Error("Snapshot poll: hot-swap failed")
		os.Remove(newDbPath)
		os.Remove(newDbPath + "-wal")
		os.Remove(newDbPath + "-shm")
		return
	}

	m.setETag(remoteETag)
	m.logger.WithField("new_etag", remoteETag).Info("Hot-swap completed")
}

// CurrentETag returns the ETag of the currently loaded snapshot.
func (m *Manager) CurrentETag() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentETag
}

// SetCurrentETag records the loaded snapshot's ETag, used when the database
// was restored before the manager was built.
func (m *Manager) SetCurrentETag(etag string) {
	m.setETag(etag)
}

func (m *Manager) setETag(etag string) {
	m.mu.Lock()
	m.currentETag = etag
	m.mu.Unlock()
}

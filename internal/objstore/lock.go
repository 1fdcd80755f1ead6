package objstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// lockStore is the subset of Client the lock needs. Tests substitute an
// in-memory implementation.
type lockStore interface {
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	PutObjectIfNotExists(ctx context.Context, key string, body io.Reader, contentType string) (bool, string, error)
	PutObjectIfMatch(ctx context.Context, key string, body io.Reader, etag string, contentType string) (bool, string, error)
	DeleteObject(ctx context.Context, key string) error
}

// LockInfo is the JSON body of a lock object.
type LockInfo struct {
	Owner     string    `json:"owner"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DistributedLock is a lease on a single object key, held through conditional
// writes. Acquire creates the lock object with If-None-Match, Renew and steal
// replace it with If-Match, so two holders can never both succeed.
type DistributedLock struct {
	store   lockStore
	key     string
	ttl     time.Duration
	ownerID string
	etag    string // ETag of the lock object we wrote, empty when not held
}

// NewDistributedLock creates a lock on the given key. Each lock instance
// gets its own owner ID; the same instance must be used to renew and release.
func NewDistributedLock(store lockStore, key string, ttl time.Duration) *DistributedLock {
	return &DistributedLock{
		store:   store,
		key:     key,
		ttl:     ttl,
		ownerID: uuid.NewString(),
	}
}

// OwnerID returns the unique identifier of this lock instance.
func (l *DistributedLock) OwnerID() string {
	return l.ownerID
}

// Acquire attempts to take the lock. It returns (true, nil) when acquired,
// (false, nil) when another holder has a live lease, and (false, err) on
// storage errors. An expired or unreadable lease is stolen with a
// compare-and-swap on its ETag.
func (l *DistributedLock) Acquire(ctx context.Context) (bool, error) {
	data, err := l.marshalLease()
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}

	created, etag, err := l.store.PutObjectIfNotExists(ctx, l.key, bytes.NewReader(data), "application/json")
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	if created {
		l.etag = etag
		return true, nil
	}

	expired, oldETag, err := l.leaseExpired(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire lock: check lease: %w", err)
	}
	if !expired {
		return false, nil
	}

	// The held lease lapsed. Replace it, conditional on the ETag we read,
	// so only one contender wins.
	data, err = l.marshalLease()
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	stolen, newETag, err := l.store.PutObjectIfMatch(ctx, l.key, bytes.NewReader(data), oldETag, "application/json")
	if err != nil {
		return false, fmt.Errorf("acquire lock: steal: %w", err)
	}
	if !stolen {
		return false, nil
	}

	l.etag = newETag
	return true, nil
}

// Renew extends the lease if this instance still holds it.
// Returns (false, nil) when the lock was lost to another holder.
func (l *DistributedLock) Renew(ctx context.Context) (bool, error) {
	if l.etag == "" {
		return false, nil
	}

	data, err := l.marshalLease()
	if err != nil {
		return false, fmt.Errorf("renew lock: %w", err)
	}

	renewed, newETag, err := l.store.PutObjectIfMatch(ctx, l.key, bytes.NewReader(data), l.etag, "application/json")
	if err != nil {
		return false, fmt.Errorf("renew lock: %w", err)
	}
	if !renewed {
		l.etag = ""
		return false, nil
	}

	l.etag = newETag
	return true, nil
}

// Release deletes the lock object if this instance still owns it. Releasing
// a lock that was already stolen or deleted is a no-op.
func (l *DistributedLock) Release(ctx context.Context) error {
	l.etag = ""

	body, _, err := l.store.Download(ctx, l.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("release lock: verify: %w", err)
	}

	data, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		return fmt.Errorf("release lock: read: %w", err)
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		// Unreadable lease body, delete it so the key does not wedge.
		return l.store.DeleteObject(ctx, l.key)
	}
	if info.Owner != l.ownerID {
		return nil
	}

	return l.store.DeleteObject(ctx, l.key)
}

func (l *DistributedLock) marshalLease() ([]byte, error) {
	info := LockInfo{
		Owner:     l.ownerID,
		ExpiresAt: time.Now().Add(l.ttl),
	}
	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("marshal lease: %w", err)
	}
	return data, nil
}

// leaseExpired reads the current lock object and reports whether its lease
// has lapsed, along with the ETag to steal it under. A deleted or unreadable
// lease counts as expired.
func (l *DistributedLock) leaseExpired(ctx context.Context) (bool, string, error) {
	body, etag, err := l.store.Download(ctx, l.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return true, "", nil
		}
		return false, "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return false, "", fmt.Errorf("read lease: %w", err)
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return true, etag, nil
	}
	return time.Now().After(info.ExpiresAt), etag, nil
}

package objstore

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"
)

type fakeLockStore struct {
	mu            sync.Mutex
	objects       map[string][]byte
	etags         map[string]string
	etagCounter   int
	failNextMatch bool
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{
		objects: make(map[string][]byte),
		etags:   make(map[string]string),
	}
}

func (f *fakeLockStore) putLocked(key string, body []byte) string {
	f.objects[key] = body
	f.etagCounter++
	etag := "etag-" + strconv.Itoa(f.etagCounter)
	f.etags[key] = etag
	return etag
}

func (f *fakeLockStore) seed(key string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putLocked(key, body)
}

func (f *fakeLockStore) Download(_ context.Context, key string) (io.ReadCloser, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, ok := f.objects[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(body)), f.etags[key], nil
}

func (f *fakeLockStore) PutObjectIfNotExists(_ context.Context, key string, body io.Reader, _ string) (bool, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.objects[key]; ok {
		return false, "", nil
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return false, "", err
	}
	return true, f.putLocked(key, data), nil
}

func (f *fakeLockStore) PutObjectIfMatch(_ context.Context, key string, body io.Reader, etag string, _ string) (bool, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNextMatch {
		f.failNextMatch = false
		return false, "", nil
	}
	if current, ok := f.etags[key]; !ok || current != etag {
		return false, "", nil
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return false, "", err
	}
	return true, f.putLocked(key, data), nil
}

func (f *fakeLockStore) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.objects, key)
	delete(f.etags, key)
	return nil
}

func (f *fakeLockStore) exists(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.objects[key]
	return ok
}

func (f *fakeLockStore) owner(t *testing.T, key string) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	var info LockInfo
	if err := json.Unmarshal(f.objects[key], &info); err != nil {
		t.Fatalf("Lock body is not valid JSON: %v", err)
	}
	return info.Owner
}

func seedLease(t *testing.T, store *fakeLockStore, key, owner string, expiresAt time.Time) {
	t.Helper()
	data, err := json.Marshal(LockInfo{Owner: owner, ExpiresAt: expiresAt})
	if err != nil {
		t.Fatalf("Failed to marshal lease: %v", err)
	}
	store.seed(key, data)
}

func TestDistributedLockAcquireAndRelease(t *testing.T) {
	t.Parallel()

	store := newFakeLockStore()
	lock := NewDistributedLock(store, "locks/leader", time.Minute)

	acquired, err := lock.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !acquired {
		t.Fatal("Expected to acquire an uncontended lock")
	}
	if got := store.owner(t, "locks/leader"); got != lock.OwnerID() {
		t.Errorf("Lock owner = %q, want %q", got, lock.OwnerID())
	}

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if store.exists("locks/leader") {
		t.Error("Lock object still present after release")
	}

	// Releasing again is a no-op.
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("Second release failed: %v", err)
	}
}

func TestDistributedLockContention(t *testing.T) {
	t.Parallel()

	store := newFakeLockStore()
	first := NewDistributedLock(store, "locks/leader", time.Minute)
	second := NewDistributedLock(store, "locks/leader", time.Minute)

	if acquired, err := first.Acquire(context.Background()); err != nil || !acquired {
		t.Fatalf("First acquire = (%v, %v), want (true, nil)", acquired, err)
	}

	acquired, err := second.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Second acquire failed: %v", err)
	}
	if acquired {
		t.Error("Second instance acquired a live lock")
	}
	if got := store.owner(t, "locks/leader"); got != first.OwnerID() {
		t.Errorf("Lock owner = %q, want first holder %q", got, first.OwnerID())
	}
}

func TestDistributedLockStealsExpiredLease(t *testing.T) {
	t.Parallel()

	store := newFakeLockStore()
	seedLease(t, store, "locks/leader", "dead-holder", time.Now().Add(-time.Minute))

	lock := NewDistributedLock(store, "locks/leader", time.Minute)
	acquired, err := lock.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !acquired {
		t.Fatal("Expected to steal an expired lease")
	}
	if got := store.owner(t, "locks/leader"); got != lock.OwnerID() {
		t.Errorf("Lock owner = %q, want %q", got, lock.OwnerID())
	}
}

func TestDistributedLockStealRaceLosesCleanly(t *testing.T) {
	t.Parallel()

	store := newFakeLockStore()
	seedLease(t, store, "locks/leader", "dead-holder", time.Now().Add(-time.Minute))
	store.failNextMatch = true // another contender wins the compare-and-swap

	lock := NewDistributedLock(store, "locks/leader", time.Minute)
	acquired, err := lock.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if acquired {
		t.Error("Expected to lose the steal race without error")
	}
}

func TestDistributedLockUnreadableLeaseIsStolen(t *testing.T) {
	t.Parallel()

	store := newFakeLockStore()
	store.seed("locks/leader", []byte("not json"))

	lock := NewDistributedLock(store, "locks/leader", time.Minute)
	acquired, err := lock.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !acquired {
		t.Fatal("Expected to steal an unreadable lease")
	}
}

func TestDistributedLockRenew(t *testing.T) {
	t.Parallel()

	store := newFakeLockStore()
	lock := NewDistributedLock(store, "locks/leader", time.Minute)

	if acquired, err := lock.Acquire(context.Background()); err != nil || !acquired {
		t.Fatalf("Acquire = (%v, %v), want (true, nil)", acquired, err)
	}

	renewed, err := lock.Renew(context.Background())
	if err != nil {
		t.Fatalf("Renew failed: %v", err)
	}
	if !renewed {
		t.Fatal("Expected renew while holding the lock")
	}

	// Another writer replaces the lock object; the ETag no longer matches.
	seedLease(t, store, "locks/leader", "usurper", time.Now().Add(time.Minute))

	renewed, err = lock.Renew(context.Background())
	if err != nil {
		t.Fatalf("Renew after losing lock failed: %v", err)
	}
	if renewed {
		t.Error("Renewed a lock held by another owner")
	}
}

func TestDistributedLockRenewWithoutHolding(t *testing.T) {
	t.Parallel()

	lock := NewDistributedLock(newFakeLockStore(), "locks/leader", time.Minute)
	renewed, err := lock.Renew(context.Background())
	if err != nil {
		t.Fatalf("Renew failed: %v", err)
	}
	if renewed {
		t.Error("Renewed a lock that was never acquired")
	}
}

func TestDistributedLockReleaseKeepsForeignLease(t *testing.T) {
	t.Parallel()

	store := newFakeLockStore()
	lock := NewDistributedLock(store, "locks/leader", time.Minute)

	if acquired, err := lock.Acquire(context.Background()); err != nil || !acquired {
		t.Fatalf("Acquire = (%v, %v), want (true, nil)", acquired, err)
	}

	// The lease lapses and another holder takes over before we release.
	seedLease(t, store, "locks/leader", "usurper", time.Now().Add(time.Minute))

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if !store.exists("locks/leader") {
		t.Fatal("Release deleted a lock owned by someone else")
	}
	if got := store.owner(t, "locks/leader"); got != "usurper" {
		t.Errorf("Lock owner = %q, want %q", got, "usurper")
	}
}

func TestDistributedLockOwnerIDsAreUnique(t *testing.T) {
	t.Parallel()

	store := newFakeLockStore()
	first := NewDistributedLock(store, "locks/leader", time.Minute)
	second := NewDistributedLock(store, "locks/leader", time.Minute)

	if first.OwnerID() == second.OwnerID() {
		t.Error("Expected distinct owner IDs per lock instance")
	}
}

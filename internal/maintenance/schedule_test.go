package maintenance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/admibot/admibot-go/internal/objstore"
)

type fakeScheduleClient struct {
	mu              sync.Mutex
	exists          bool
	etagCounter     int
	etag            string
	body            []byte
	forceCreateRace bool
	matchFailCount  int
	downloadErrs    []error
	downloadCalls   int
	downloadHook    func()
}

func (f *fakeScheduleClient) Download(_ context.Context, _ string) (io.ReadCloser, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.downloadCalls++
	if f.downloadHook != nil {
		f.downloadHook()
	}
	if len(f.downloadErrs) > 0 {
		err := f.downloadErrs[0]
		f.downloadErrs = f.downloadErrs[1:]
		return nil, "", err
	}
	if !f.exists {
		return nil, "", objstore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(f.body)), f.etag, nil
}

func (f *fakeScheduleClient) PutObjectIfNotExists(_ context.Context, _ string, body io.Reader, _ string) (bool, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.forceCreateRace {
		f.forceCreateRace = false
		if !f.exists {
			f.exists = true
			f.body, _ = io.ReadAll(body)
			f.etagCounter++
			f.etag = "etag-" + strconv.Itoa(f.etagCounter)
		}
		return false, "", nil
	}
	if f.exists {
		return false, "", nil
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return false, "", err
	}
	f.body = data
	f.exists = true
	f.etagCounter++
	f.etag = "etag-" + strconv.Itoa(f.etagCounter)
	return true, f.etag, nil
}

func (f *fakeScheduleClient) PutObjectIfMatch(_ context.Context, _ string, body io.Reader, etag string, _ string) (bool, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.exists || etag != f.etag {
		return false, "", nil
	}
	if f.matchFailCount > 0 {
		f.matchFailCount--
		return false, "", nil
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return false, "", err
	}
	f.body = data
	f.etagCounter++
	f.etag = "etag-" + strconv.Itoa(f.etagCounter)
	return true, f.etag, nil
}

func TestNewScheduleStoreValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewScheduleStore(nil, "schedule.json", time.Second); err == nil {
		t.Fatal("Expected error for nil client")
	}
	if _, err := NewScheduleStore(&fakeScheduleClient{}, "", time.Second); err == nil {
		t.Fatal("Expected error for empty key")
	}
}

func TestScheduleStoreLoadNotFound(t *testing.T) {
	t.Parallel()

	store, err := NewScheduleStore(&fakeScheduleClient{}, "schedule.json", time.Second)
	if err != nil {
		t.Fatalf("NewScheduleStore failed: %v", err)
	}

	state, etag, exists, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("Expected exists=false for a missing object")
	}
	if etag != "" {
		t.Fatalf("Expected empty etag, got %q", etag)
	}
	if state != (State{}) {
		t.Fatalf("Expected zero state, got %+v", state)
	}
}

func TestScheduleStoreEnsureCreateRace(t *testing.T) {
	t.Parallel()

	client := &fakeScheduleClient{forceCreateRace: true}
	store, err := NewScheduleStore(client, "schedule.json", time.Second)
	if err != nil {
		t.Fatalf("NewScheduleStore failed: %v", err)
	}

	state, etag, err := store.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if etag == "" {
		t.Fatal("Expected the winning replica's etag")
	}
	if state.UpdatedAt == 0 {
		t.Fatal("Expected UpdatedAt to be set")
	}
}

func TestScheduleStoreUpdateRetriesOnConflict(t *testing.T) {
	t.Parallel()

	client := &fakeScheduleClient{exists: true, etag: "etag-1", matchFailCount: 1}
	initial := State{LastRefresh: 10, LastCleanup: 20, LastSnapshot: 30, UpdatedAt: 40}
	data, err := json.Marshal(initial)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	client.body = data

	store, err := NewScheduleStore(client, "schedule.json", time.Second)
	if err != nil {
		t.Fatalf("NewScheduleStore failed: %v", err)
	}

	err = store.Update(context.Background(), func(s *State) {
		s.LastSnapshot = 99
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	loaded, _, err := store.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if loaded.LastSnapshot != 99 {
		t.Fatalf("Expected LastSnapshot=99, got %d", loaded.LastSnapshot)
	}
	if loaded.LastRefresh != 10 {
		t.Fatalf("Update clobbered LastRefresh: got %d, want 10", loaded.LastRefresh)
	}
	if loaded.UpdatedAt == 0 {
		t.Fatal("Expected UpdatedAt to be stamped")
	}
}

func TestScheduleStoreWithTimeout(t *testing.T) {
	t.Parallel()

	store, err := NewScheduleStore(&fakeScheduleClient{}, "schedule.json", time.Millisecond)
	if err != nil {
		t.Fatalf("NewScheduleStore failed: %v", err)
	}

	ctx, cancel := store.withTimeout(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("Expected a deadline for a positive timeout")
	}

	storeNoTimeout, err := NewScheduleStore(&fakeScheduleClient{}, "schedule.json", 0)
	if err != nil {
		t.Fatalf("NewScheduleStore failed: %v", err)
	}
	ctxNoTimeout, cancelNoTimeout := storeNoTimeout.withTimeout(context.Background())
	defer cancelNoTimeout()
	if _, ok := ctxNoTimeout.Deadline(); ok {
		t.Fatal("Did not expect a deadline for a zero timeout")
	}
}

func TestScheduleStoreLoadRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	client := &fakeScheduleClient{
		downloadErrs: []error{
			errors.New("boom-1"),
			errors.New("boom-2"),
			errors.New("boom-3"),
		},
	}
	store, err := NewScheduleStore(client, "schedule.json", time.Second)
	if err != nil {
		t.Fatalf("NewScheduleStore failed: %v", err)
	}

	_, _, _, err = store.Load(context.Background())
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if client.downloadCalls != 3 {
		t.Fatalf("Expected 3 attempts, got %d", client.downloadCalls)
	}
}

func TestScheduleStoreLoadDoesNotRetryContextCanceled(t *testing.T) {
	t.Parallel()

	client := &fakeScheduleClient{
		downloadErrs: []error{context.Canceled},
	}
	store, err := NewScheduleStore(client, "schedule.json", time.Second)
	if err != nil {
		t.Fatalf("NewScheduleStore failed: %v", err)
	}

	_, _, _, err = store.Load(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if client.downloadCalls != 1 {
		t.Fatalf("Expected 1 attempt, got %d", client.downloadCalls)
	}
}

func TestScheduleStoreLoadStopsDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	client := &fakeScheduleClient{
		downloadErrs: []error{errors.New("temporary")},
		downloadHook: func() {
			cancel()
		},
	}
	store, err := NewScheduleStore(client, "schedule.json", time.Second)
	if err != nil {
		t.Fatalf("NewScheduleStore failed: %v", err)
	}

	_, _, _, err = store.Load(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if client.downloadCalls != 1 {
		t.Fatalf("Expected 1 attempt, got %d", client.downloadCalls)
	}
}

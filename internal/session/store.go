package session

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Default retention for idle sessions. Admissions chats are short; an hour
// of silence means the conversation is over.
const (
	DefaultTTL           = time.Hour
	DefaultPurgeInterval = 10 * time.Minute
)

// Store is the session-context keyed store. Implementations must be safe
// for concurrent use and must evict idle entries on their own.
type Store interface {
	// Get returns the context for a session, or (nil, false) when the
	// session is unknown or expired.
	Get(sessionID string) (*Context, bool)

	// Set stores the context for a session, resetting its TTL.
	Set(sessionID string, sc *Context)

	// Delete removes the context for a session.
	Delete(sessionID string)

	// Len returns the number of live sessions, expired entries included
	// until the next purge.
	Len() int
}

// MemoryStore is the in-process Store backed by a TTL cache with a
// background janitor.
type MemoryStore struct {
	cache *cache.Cache
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds a MemoryStore. Non-positive arguments select the
// defaults.
func NewMemoryStore(ttl, purgeInterval time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if purgeInterval <= 0 {
		purgeInterval = DefaultPurgeInterval
	}
	return &MemoryStore{cache: cache.New(ttl, purgeInterval)}
}

// Get returns a clone of the stored context so callers can mutate it
// freely before writing it back.
func (s *MemoryStore) Get(sessionID string) (*Context, bool) {
	v, found := s.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	sc, ok := v.(*Context)
	if !ok {
		return nil, false
	}
	return sc.Clone(), true
}

// Set stores a clone of sc and resets the session's TTL.
func (s *MemoryStore) Set(sessionID string, sc *Context) {
	if sc == nil {
		return
	}
	s.cache.Set(sessionID, sc.Clone(), cache.DefaultExpiration)
}

// Delete removes the session's context.
func (s *MemoryStore) Delete(sessionID string) {
	s.cache.Delete(sessionID)
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}

package ratelimit

import (
	"sync"
	"time"

	"github.com/admibot/admibot-go/internal/metrics"
)

// defaultCleanupPeriod bounds how long an idle key stays tracked when the
// caller does not set a period.
const defaultCleanupPeriod = 5 * time.Minute

// KeyedConfig configures a KeyedLimiter. Each layer is optional: the
// token bucket runs when Burst > 0 and the sliding window runs when
// WindowLimit > 0. A key must pass every configured layer.
type KeyedConfig struct {
	// Name labels this limiter in metrics (session, llm).
	Name string

	// Token bucket layer
	Burst      float64 // bucket capacity, <= 0 disables
	RefillRate float64 // tokens per second

	// Sliding window layer
	WindowLimit int           // requests per Window, <= 0 disables
	Window      time.Duration // rolling window size

	// CleanupPeriod is how often idle keys are dropped. Defaults to
	// defaultCleanupPeriod when unset.
	CleanupPeriod time.Duration

	// Metrics receives drop counts and the tracked-key gauge. Optional.
	Metrics *metrics.Metrics
}

// KeyedLimiter tracks limits per key, creating state lazily on first use
// and dropping it again once a key has been idle long enough. Session IDs
// are the keys here, so the map grows with concurrent users, not with
// history.
type KeyedLimiter struct {
	mu      sync.RWMutex
	entries map[string]*keyedEntry
	config  KeyedConfig
	stopCh  chan struct{}
}

// keyedEntry holds one key's layers. Its mutex spans the check-then-consume
// across both, so a request never consumes a bucket token after losing the
// window race.
type keyedEntry struct {
	mu     sync.Mutex
	bucket *Limiter              // nil when the bucket layer is disabled
	window *SlidingWindowCounter // nil when the window layer is disabled
}

// NewKeyedLimiter creates a per-key limiter and starts its cleanup
// goroutine. Call Stop when done.
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = defaultCleanupPeriod
	}

	kl := &KeyedLimiter{
		entries: make(map[string]*keyedEntry),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}

	go kl.cleanupLoop()

	return kl
}

// NewSessionLimiter creates the inbound chat limiter: perMinute requests
// per session over a rolling minute, no bucket layer.
func NewSessionLimiter(perMinute int, cleanupPeriod time.Duration, m *metrics.Metrics) *KeyedLimiter {
	return NewKeyedLimiter(KeyedConfig{
		Name:          "session",
		WindowLimit:   perMinute,
		Window:        time.Minute,
		CleanupPeriod: cleanupPeriod,
		Metrics:       m,
	})
}

// NewLLMLimiter creates the per-session LLM budget: a bucket that allows
// bursts up to burst calls and refills at refillPerHour, plus an optional
// rolling 24h cap. dailyLimit <= 0 disables the daily layer.
func NewLLMLimiter(burst, refillPerHour float64, dailyLimit int, cleanupPeriod time.Duration, m *metrics.Metrics) *KeyedLimiter {
	return NewKeyedLimiter(KeyedConfig{
		Name:          "llm",
		Burst:         burst,
		RefillRate:    refillPerHour / 3600,
		WindowLimit:   dailyLimit,
		Window:        24 * time.Hour,
		CleanupPeriod: cleanupPeriod,
		Metrics:       m,
	})
}

// Allow reports whether a request for key passes every configured layer,
// consuming from all of them when it does. An empty key is never limited.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	entry := kl.entry(key)

	// Hold the entry lock across both layers so check and consume stay
	// atomic. A nil window checks true and consumes nothing.
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.window.Check() {
		kl.drop()
		return false
	}
	if entry.bucket != nil && !entry.bucket.Check() {
		kl.drop()
		return false
	}

	entry.window.Consume()
	if entry.bucket != nil {
		entry.bucket.Consume()
	}

	return true
}

func (kl *KeyedLimiter) drop() {
	if kl.config.Metrics != nil {
		kl.config.Metrics.RecordRateLimiterDrop(kl.config.Name)
	}
}

// entry returns the state for key, creating it on first use.
func (kl *KeyedLimiter) entry(key string) *keyedEntry {
	kl.mu.RLock()
	e, ok := kl.entries[key]
	kl.mu.RUnlock()

	if ok {
		return e
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	// Double-check after acquiring the write lock
	if e, ok = kl.entries[key]; ok {
		return e
	}

	e = &keyedEntry{window: NewSlidingWindowCounter(kl.config.WindowLimit, kl.config.Window)}
	if kl.config.Burst > 0 {
		e.bucket = New(kl.config.Burst, kl.config.RefillRate)
	}
	kl.entries[key] = e
	return e
}

// Available returns the bucket tokens left for key, or the full burst
// when the key is untracked or the bucket layer is disabled.
func (kl *KeyedLimiter) Available(key string) float64 {
	kl.mu.RLock()
	e, ok := kl.entries[key]
	kl.mu.RUnlock()

	if !ok || e.bucket == nil {
		return kl.config.Burst
	}

	return e.bucket.Available()
}

// WindowRemaining returns the rolling-window quota left for key.
// Returns -1 when the window layer is disabled.
func (kl *KeyedLimiter) WindowRemaining(key string) int {
	if kl.config.WindowLimit <= 0 {
		return -1
	}

	kl.mu.RLock()
	e, ok := kl.entries[key]
	kl.mu.RUnlock()

	if !ok {
		return kl.config.WindowLimit
	}

	return e.window.Remaining()
}

// ActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) ActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

// cleanupLoop drops keys whose state carries no information anymore: the
// bucket is back at capacity and the rolling window is empty. A key with
// remaining window usage must survive cleanup or its quota would reset.
func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.mu.Lock()
			for key, e := range kl.entries {
				idle := e.bucket == nil || e.bucket.IsFull()
				if idle && e.window.EffectiveCount() == 0 {
					delete(kl.entries, key)
				}
			}
			active := len(kl.entries)
			kl.mu.Unlock()

			if kl.config.Metrics != nil {
				kl.config.Metrics.SetRateLimiterActiveKeys(kl.config.Name, active)
			}
		}
	}
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (kl *KeyedLimiter) Stop() {
	select {
	case <-kl.stopCh:
		// Already stopped
	default:
		close(kl.stopCh)
	}
}

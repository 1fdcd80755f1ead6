package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore(0, 0)

	_, found := s.Get("s1")
	assert.False(t, found)

	s.Set("s1", &Context{LastProgram: "derecho"})

	got, found := s.Get("s1")
	require.True(t, found)
	assert.Equal(t, "derecho", got.LastProgram)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStoreHandsOutClones(t *testing.T) {
	s := NewMemoryStore(0, 0)
	original := &Context{LastProgram: "derecho"}
	s.Set("s1", original)

	// Mutating what Set was given must not leak into the store.
	original.LastProgram = "mutated"
	got, found := s.Get("s1")
	require.True(t, found)
	assert.Equal(t, "derecho", got.LastProgram)

	// Mutating what Get returned must not leak either.
	got.LastProgram = "mutated"
	again, found := s.Get("s1")
	require.True(t, found)
	assert.Equal(t, "derecho", again.LastProgram)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore(0, 0)
	s.Set("s1", &Context{LastProgram: "derecho"})
	s.Delete("s1")

	_, found := s.Get("s1")
	assert.False(t, found)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(10*time.Millisecond, time.Minute)
	s.Set("s1", &Context{LastProgram: "derecho"})

	time.Sleep(30 * time.Millisecond)

	_, found := s.Get("s1")
	assert.False(t, found)
}

func TestMemoryStoreSetNilIsNoOp(t *testing.T) {
	s := NewMemoryStore(0, 0)
	s.Set("s1", nil)

	_, found := s.Get("s1")
	assert.False(t, found)
	assert.Zero(t, s.Len())
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore(0, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", n%5)
			s.Set(id, &Context{LastProgram: "derecho"})
			s.Get(id)
			if n%7 == 0 {
				s.Delete(id)
			}
		}(i)
	}
	wg.Wait()
}

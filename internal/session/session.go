// Package session keeps short-lived conversational memory so follow-up
// questions ("¿y en quinto semestre?") resolve against what the user was
// already talking about. Contexts live in a TTL store and expire on their
// own; a farewell clears them eagerly.
package session

import (
	"time"

	"github.com/admibot/admibot-go/internal/nlu"
)

// Context is the per-session memory carried between turns.
type Context struct {
	// LastProgram is the most recent program the user asked about.
	LastProgram string

	// LastFaculty is the most recent faculty the user asked about.
	LastFaculty string

	// LastTopic is the most recent non-GENERAL intent.
	LastTopic nlu.Intent

	// UpdatedAt is when any field above last changed.
	UpdatedAt time.Time
}

// Clone returns a copy. The store hands out clones so callers never share
// mutable state across goroutines.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Update folds one turn's extraction into the context. Fields are only
// overwritten when the new turn carries a signal; absence never erases
// prior memory.
func (c *Context) Update(entities *nlu.ExtractedEntities, now time.Time) {
	if entities == nil {
		return
	}

	changed := false
	if len(entities.Programs) > 0 {
		c.LastProgram = entities.Programs[0]
		changed = true
	}
	if len(entities.Faculties) > 0 {
		c.LastFaculty = entities.Faculties[0]
		changed = true
	}
	if topic := entities.FirstNonGeneralIntent(); topic != "" {
		c.LastTopic = topic
		changed = true
	}
	if changed {
		c.UpdatedAt = now
	}
}

// IsEmpty reports whether the context carries no memory at all.
func (c *Context) IsEmpty() bool {
	return c == nil || (c.LastProgram == "" && c.LastFaculty == "" && c.LastTopic == "")
}

package storage

import "errors"

// Common errors
var (
	// ErrNotFound is returned when a resource is not found in the database
	ErrNotFound = errors.New("resource not found")
)

// Faculty represents a cached faculty record from the academic API
type Faculty struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	CachedAt    int64  `json:"cached_at"`
}

// Program represents a cached academic program record
type Program struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Faculty     string   `json:"faculty"`
	Degree      string   `json:"degree,omitempty"` // Awarded title, e.g. "Ingeniero de Sistemas"
	Semesters   int      `json:"semesters,omitempty"`
	Credits     int      `json:"credits,omitempty"`
	Tracks      []string `json:"tracks,omitempty"` // Schedule tracks, e.g. "diurna", "nocturna"
	Description string   `json:"description,omitempty"`
	CachedAt    int64    `json:"cached_at"`
}

// CourseEntry represents a single curriculum row: one course of one
// program in one semester
type CourseEntry struct {
	UID      string `json:"uid"`
	Program  string `json:"program"`
	Semester int    `json:"semester"`
	Name     string `json:"name"`
	Credits  int    `json:"credits,omitempty"`
	Track    string `json:"track,omitempty"`
	CachedAt int64  `json:"cached_at"`
}

// Chat message roles stored in transcripts
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents one turn of a conversation transcript
type ChatMessage struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Intent    string `json:"intent,omitempty"` // Primary intent detected for the turn
	CreatedAt int64  `json:"created_at"`
}

// Document represents an ingested long-form document (program
// description, admissions guide) with its extracted text
type Document struct {
	Key         string `json:"key"` // Object storage key, unique per source
	Program     string `json:"program,omitempty"`
	Title       string `json:"title"`
	SourceURL   string `json:"source_url,omitempty"`
	ContentType string `json:"content_type,omitempty"` // "pdf" or "html"
	Text        string `json:"text"`
	ContentHash string `json:"content_hash"`
	CachedAt    int64  `json:"cached_at"`
}

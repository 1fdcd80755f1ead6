// Package storage provides repository interfaces for data access abstraction.
// These interfaces enable dependency inversion and facilitate testing by
// decoupling the engine and HTTP layer from concrete storage implementations.
package storage

import (
	"context"
	"time"
)

// CatalogRepository defines the interface for cached academic catalog data.
type CatalogRepository interface {
	GetFacultyByID(ctx context.Context, id string) (*Faculty, error)
	SearchFaculties(ctx context.Context, name string) ([]Faculty, error)
	SaveFacultiesBatch(ctx context.Context, faculties []*Faculty) error
	CountFaculties(ctx context.Context) (int, error)

	GetProgramByID(ctx context.Context, id string) (*Program, error)
	SearchPrograms(ctx context.Context, name, faculty string) ([]Program, error)
	SaveProgramsBatch(ctx context.Context, programs []*Program) error
	CountPrograms(ctx context.Context) (int, error)

	SearchCurriculum(ctx context.Context, program string, semester int, course, track string) ([]CourseEntry, error)
	SaveCurriculumBatch(ctx context.Context, entries []*CourseEntry) error
	CountCurriculum(ctx context.Context) (int, error)
}

// ChatRepository defines the interface for conversation transcripts.
type ChatRepository interface {
	// SaveChatMessage appends one transcript row.
	SaveChatMessage(ctx context.Context, msg *ChatMessage) error

	// GetHistory returns the most recent limit messages of a session in
	// chronological order.
	GetHistory(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error)

	// DeleteSessionHistory removes all transcript rows of a session.
	DeleteSessionHistory(ctx context.Context, sessionID string) (int64, error)
}

// DocumentRepository defines the interface for ingested document data.
type DocumentRepository interface {
	SaveDocument(ctx context.Context, doc *Document) error
	GetDocumentByKey(ctx context.Context, key string) (*Document, error)
	GetDocumentHash(ctx context.Context, key string) (string, error)
	GetDocumentsByProgram(ctx context.Context, program string) ([]Document, error)
	GetAllDocuments(ctx context.Context) ([]Document, error)
	CountDocuments(ctx context.Context) (int, error)
}

// HealthRepository defines the interface for health check operations.
type HealthRepository interface {
	// Ping verifies database connection is alive.
	Ping(ctx context.Context) error

	// Ready checks if the database is ready to serve queries.
	// Performs a more thorough check than Ping.
	Ready(ctx context.Context) error
}

// MaintenanceRepository defines the interface for expiry housekeeping.
type MaintenanceRepository interface {
	DeleteExpiredFaculties(ctx context.Context, ttl time.Duration) (int64, error)
	DeleteExpiredPrograms(ctx context.Context, ttl time.Duration) (int64, error)
	DeleteExpiredCurriculum(ctx context.Context, ttl time.Duration) (int64, error)
	PruneChatHistory(ctx context.Context, retention time.Duration) (int64, error)
}

// Repository is the aggregate interface that combines all repository
// interfaces. The DB type implements this interface, providing a single
// entry point for all data operations.
type Repository interface {
	CatalogRepository
	ChatRepository
	DocumentRepository
	HealthRepository
	MaintenanceRepository
	Close() error
}

// Ensure DB implements all repository interfaces at compile time.
var (
	_ CatalogRepository     = (*DB)(nil)
	_ ChatRepository        = (*DB)(nil)
	_ DocumentRepository    = (*DB)(nil)
	_ HealthRepository      = (*DB)(nil)
	_ MaintenanceRepository = (*DB)(nil)
	_ Repository            = (*DB)(nil)
)

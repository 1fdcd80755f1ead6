package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode and the other pragmas are configured via the DSN in db.go.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if err := createFacultiesTable(ctx, db); err != nil {
		return err
	}

	if err := createProgramsTable(ctx, db); err != nil {
		return err
	}

	if err := createCurriculumTable(ctx, db); err != nil {
		return err
	}

	if err := createChatMessagesTable(ctx, db); err != nil {
		return err
	}

	return createDocumentsTable(ctx, db)
}

func createFacultiesTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS faculties (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		website TEXT,
		cached_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_faculties_name ON faculties(name);
	CREATE INDEX IF NOT EXISTS idx_faculties_cached_at ON faculties(cached_at);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create faculties table: %w", err)
	}

	return nil
}

func createProgramsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS programs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		faculty TEXT NOT NULL,
		degree TEXT,
		semesters INTEGER,
		credits INTEGER,
		tracks TEXT,
		description TEXT,
		cached_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_programs_name ON programs(name);
	CREATE INDEX IF NOT EXISTS idx_programs_faculty ON programs(faculty);
	CREATE INDEX IF NOT EXISTS idx_programs_cached_at ON programs(cached_at);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create programs table: %w", err)
	}

	return nil
}

func createCurriculumTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS curriculum (
		uid TEXT PRIMARY KEY,
		program TEXT NOT NULL,
		semester INTEGER NOT NULL,
		name TEXT NOT NULL,
		credits INTEGER,
		track TEXT,
		cached_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_curriculum_program ON curriculum(program);
	CREATE INDEX IF NOT EXISTS idx_curriculum_program_semester ON curriculum(program, semester);
	CREATE INDEX IF NOT EXISTS idx_curriculum_name ON curriculum(name);
	CREATE INDEX IF NOT EXISTS idx_curriculum_cached_at ON curriculum(cached_at);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create curriculum table: %w", err)
	}

	return nil
}

func createChatMessagesTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT CHECK(role IN ('user', 'assistant')) NOT NULL,
		content TEXT NOT NULL,
		intent TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, id);
	CREATE INDEX IF NOT EXISTS idx_chat_messages_created_at ON chat_messages(created_at);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create chat_messages table: %w", err)
	}

	return nil
}

// createDocumentsTable creates the table for ingested long-form documents.
// Documents do not expire by TTL; re-ingestion replaces them in place and
// content_hash allows skipping unchanged sources.
func createDocumentsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS documents (
		key TEXT PRIMARY KEY,
		program TEXT,
		title TEXT NOT NULL,
		source_url TEXT,
		content_type TEXT,
		text TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		cached_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_program ON documents(program);
	CREATE INDEX IF NOT EXISTS idx_documents_content_hash ON documents(content_hash);
	CREATE INDEX IF NOT EXISTS idx_documents_cached_at ON documents(cached_at);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}

	return nil
}

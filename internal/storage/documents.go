package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// SaveDocument inserts or updates an ingested document keyed by its object
// storage key. Documents do not expire; re-ingestion replaces them.
func (db *DB) SaveDocument(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO documents (key, program, title, source_url, content_type, text, content_hash, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			program = excluded.program,
			title = excluded.title,
			source_url = excluded.source_url,
			content_type = excluded.content_type,
			text = excluded.text,
			content_hash = excluded.content_hash,
			cached_at = excluded.cached_at
	`
	start := time.Now()
	_, err := db.writer.ExecContext(ctx, query,
		doc.Key,
		doc.Program,
		doc.Title,
		doc.SourceURL,
		doc.ContentType,
		doc.Text,
		doc.ContentHash,
		time.Now().Unix(),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save document",
			"key", doc.Key,
			"error", err)
		return fmt.Errorf("failed to save document: %w", err)
	}

	warnIfSlow(ctx, "SaveDocument", start)
	return nil
}

// GetDocumentByKey retrieves a document by its object storage key.
// Returns (nil, nil) when no document exists for the key.
func (db *DB) GetDocumentByKey(ctx context.Context, key string) (*Document, error) {
	query := `
		SELECT key, program, title, source_url, content_type, text, content_hash, cached_at
		FROM documents WHERE key = ?
	`

	row := db.reader.QueryRowContext(ctx, query, key)
	doc, err := scanDocument(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query document",
			"key", key,
			"error", err)
		return nil, fmt.Errorf("query document: %w", err)
	}
	return doc, nil
}

// GetDocumentHash returns the stored content hash for a key, or empty
// string when the document has not been ingested. Lets the ingestion
// pipeline skip unchanged sources without loading the full text.
func (db *DB) GetDocumentHash(ctx context.Context, key string) (string, error) {
	var hash string
	err := db.reader.QueryRowContext(ctx, `SELECT content_hash FROM documents WHERE key = ?`, key).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query document hash: %w", err)
	}
	return hash, nil
}

// GetDocumentsByProgram retrieves all documents associated with a program
func (db *DB) GetDocumentsByProgram(ctx context.Context, program string) ([]Document, error) {
	query := `
		SELECT key, program, title, source_url, content_type, text, content_hash, cached_at
		FROM documents WHERE program = ? ORDER BY key
	`

	rows, err := db.reader.QueryContext(ctx, query, program)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query documents by program",
			"program", program,
			"error", err)
		return nil, fmt.Errorf("query documents by program: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectDocuments(rows)
}

// GetAllDocuments retrieves every ingested document, ordered by key.
// Used to build the in-memory search index at startup and after ingestion.
func (db *DB) GetAllDocuments(ctx context.Context) ([]Document, error) {
	query := `
		SELECT key, program, title, source_url, content_type, text, content_hash, cached_at
		FROM documents ORDER BY key
	`

	start := time.Now()
	rows, err := db.reader.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query all documents", "error", err)
		return nil, fmt.Errorf("query all documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, err
	}

	warnIfSlow(ctx, "GetAllDocuments", start)
	return docs, nil
}

// CountDocuments returns the number of ingested documents
func (db *DB) CountDocuments(ctx context.Context) (int, error) {
	var count int
	if err := db.reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// DeleteDocument removes a document by key. Returns the number of rows
// removed (0 or 1).
func (db *DB) DeleteDocument(ctx context.Context, key string) (int64, error) {
	result, err := db.writer.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	if err != nil {
		return 0, fmt.Errorf("delete document: %w", err)
	}
	return result.RowsAffected()
}

func scanDocument(scan func(dest ...any) error) (*Document, error) {
	var doc Document
	var program, sourceURL, contentType sql.NullString

	err := scan(
		&doc.Key,
		&program,
		&doc.Title,
		&sourceURL,
		&contentType,
		&doc.Text,
		&doc.ContentHash,
		&doc.CachedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.Program = program.String
	doc.SourceURL = sourceURL.String
	doc.ContentType = contentType.String
	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

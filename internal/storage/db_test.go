package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	// Use in-memory SQLite database for testing with 7-day TTL
	db, err := New(context.Background(), ":memory:", 168*time.Hour)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewInitializesSchema(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	if err := db.Ready(ctx); err != nil {
		t.Fatalf("Ready failed: %v", err)
	}

	count, err := db.CountFaculties(ctx)
	if err != nil {
		t.Fatalf("CountFaculties failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty faculties table, got %d rows", count)
	}
}

func TestExecBatchContextRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	query := `INSERT INTO faculties (id, name, cached_at) VALUES (?, ?, ?)`
	batchErr := errors.New("batch failed")

	err := db.ExecBatchContext(ctx, query, func(stmt *sql.Stmt) error {
		if _, err := stmt.ExecContext(ctx, "ingenieria", "Facultad de Ingeniería", time.Now().Unix()); err != nil {
			return err
		}
		return batchErr
	})
	if !errors.Is(err, batchErr) {
		t.Fatalf("Expected batch error, got %v", err)
	}

	count, err := db.CountFaculties(ctx)
	if err != nil {
		t.Fatalf("CountFaculties failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected rollback to leave 0 rows, got %d", count)
	}
}

func TestHotSwapReplacesData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	pathA := filepath.Join(dir, "a.db")
	pathB := filepath.Join(dir, "b.db")

	// Seed the replacement database first
	dbB, err := New(ctx, pathB, 168*time.Hour)
	if err != nil {
		t.Fatalf("Failed to create replacement database: %v", err)
	}
	if err := dbB.SaveFacultiesBatch(ctx, []*Faculty{{ID: "salud", Name: "Facultad de Ciencias de la Salud"}}); err != nil {
		t.Fatalf("SaveFacultiesBatch failed: %v", err)
	}
	if err := dbB.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	hot, err := NewHotSwapDB(ctx, pathA, 168*time.Hour)
	if err != nil {
		t.Fatalf("NewHotSwapDB failed: %v", err)
	}
	defer func() { _ = hot.Close() }()

	if err := hot.DB().SaveFacultiesBatch(ctx, []*Faculty{{ID: "ingenieria", Name: "Facultad de Ingeniería"}}); err != nil {
		t.Fatalf("SaveFacultiesBatch failed: %v", err)
	}

	if err := hot.Swap(ctx, pathB); err != nil {
		t.Fatalf("Swap failed: %v", err)
	}

	if hot.Path() != pathB {
		t.Errorf("Expected path %s after swap, got %s", pathB, hot.Path())
	}

	faculty, err := hot.DB().GetFacultyByID(ctx, "salud")
	if err != nil {
		t.Fatalf("GetFacultyByID failed: %v", err)
	}
	if faculty == nil {
		t.Fatal("Expected faculty from swapped-in database, got nil")
	}

	old, err := hot.DB().GetFacultyByID(ctx, "ingenieria")
	if err != nil {
		t.Fatalf("GetFacultyByID failed: %v", err)
	}
	if old != nil {
		t.Errorf("Expected old faculty to be gone after swap, got %+v", old)
	}
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/admibot/admibot-go/internal/textnorm"
)

// Catalog rows carry display names with accents ("Ingeniería de Sistemas")
// while their IDs are the canonical accent-stripped form the planner emits
// ("ingenieria de sistemas"). Exact filters run in SQL against IDs; fuzzy
// name filters normalize both sides in Go, following the same
// load-then-filter approach used for small cached tables.

const curriculumScanCap = 500

// SaveFaculty inserts or updates a faculty record
func (db *DB) SaveFaculty(ctx context.Context, faculty *Faculty) error {
	query := `
		INSERT INTO faculties (id, name, description, website, cached_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			website = excluded.website,
			cached_at = excluded.cached_at
	`
	start := time.Now()
	_, err := db.writer.ExecContext(ctx, query, faculty.ID, faculty.Name, faculty.Description, faculty.Website, time.Now().Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to save faculty",
			"faculty_id", faculty.ID,
			"error", err)
		return fmt.Errorf("failed to save faculty: %w", err)
	}

	warnIfSlow(ctx, "SaveFaculty", start)
	return nil
}

// SaveFacultiesBatch inserts or updates multiple faculty records in a single transaction
func (db *DB) SaveFacultiesBatch(ctx context.Context, faculties []*Faculty) error {
	if len(faculties) == 0 {
		return nil
	}

	query := `
		INSERT INTO faculties (id, name, description, website, cached_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			website = excluded.website,
			cached_at = excluded.cached_at
	`

	cachedAt := time.Now().Unix()
	return db.ExecBatchContext(ctx, query, func(stmt *sql.Stmt) error {
		for _, faculty := range faculties {
			if _, err := stmt.ExecContext(ctx, faculty.ID, faculty.Name, faculty.Description, faculty.Website, cachedAt); err != nil {
				slog.ErrorContext(ctx, "failed to save faculty in batch",
					"faculty_id", faculty.ID,
					"error", err)
				return fmt.Errorf("failed to save faculty %s: %w", faculty.ID, err)
			}
		}
		return nil
	})
}

// GetFacultyByID retrieves a TTL-valid faculty by its canonical ID.
// Returns (nil, nil) when the faculty is not cached or has expired.
func (db *DB) GetFacultyByID(ctx context.Context, id string) (*Faculty, error) {
	query := `SELECT id, name, description, website, cached_at FROM faculties WHERE id = ? AND cached_at > ?`

	var f Faculty
	var description, website sql.NullString
	err := db.reader.QueryRowContext(ctx, query, id, db.getTTLTimestamp()).Scan(
		&f.ID,
		&f.Name,
		&description,
		&website,
		&f.CachedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query faculty",
			"faculty_id", id,
			"error", err)
		return nil, fmt.Errorf("query faculty: %w", err)
	}

	f.Description = description.String
	f.Website = website.String
	return &f, nil
}

// SearchFaculties returns TTL-valid faculties whose name contains the given
// term, accent-insensitively. An empty term returns all valid faculties.
func (db *DB) SearchFaculties(ctx context.Context, name string) ([]Faculty, error) {
	query := `SELECT id, name, description, website, cached_at FROM faculties WHERE cached_at > ? ORDER BY name`

	rows, err := db.reader.QueryContext(ctx, query, db.getTTLTimestamp())
	if err != nil {
		slog.ErrorContext(ctx, "failed to query faculties",
			"search_term", name,
			"error", err)
		return nil, fmt.Errorf("query faculties: %w", err)
	}
	defer func() { _ = rows.Close() }()

	needle := textnorm.Normalize(name)
	var faculties []Faculty
	for rows.Next() {
		var f Faculty
		var description, website sql.NullString
		if err := rows.Scan(&f.ID, &f.Name, &description, &website, &f.CachedAt); err != nil {
			return nil, fmt.Errorf("scan faculty: %w", err)
		}
		f.Description = description.String
		f.Website = website.String

		if needle != "" && !strings.Contains(f.ID, needle) && !strings.Contains(textnorm.Normalize(f.Name), needle) {
			continue
		}
		faculties = append(faculties, f)
	}
	return faculties, rows.Err()
}

// CountFaculties returns the number of TTL-valid faculty records
func (db *DB) CountFaculties(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM faculties WHERE cached_at > ?`

	var count int
	if err := db.reader.QueryRowContext(ctx, query, db.getTTLTimestamp()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count faculties: %w", err)
	}
	return count, nil
}

// DeleteExpiredFaculties removes faculty records older than the given TTL
func (db *DB) DeleteExpiredFaculties(ctx context.Context, ttl time.Duration) (int64, error) {
	expiryTime := time.Now().Unix() - int64(ttl.Seconds())
	result, err := db.writer.ExecContext(ctx, `DELETE FROM faculties WHERE cached_at <= ?`, expiryTime)
	if err != nil {
		return 0, fmt.Errorf("delete expired faculties: %w", err)
	}
	return result.RowsAffected()
}

// SaveProgram inserts or updates a program record
func (db *DB) SaveProgram(ctx context.Context, program *Program) error {
	tracksJSON, err := marshalTracks(program.Tracks)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO programs (id, name, faculty, degree, semesters, credits, tracks, description, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			faculty = excluded.faculty,
			degree = excluded.degree,
			semesters = excluded.semesters,
			credits = excluded.credits,
			tracks = excluded.tracks,
			description = excluded.description,
			cached_at = excluded.cached_at
	`
	start := time.Now()
	_, err = db.writer.ExecContext(ctx, query,
		program.ID,
		program.Name,
		program.Faculty,
		program.Degree,
		program.Semesters,
		program.Credits,
		tracksJSON,
		program.Description,
		time.Now().Unix(),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save program",
			"program_id", program.ID,
			"error", err)
		return fmt.Errorf("failed to save program: %w", err)
	}

	warnIfSlow(ctx, "SaveProgram", start)
	return nil
}

// SaveProgramsBatch inserts or updates multiple program records in a single transaction
func (db *DB) SaveProgramsBatch(ctx context.Context, programs []*Program) error {
	if len(programs) == 0 {
		return nil
	}

	query := `
		INSERT INTO programs (id, name, faculty, degree, semesters, credits, tracks, description, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			faculty = excluded.faculty,
			degree = excluded.degree,
			semesters = excluded.semesters,
			credits = excluded.credits,
			tracks = excluded.tracks,
			description = excluded.description,
			cached_at = excluded.cached_at
	`

	cachedAt := time.Now().Unix()
	return db.ExecBatchContext(ctx, query, func(stmt *sql.Stmt) error {
		for _, program := range programs {
			tracksJSON, err := marshalTracks(program.Tracks)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx,
				program.ID,
				program.Name,
				program.Faculty,
				program.Degree,
				program.Semesters,
				program.Credits,
				tracksJSON,
				program.Description,
				cachedAt,
			); err != nil {
				slog.ErrorContext(ctx, "failed to save program in batch",
					"program_id", program.ID,
					"error", err)
				return fmt.Errorf("failed to save program %s: %w", program.ID, err)
			}
		}
		return nil
	})
}

// GetProgramByID retrieves a TTL-valid program by its canonical ID.
// Returns (nil, nil) when the program is not cached or has expired.
func (db *DB) GetProgramByID(ctx context.Context, id string) (*Program, error) {
	query := `
		SELECT id, name, faculty, degree, semesters, credits, tracks, description, cached_at
		FROM programs WHERE id = ? AND cached_at > ?
	`

	row := db.reader.QueryRowContext(ctx, query, id, db.getTTLTimestamp())
	program, err := scanProgram(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query program",
			"program_id", id,
			"error", err)
		return nil, fmt.Errorf("query program: %w", err)
	}
	return program, nil
}

// SearchPrograms returns TTL-valid programs, optionally narrowed by an
// accent-insensitive name fragment and/or an exact faculty key.
func (db *DB) SearchPrograms(ctx context.Context, name, faculty string) ([]Program, error) {
	query := `
		SELECT id, name, faculty, degree, semesters, credits, tracks, description, cached_at
		FROM programs WHERE cached_at > ?
	`
	args := []any{db.getTTLTimestamp()}
	if faculty != "" {
		query += ` AND faculty = ?`
		args = append(args, faculty)
	}
	query += ` ORDER BY name`

	start := time.Now()
	rows, err := db.reader.QueryContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query programs",
			"search_term", name,
			"faculty", faculty,
			"error", err)
		return nil, fmt.Errorf("query programs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	needle := textnorm.Normalize(name)
	var programs []Program
	for rows.Next() {
		program, err := scanProgram(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}

		if needle != "" && !strings.Contains(program.ID, needle) && !strings.Contains(textnorm.Normalize(program.Name), needle) {
			continue
		}
		programs = append(programs, *program)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	warnIfSlow(ctx, "SearchPrograms", start)
	return programs, nil
}

// CountPrograms returns the number of TTL-valid program records
func (db *DB) CountPrograms(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM programs WHERE cached_at > ?`

	var count int
	if err := db.reader.QueryRowContext(ctx, query, db.getTTLTimestamp()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count programs: %w", err)
	}
	return count, nil
}

// DeleteExpiredPrograms removes program records older than the given TTL
func (db *DB) DeleteExpiredPrograms(ctx context.Context, ttl time.Duration) (int64, error) {
	expiryTime := time.Now().Unix() - int64(ttl.Seconds())
	result, err := db.writer.ExecContext(ctx, `DELETE FROM programs WHERE cached_at <= ?`, expiryTime)
	if err != nil {
		return 0, fmt.Errorf("delete expired programs: %w", err)
	}
	return result.RowsAffected()
}

// SaveCurriculumBatch inserts or updates curriculum rows in a single transaction.
// Curriculum refresh always arrives as a full per-program batch from the
// academic API, so there is no single-row save.
func (db *DB) SaveCurriculumBatch(ctx context.Context, entries []*CourseEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO curriculum (uid, program, semester, name, credits, track, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			program = excluded.program,
			semester = excluded.semester,
			name = excluded.name,
			credits = excluded.credits,
			track = excluded.track,
			cached_at = excluded.cached_at
	`

	start := time.Now()
	cachedAt := time.Now().Unix()
	err := db.ExecBatchContext(ctx, query, func(stmt *sql.Stmt) error {
		for _, entry := range entries {
			if _, err := stmt.ExecContext(ctx,
				entry.UID,
				entry.Program,
				entry.Semester,
				entry.Name,
				entry.Credits,
				entry.Track,
				cachedAt,
			); err != nil {
				slog.ErrorContext(ctx, "failed to save curriculum row in batch",
					"uid", entry.UID,
					"error", err)
				return fmt.Errorf("failed to save curriculum row %s: %w", entry.UID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "batch operation completed",
		"operation", "SaveCurriculumBatch",
		"count", len(entries),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// SearchCurriculum returns TTL-valid curriculum rows narrowed by the given
// filters. Program, semester and track filter in SQL; the course fragment
// is matched accent-insensitively in Go against the course name.
func (db *DB) SearchCurriculum(ctx context.Context, program string, semester int, course, track string) ([]CourseEntry, error) {
	query := `
		SELECT uid, program, semester, name, credits, track, cached_at
		FROM curriculum WHERE cached_at > ?
	`
	args := []any{db.getTTLTimestamp()}
	if program != "" {
		query += ` AND program = ?`
		args = append(args, program)
	}
	if semester > 0 {
		query += ` AND semester = ?`
		args = append(args, semester)
	}
	if track != "" {
		query += ` AND track = ?`
		args = append(args, track)
	}
	query += ` ORDER BY program, semester, name LIMIT ?`
	args = append(args, curriculumScanCap)

	start := time.Now()
	rows, err := db.reader.QueryContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query curriculum",
			"program", program,
			"semester", semester,
			"error", err)
		return nil, fmt.Errorf("query curriculum: %w", err)
	}
	defer func() { _ = rows.Close() }()

	needle := textnorm.Normalize(course)
	var entries []CourseEntry
	for rows.Next() {
		var entry CourseEntry
		var credits sql.NullInt64
		var trackCol sql.NullString
		if err := rows.Scan(&entry.UID, &entry.Program, &entry.Semester, &entry.Name, &credits, &trackCol, &entry.CachedAt); err != nil {
			return nil, fmt.Errorf("scan curriculum row: %w", err)
		}
		entry.Credits = int(credits.Int64)
		entry.Track = trackCol.String

		if needle != "" && !strings.Contains(textnorm.Normalize(entry.Name), needle) {
			continue
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	warnIfSlow(ctx, "SearchCurriculum", start)
	return entries, nil
}

// CountCurriculum returns the number of TTL-valid curriculum rows
func (db *DB) CountCurriculum(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM curriculum WHERE cached_at > ?`

	var count int
	if err := db.reader.QueryRowContext(ctx, query, db.getTTLTimestamp()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count curriculum: %w", err)
	}
	return count, nil
}

// DeleteExpiredCurriculum removes curriculum rows older than the given TTL
func (db *DB) DeleteExpiredCurriculum(ctx context.Context, ttl time.Duration) (int64, error) {
	expiryTime := time.Now().Unix() - int64(ttl.Seconds())
	result, err := db.writer.ExecContext(ctx, `DELETE FROM curriculum WHERE cached_at <= ?`, expiryTime)
	if err != nil {
		return 0, fmt.Errorf("delete expired curriculum: %w", err)
	}
	return result.RowsAffected()
}

// scanProgram reads one program row via the given scan function, decoding
// the JSON-encoded tracks column.
func scanProgram(scan func(dest ...any) error) (*Program, error) {
	var program Program
	var degree, tracksJSON, description sql.NullString
	var semesters, credits sql.NullInt64

	err := scan(
		&program.ID,
		&program.Name,
		&program.Faculty,
		&degree,
		&semesters,
		&credits,
		&tracksJSON,
		&description,
		&program.CachedAt,
	)
	if err != nil {
		return nil, err
	}

	program.Degree = degree.String
	program.Semesters = int(semesters.Int64)
	program.Credits = int(credits.Int64)
	program.Description = description.String
	if tracksJSON.String != "" {
		if err := json.Unmarshal([]byte(tracksJSON.String), &program.Tracks); err != nil {
			return nil, fmt.Errorf("decode tracks: %w", err)
		}
	}
	return &program, nil
}

func marshalTracks(tracks []string) (string, error) {
	if len(tracks) == 0 {
		return "", nil
	}
	b, err := json.Marshal(tracks)
	if err != nil {
		return "", fmt.Errorf("encode tracks: %w", err)
	}
	return string(b), nil
}

// warnIfSlow logs a warning for database operations slower than 100ms
func warnIfSlow(ctx context.Context, operation string, start time.Time) {
	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", operation,
			"duration_ms", duration.Milliseconds())
	}
}

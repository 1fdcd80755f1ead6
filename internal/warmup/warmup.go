// Package warmup preloads the catalog cache and the document corpus so the
// first conversations after a deploy answer from SQLite instead of paying
// upstream latency. Collections warm concurrently except curriculum, which
// needs the program list to be cached first.
package warmup

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/admibot/admibot-go/internal/academic"
	"github.com/admibot/admibot-go/internal/ingest"
	"github.com/admibot/admibot-go/internal/logger"
	"github.com/admibot/admibot-go/internal/metrics"
	"github.com/admibot/admibot-go/internal/storage"
)

// Collections that can be warmed.
const (
	CollectionFaculties  = "faculties"
	CollectionPrograms   = "programs"
	CollectionCurriculum = "curriculum"
	CollectionDocuments  = "documents"
)

// DefaultCollections warms everything, in the order the catalog depends on
// itself.
var DefaultCollections = []string{
	CollectionFaculties,
	CollectionPrograms,
	CollectionCurriculum,
	CollectionDocuments,
}

// Stats tracks cache warming counts.
// All fields use atomic operations for concurrent access.
type Stats struct {
	Faculties  atomic.Int64
	Programs   atomic.Int64
	Courses    atomic.Int64
	Documents  atomic.Int64
	TaskErrors atomic.Int64
}

// Options configures cache warming behavior.
type Options struct {
	Collections []string         // Collections to warm, empty warms nothing
	Reset       bool             // Whether to clear cached rows before warming
	Metrics     *metrics.Metrics // Optional metrics recorder
	Ingestor    *ingest.Pipeline // Optional, required for the documents collection
	Sources     []ingest.Source  // Document sources the ingestor runs over
}

// Run executes cache warming with the given options.
func Run(ctx context.Context, db *storage.DB, client *academic.Client, log *logger.Logger, opts Options) (*Stats, error) {
	stats := &Stats{}
	startTime := time.Now()

	if opts.Reset {
		log.Warn("Resetting cached catalog data...")
		if err := resetCache(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to reset cache: %w", err)
		}
		log.Info("Cache reset complete")
	}

	// Curriculum is fetched per program, so it waits for the programs
	// collection. Everything else runs concurrently.
	var independent []string
	var hasPrograms, hasCurriculum bool

	for _, collection := range opts.Collections {
		switch collection {
		case CollectionPrograms:
			hasPrograms = true
		case CollectionCurriculum:
			hasCurriculum = true
		default:
			independent = append(independent, collection)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	programsDone := make(chan struct{})

	for _, collection := range independent {
		g.Go(func() error {
			switch collection {
			case CollectionFaculties:
				if err := warmFaculties(ctx, db, client, log, stats, opts.Metrics); err != nil {
					log.WithError(err).Error("Faculty warmup failed")
					return fmt.Errorf("faculties: %w", err)
				}
			case CollectionDocuments:
				if err := warmDocuments(ctx, log, stats, opts); err != nil {
					log.WithError(err).Error("Document warmup failed")
					return fmt.Errorf("documents: %w", err)
				}
			default:
				log.WithField("collection", collection).Warn("Unknown collection, skipping")
			}
			return nil
		})
	}

	if hasPrograms {
		g.Go(func() error {
			defer close(programsDone)
			if err := warmPrograms(ctx, db, client, log, stats, opts.Metrics); err != nil {
				log.WithError(err).Error("Program warmup failed")
				return fmt.Errorf("programs: %w", err)
			}
			return nil
		})
	} else {
		close(programsDone)
	}

	if hasCurriculum {
		g.Go(func() error {
			if hasPrograms {
				log.Debug("Curriculum waiting for program warmup")
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("curriculum canceled while waiting for programs: %w", ctx.Err())
			case <-programsDone:
			}

			if err := warmCurriculum(ctx, db, client, log, stats, opts.Metrics); err != nil {
				log.WithError(err).Error("Curriculum warmup failed")
				return fmt.Errorf("curriculum: %w", err)
			}
			return nil
		})
	}

	err := g.Wait()

	duration := time.Since(startTime)
	if opts.Metrics != nil {
		opts.Metrics.RecordWarmupDuration(duration.Seconds())
	}
	log.WithField("duration", duration).
		WithField("faculties", stats.Faculties.Load()).
		WithField("programs", stats.Programs.Load()).
		WithField("courses", stats.Courses.Load()).
		WithField("documents", stats.Documents.Load()).
		Info("Cache warming complete")

	if err != nil {
		log.WithError(err).Warn("Some collections failed during warmup")
		return stats, err
	}

	return stats, nil
}

// RunInBackground executes cache warming asynchronously.
// Returns immediately without blocking. Logs progress to the provided logger.
// Uses context.Background() so the warmup outlives the request that kicked
// it off. ready is marked when the run finishes, regardless of partial
// failures: serving cached-but-stale data beats serving nothing.
//
//nolint:contextcheck // Intentionally using context.Background() for independent background operation
func RunInBackground(_ context.Context, db *storage.DB, client *academic.Client, log *logger.Logger, ready *ReadinessState, opts Options) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Panic in background cache warming")
			}
		}()

		log.WithField("collections", opts.Collections).
			Info("Starting background cache warming")

		stats, err := Run(context.Background(), db, client, log, opts)
		if err != nil {
			log.WithError(err).Warn("Background cache warming finished with errors")
		} else {
			log.WithField("faculties", stats.Faculties.Load()).
				WithField("programs", stats.Programs.Load()).
				WithField("courses", stats.Courses.Load()).
				WithField("documents", stats.Documents.Load()).
				Info("Background cache warming completed successfully")
		}

		if ready != nil {
			ready.MarkReady()
		}
	}()
}

// ParseCollections converts a comma-separated string to a collection list.
func ParseCollections(collections string) []string {
	if collections == "" {
		return []string{}
	}

	var result []string
	for _, c := range strings.Split(collections, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			result = append(result, c)
		}
	}
	return result
}

// resetCache deletes all cached catalog and document rows. Chat transcripts
// are user data, not cache, and are left alone.
func resetCache(ctx context.Context, db *storage.DB) error {
	tables := []string{"faculties", "programs", "curriculum", "documents"}
	for _, table := range tables {
		query := fmt.Sprintf("DELETE FROM %s", table)
		if _, err := db.Writer().ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	// Run VACUUM to reclaim space
	if _, err := db.Writer().ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum: %w", err)
	}
	return nil
}

func recordTask(m *metrics.Metrics, collection string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RecordWarmupTask(collection, status)
}

// warmFaculties caches the full faculty list.
func warmFaculties(ctx context.Context, db *storage.DB, client *academic.Client, log *logger.Logger, stats *Stats, m *metrics.Metrics) (err error) {
	defer func() { recordTask(m, CollectionFaculties, err) }()

	log.Info("Starting faculty warmup")

	faculties, err := client.ListFaculties(ctx, academic.Filter{})
	if err != nil {
		return fmt.Errorf("failed to list faculties: %w", err)
	}

	batch := make([]*storage.Faculty, len(faculties))
	for i := range faculties {
		batch[i] = &faculties[i]
	}
	if err := db.SaveFacultiesBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to save faculties: %w", err)
	}

	stats.Faculties.Add(int64(len(faculties)))
	log.WithField("count", len(faculties)).Info("Faculties cached")
	return nil
}

// warmPrograms caches the full program list.
func warmPrograms(ctx context.Context, db *storage.DB, client *academic.Client, log *logger.Logger, stats *Stats, m *metrics.Metrics) (err error) {
	defer func() { recordTask(m, CollectionPrograms, err) }()

	log.Info("Starting program warmup")

	programs, err := client.ListPrograms(ctx, academic.Filter{})
	if err != nil {
		return fmt.Errorf("failed to list programs: %w", err)
	}

	batch := make([]*storage.Program, len(programs))
	for i := range programs {
		batch[i] = &programs[i]
	}
	if err := db.SaveProgramsBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to save programs: %w", err)
	}

	stats.Programs.Add(int64(len(programs)))
	log.WithField("count", len(programs)).Info("Programs cached")
	return nil
}

// warmCurriculum caches the study plan of every cached program, one upstream
// request per program. A program that fails is logged and skipped so one bad
// study plan does not starve the rest; the collection only errors when no
// program could be fetched at all.
func warmCurriculum(ctx context.Context, db *storage.DB, client *academic.Client, log *logger.Logger, stats *Stats, m *metrics.Metrics) (err error) {
	defer func() { recordTask(m, CollectionCurriculum, err) }()

	programs, err := db.SearchPrograms(ctx, "", "")
	if err != nil {
		return fmt.Errorf("failed to load cached programs: %w", err)
	}
	if len(programs) == 0 {
		log.Info("No cached programs, skipping curriculum warmup")
		return nil
	}

	log.WithField("programs", len(programs)).Info("Starting curriculum warmup")

	var completed, errorCount int
	for i, program := range programs {
		select {
		case <-ctx.Done():
			log.WithField("completed", completed).
				WithField("errors", errorCount).
				Warn("Curriculum warmup canceled")
			return fmt.Errorf("canceled: %w", ctx.Err())
		default:
		}

		entries, err := client.ListCurriculum(ctx, academic.Filter{Program: program.ID})
		if err != nil {
			log.WithError(err).
				WithField("program", program.ID).
				Warn("Failed to fetch curriculum")
			errorCount++
			stats.TaskErrors.Add(1)
			continue
		}

		batch := make([]*storage.CourseEntry, len(entries))
		for j := range entries {
			batch[j] = &entries[j]
		}
		if err := db.SaveCurriculumBatch(ctx, batch); err != nil {
			log.WithError(err).
				WithField("program", program.ID).
				WithField("count", len(entries)).
				Warn("Failed to save curriculum batch")
			errorCount++
			stats.TaskErrors.Add(1)
			continue
		}

		stats.Courses.Add(int64(len(entries)))
		completed++

		if (i+1)%10 == 0 || i+1 == len(programs) {
			log.WithField("progress", fmt.Sprintf("%d/%d", i+1, len(programs))).
				WithField("courses", stats.Courses.Load()).
				Info("Curriculum warmup progress")
		}
	}

	if completed == 0 && errorCount > 0 {
		return fmt.Errorf("all %d programs failed", errorCount)
	}
	return nil
}

// warmDocuments runs the ingest pipeline over the configured sources.
func warmDocuments(ctx context.Context, log *logger.Logger, stats *Stats, opts Options) (err error) {
	defer func() { recordTask(opts.Metrics, CollectionDocuments, err) }()

	if opts.Ingestor == nil {
		log.Info("Document warmup skipped: ingestor not configured")
		return nil
	}

	report, err := opts.Ingestor.Run(ctx, opts.Sources)
	if err != nil {
		return fmt.Errorf("ingest run failed: %w", err)
	}

	stats.Documents.Store(int64(report.Ingested + report.Unchanged))
	if report.Failed > 0 {
		stats.TaskErrors.Add(int64(report.Failed))
	}
	return nil
}

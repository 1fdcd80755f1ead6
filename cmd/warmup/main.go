// Command warmup fills the catalog cache from the academic API ahead of
// serving traffic. Run it once when seeding a fresh deployment, or from a
// scheduler to keep a standby database warm.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/admibot/admibot-go/internal/academic"
	"github.com/admibot/admibot-go/internal/config"
	"github.com/admibot/admibot-go/internal/docindex"
	"github.com/admibot/admibot-go/internal/ingest"
	"github.com/admibot/admibot-go/internal/logger"
	"github.com/admibot/admibot-go/internal/metrics"
	"github.com/admibot/admibot-go/internal/objstore"
	"github.com/admibot/admibot-go/internal/snapshot"
	"github.com/admibot/admibot-go/internal/storage"
	"github.com/admibot/admibot-go/internal/warmup"
)

// CLI flags
var (
	resetFlag       = flag.Bool("reset", false, "Delete all cached catalog data before warmup")
	collectionsFlag = flag.String("collections", strings.Join(warmup.DefaultCollections, ","), "Comma-separated list of collections to warm (faculties,programs,curriculum,documents)")
	publishFlag     = flag.Bool("publish", false, "Upload a database snapshot to object storage after a successful warmup")
	timeoutFlag     = flag.Duration("timeout", 30*time.Minute, "Overall warmup deadline")
)

func main() {
	flag.Parse()

	// Feature credentials are not required just to warm the cache
	cfg, err := config.LoadForMode(config.WarmupMode)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting warmup tool")

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.WithError(err).Error("Failed to create data directory")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	// Connect to database with configured TTL
	db, err := storage.New(ctx, cfg.SQLitePath(), cfg.CacheTTL)
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).
		WithField("cache_ttl", cfg.CacheTTL).
		Info("Database connected")

	collections := warmup.ParseCollections(*collectionsFlag)
	if len(collections) == 0 {
		log.Info("No collections specified, exiting")
		fmt.Println("⏭️  No collections to warm, skipping")
		return
	}
	log.WithField("collections", collections).Info("Collections to warm")

	client, err := academic.NewClient(academic.ClientConfig{
		BaseURLs:          cfg.AcademicBaseURLs,
		Timeout:           cfg.AcademicTimeout,
		MaxRetries:        cfg.AcademicMaxRetries,
		InitialRetryDelay: config.AcademicRetryInitial,
		MaxRetryDelay:     config.AcademicRetryMax,
		RequestsPerMinute: cfg.AcademicRequestsPerMinute,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create academic API client")
		os.Exit(1)
	}

	// Object storage, only needed for the documents collection and -publish
	var (
		objClient *objstore.Client
		snapMgr   *snapshot.Manager
	)
	if cfg.R2Enabled {
		objClient, err = objstore.New(ctx, objstore.Config{
			Endpoint:    fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID),
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretAccessKey,
			Bucket:      cfg.R2BucketName,
		})
		if err != nil {
			log.WithError(err).Error("Failed to create object storage client")
			os.Exit(1)
		}
		snapMgr = snapshot.New(objClient, snapshot.Config{
			SnapshotKey: cfg.R2SnapshotKey,
			LockKey:     cfg.R2LockKey,
			LockTTL:     cfg.R2LockTTL,
			TempDir:     cfg.DataDir,
		}, log)
	}

	ingestor, sources := buildIngestor(ctx, cfg, db, objClient, log)

	startTime := time.Now()
	stats, err := warmup.Run(ctx, db, client, log, warmup.Options{
		Collections: collections,
		Reset:       *resetFlag,
		Ingestor:    ingestor,
		Sources:     sources,
	})
	duration := time.Since(startTime)

	if err != nil {
		log.WithError(err).WithField("duration", duration).Error("Warmup completed with errors")
		_, _ = fmt.Fprintf(os.Stderr, "\n❌ Warmup completed with errors: %d faculties, %d programs, %d courses, %d documents cached\n",
			stats.Faculties.Load(), stats.Programs.Load(), stats.Courses.Load(), stats.Documents.Load())
		_, _ = fmt.Fprintf(os.Stderr, "Total time: %v\n", duration.Round(time.Second))
		os.Exit(1)
	}

	log.WithField("duration", duration).Info("Warmup complete")
	fmt.Printf("\n✅ Warmup complete: %d faculties, %d programs, %d courses, %d documents cached\n",
		stats.Faculties.Load(), stats.Programs.Load(), stats.Courses.Load(), stats.Documents.Load())
	fmt.Printf("Total time: %v\n", duration.Round(time.Second))

	if *publishFlag {
		if snapMgr == nil {
			log.Error("Cannot publish a snapshot without R2 configured")
			os.Exit(1)
		}
		etag, err := snapMgr.UploadSnapshot(ctx, db)
		if err != nil {
			log.WithError(err).Error("Failed to upload database snapshot")
			os.Exit(1)
		}
		log.WithField("etag", etag).Info("Database snapshot published")
		fmt.Printf("✓ Snapshot published (etag %s)\n", etag)
	}
}

// buildIngestor assembles the document ingestion pipeline when the
// documents collection can actually run. Warmup proceeds without it;
// warming then covers the catalog collections only.
func buildIngestor(ctx context.Context, cfg *config.Config, db *storage.DB, objClient *objstore.Client, log *logger.Logger) (*ingest.Pipeline, []ingest.Source) {
	if objClient == nil || cfg.GeminiAPIKey == "" {
		log.Info("Object storage or Gemini key missing, documents collection will be skipped")
		return nil, nil
	}

	ocr, err := ingest.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.IngestOCRModel)
	if err != nil {
		log.WithError(err).Warn("Failed to create OCR extractor, documents collection will be skipped")
		return nil, nil
	}

	fetcher := ingest.NewFetcher(cfg.IngestTimeout, cfg.IngestRetries)
	m := metrics.New(prometheus.NewRegistry())
	ingestor, err := ingest.New(fetcher, ocr, db, docindex.New(log), objClient, m, log)
	if err != nil {
		log.WithError(err).Warn("Failed to create ingest pipeline, documents collection will be skipped")
		return nil, nil
	}
	return ingestor, ingest.Sources(cfg.R2DocsPrefix)
}

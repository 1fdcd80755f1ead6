// Package main provides the admissions chatbot server entry point.
package main

import (
	"context"
	"time"

	"github.com/admibot/admibot-go/internal/academic"
	"github.com/admibot/admibot-go/internal/config"
	"github.com/admibot/admibot-go/internal/docindex"
	"github.com/admibot/admibot-go/internal/ingest"
	"github.com/admibot/admibot-go/internal/logger"
	"github.com/admibot/admibot-go/internal/maintenance"
	"github.com/admibot/admibot-go/internal/metrics"
	"github.com/admibot/admibot-go/internal/snapshot"
	"github.com/admibot/admibot-go/internal/storage"
	"github.com/admibot/admibot-go/internal/warmup"
)

// ingestRefreshInterval is how often the catalog refresh leader also
// re-runs document ingestion. The pipeline skips unchanged sources by
// content hash, so a daily pass is cheap.
const ingestRefreshInterval = 24 * time.Hour

// isMaintenanceDue reports whether a job whose last run finished at
// lastUnix should run again. A non-positive interval disables the job; a
// missing timestamp means it never ran.
func isMaintenanceDue(lastUnix int64, interval time.Duration, now time.Time) bool {
	if interval <= 0 {
		return false
	}
	if lastUnix <= 0 {
		return true
	}
	return now.Sub(time.Unix(lastUnix, 0)) >= interval
}

// runCacheCleanup periodically removes expired cache entries and old
// transcripts from the database.
func runCacheCleanup(ctx context.Context, db *storage.DB, cfg *config.Config, schedule *maintenance.ScheduleStore, m *metrics.Metrics, log *logger.Logger) {
	if cfg.DataCleanupInterval <= 0 {
		log.Info("Cache cleanup disabled")
		return
	}

	// Run initial cleanup after a delay to let the server stabilize
	select {
	case <-ctx.Done():
		return
	case <-time.After(config.CacheCleanupInitialDelay):
		performCacheCleanup(ctx, db, cfg, schedule, m, log)
	}

	ticker := time.NewTicker(cfg.DataCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			performCacheCleanup(ctx, db, cfg, schedule, m, log)
		}
	}
}

// performCacheCleanup executes one cleanup pass.
func performCacheCleanup(ctx context.Context, db *storage.DB, cfg *config.Config, schedule *maintenance.ScheduleStore, m *metrics.Metrics, log *logger.Logger) {
	startTime := time.Now()
	log.Info("Starting cache cleanup...")

	var totalDeleted int64

	if deleted, err := db.DeleteExpiredFaculties(ctx, cfg.CacheTTL); err != nil {
		log.WithError(err).Error("Failed to clean up expired faculties")
	} else {
		totalDeleted += deleted
		count, _ := db.CountFaculties(ctx)
		log.WithFields(map[string]any{
			"deleted":   deleted,
			"remaining": count,
		}).Debug("Faculties cleanup complete")
	}

	if deleted, err := db.DeleteExpiredPrograms(ctx, cfg.CacheTTL); err != nil {
		log.WithError(err).Error("Failed to clean up expired programs")
	} else {
		totalDeleted += deleted
		count, _ := db.CountPrograms(ctx)
		log.WithFields(map[string]any{
			"deleted":   deleted,
			"remaining": count,
		}).Debug("Programs cleanup complete")
	}

	if deleted, err := db.DeleteExpiredCurriculum(ctx, cfg.CacheTTL); err != nil {
		log.WithError(err).Error("Failed to clean up expired curriculum")
	} else {
		totalDeleted += deleted
		count, _ := db.CountCurriculum(ctx)
		log.WithFields(map[string]any{
			"deleted":   deleted,
			"remaining": count,
		}).Debug("Curriculum cleanup complete")
	}

	if pruned, err := db.PruneChatHistory(ctx, cfg.ChatRetention); err != nil {
		log.WithError(err).Error("Failed to prune chat transcripts")
	} else {
		totalDeleted += pruned
		count, _ := db.CountChatMessages(ctx)
		log.WithFields(map[string]any{
			"deleted":   pruned,
			"remaining": count,
		}).Debug("Transcript pruning complete")
	}

	// Reclaim file space after the deletes
	if _, err := db.Writer().ExecContext(ctx, "VACUUM"); err != nil {
		log.WithError(err).Warn("Failed to vacuum database")
	} else {
		log.Debug("Database vacuumed successfully")
	}

	m.RecordJob("cache_cleanup", time.Since(startTime).Seconds())

	if schedule != nil {
		if err := schedule.Update(ctx, func(s *maintenance.State) {
			s.LastCleanup = time.Now().Unix()
		}); err != nil {
			log.WithError(err).Warn("Failed to record cleanup in the shared schedule")
		}
	}

	log.WithField("total_deleted", totalDeleted).Info("Cache cleanup complete")
}

// runCatalogRefresh periodically re-warms the academic catalog so cached
// rows never age out under steady traffic. With object storage configured
// the run is coordinated across replicas: only the leader refreshes, and
// it publishes a database snapshot for the followers afterwards.
func runCatalogRefresh(ctx context.Context, db *storage.DB, client *academic.Client, cfg *config.Config, snapMgr *snapshot.Manager, schedule *maintenance.ScheduleStore, ingestor *ingest.Pipeline, sources []ingest.Source, m *metrics.Metrics, log *logger.Logger) {
	if cfg.DataRefreshInterval <= 0 {
		log.Info("Catalog refresh disabled")
		return
	}

	ticker := time.NewTicker(cfg.DataRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			performCatalogRefresh(ctx, db, client, cfg, snapMgr, schedule, ingestor, sources, m, log)
		}
	}
}

// performCatalogRefresh executes one coordinated refresh pass.
func performCatalogRefresh(ctx context.Context, db *storage.DB, client *academic.Client, cfg *config.Config, snapMgr *snapshot.Manager, schedule *maintenance.ScheduleStore, ingestor *ingest.Pipeline, sources []ingest.Source, m *metrics.Metrics, log *logger.Logger) {
	now := time.Now()

	// Another replica may have refreshed already; the shared schedule
	// says when the catalog was last warmed.
	if schedule != nil {
		state, _, _, err := schedule.Load(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to load the shared schedule, refreshing anyway")
		} else if !isMaintenanceDue(state.LastRefresh, cfg.DataRefreshInterval, now) {
			log.WithField("last_refresh", time.Unix(state.LastRefresh, 0)).
				Debug("Catalog refresh not due, skipping")
			return
		}
	}

	if snapMgr != nil {
		acquired, err := snapMgr.AcquireLeaderLock(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to acquire refresh leader lock")
			return
		}
		if !acquired {
			log.Debug("Another replica leads this refresh, skipping")
			return
		}
		defer func() {
			if err := snapMgr.ReleaseLeaderLock(ctx); err != nil {
				log.WithError(err).Warn("Failed to release refresh leader lock")
			}
		}()
	}

	startTime := time.Now()
	log.Info("Starting catalog refresh...")

	stats, err := warmup.Run(ctx, db, client, log, warmup.Options{
		Collections: []string{
			warmup.CollectionFaculties,
			warmup.CollectionPrograms,
			warmup.CollectionCurriculum,
		},
		Metrics: m,
	})
	if err != nil {
		log.WithError(err).Warn("Catalog refresh finished with errors")
	} else {
		log.WithFields(map[string]any{
			"faculties":  stats.Faculties.Load(),
			"programs":   stats.Programs.Load(),
			"curriculum": stats.Courses.Load(),
		}).Info("Catalog refresh complete")
	}
	m.RecordJob("catalog_refresh", time.Since(startTime).Seconds())

	ingested := performScheduledIngest(ctx, schedule, ingestor, sources, m, log, now)
	publishSnapshot(ctx, db, snapMgr, m, log)

	if schedule != nil {
		if err := schedule.Update(ctx, func(s *maintenance.State) {
			s.LastRefresh = now.Unix()
			if snapMgr != nil {
				s.LastSnapshot = now.Unix()
			}
			if ingested {
				s.LastIngest = now.Unix()
			}
		}); err != nil {
			log.WithError(err).Warn("Failed to record refresh in the shared schedule")
		}
	}
}

// performScheduledIngest re-runs document ingestion when the shared
// schedule says the last pass is older than ingestRefreshInterval.
// Reports whether a pass ran.
func performScheduledIngest(ctx context.Context, schedule *maintenance.ScheduleStore, ingestor *ingest.Pipeline, sources []ingest.Source, m *metrics.Metrics, log *logger.Logger, now time.Time) bool {
	if ingestor == nil || len(sources) == 0 {
		return false
	}
	if schedule != nil {
		state, _, _, err := schedule.Load(ctx)
		if err == nil && !isMaintenanceDue(state.LastIngest, ingestRefreshInterval, now) {
			return false
		}
	}

	startTime := time.Now()
	log.Info("Starting scheduled document ingestion...")

	report, err := ingestor.Run(ctx, sources)
	m.RecordJob("ingest", time.Since(startTime).Seconds())
	if err != nil {
		log.WithError(err).Warn("Scheduled document ingestion aborted")
		return false
	}
	log.WithFields(map[string]any{
		"ingested":  report.Ingested,
		"unchanged": report.Unchanged,
		"failed":    report.Failed,
	}).Info("Scheduled document ingestion complete")
	return true
}

// publishSnapshot uploads the refreshed database for follower replicas.
func publishSnapshot(ctx context.Context, db *storage.DB, snapMgr *snapshot.Manager, m *metrics.Metrics, log *logger.Logger) {
	if snapMgr == nil {
		return
	}

	startTime := time.Now()
	etag, err := snapMgr.UploadSnapshot(ctx, db)
	m.RecordJob("snapshot", time.Since(startTime).Seconds())
	if err != nil {
		log.WithError(err).Error("Failed to upload database snapshot")
		return
	}
	log.WithField("etag", etag).Info("Database snapshot published")
}

// runMetricsUpdater periodically updates the cache size gauges.
func runMetricsUpdater(ctx context.Context, db *storage.DB, index *docindex.Index, cfg *config.Config, m *metrics.Metrics, log *logger.Logger) {
	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	// Run initial update immediately
	performMetricsUpdate(ctx, db, index, cfg, m, log)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			performMetricsUpdate(ctx, db, index, cfg, m, log)
		}
	}
}

// performMetricsUpdate refreshes the cache size gauges.
func performMetricsUpdate(ctx context.Context, db *storage.DB, index *docindex.Index, cfg *config.Config, m *metrics.Metrics, log *logger.Logger) {
	if count, err := db.CountFaculties(ctx); err == nil {
		m.SetCacheSize("faculties", int64(count))
	} else {
		log.WithError(err).Debug("Failed to count faculties for metrics")
	}
	if count, err := db.CountPrograms(ctx); err == nil {
		m.SetCacheSize("programs", int64(count))
	} else {
		log.WithError(err).Debug("Failed to count programs for metrics")
	}
	if count, err := db.CountCurriculum(ctx); err == nil {
		m.SetCacheSize("curriculum", int64(count))
	} else {
		log.WithError(err).Debug("Failed to count curriculum for metrics")
	}
	if count, err := db.CountDocuments(ctx); err == nil {
		m.SetCacheSize("documents", int64(count))
	} else {
		log.WithError(err).Debug("Failed to count documents for metrics")
	}
	if count, err := db.CountChatMessages(ctx); err == nil {
		m.SetCacheSize("chat_messages", int64(count))
	} else {
		log.WithError(err).Debug("Failed to count chat messages for metrics")
	}

	// Rows older than two refresh cycles mean the refresh job is not
	// keeping up; they hard-expire unless a later run catches them.
	if cfg.DataRefreshInterval > 0 {
		staleAfter := 2 * cfg.DataRefreshInterval
		if count, err := db.CountExpiringPrograms(ctx, staleAfter); err == nil {
			m.SetStaleRows("programs", count)
		}
		if count, err := db.CountExpiringCurriculum(ctx, staleAfter); err == nil {
			m.SetStaleRows("curriculum", count)
		}
	}

	if index != nil && index.IsEnabled() {
		m.SetIndexSize("bm25", index.Count())
	}
}

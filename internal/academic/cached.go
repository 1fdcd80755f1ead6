package academic

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/admibot/admibot-go/internal/logger"
	"github.com/admibot/admibot-go/internal/metrics"
	"github.com/admibot/admibot-go/internal/storage"
)

// CachedProvider serves catalog queries from the SQLite cache and falls
// back to the upstream client on a miss, persisting what it fetched.
// Concurrent misses for the same collection collapse into one upstream
// request via singleflight.
type CachedProvider struct {
	db       storage.CatalogRepository
	upstream Provider
	group    singleflight.Group
	lg       *logger.Logger
	metrics  *metrics.Metrics
}

var _ Provider = (*CachedProvider)(nil)

// NewCachedProvider wraps upstream with the catalog cache backed by db.
func NewCachedProvider(db storage.CatalogRepository, upstream Provider, lg *logger.Logger, m *metrics.Metrics) *CachedProvider {
	if lg == nil {
		lg = logger.New("info")
	}
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	return &CachedProvider{
		db:       db,
		upstream: upstream,
		lg:       lg.WithModule("academic"),
		metrics:  m,
	}
}

// ListFaculties answers from cache when possible. On a miss the full
// faculty collection is fetched and cached, then the filter is re-applied.
func (p *CachedProvider) ListFaculties(ctx context.Context, f Filter) ([]storage.Faculty, error) {
	faculties, err := p.db.SearchFaculties(ctx, f.Name)
	if err != nil {
		p.lg.WithError(err).Warnf("faculty cache read failed, using upstream")
	} else if len(faculties) > 0 {
		p.metrics.RecordCacheHit("faculties")
		return capResults(faculties, f.Limit), nil
	}

	p.metrics.RecordCacheMiss("faculties")
	if err := p.refresh(ctx, "faculties", func() error {
		fetched, err := p.upstream.ListFaculties(ctx, Filter{})
		if err != nil {
			return err
		}
		batch := make([]*storage.Faculty, len(fetched))
		for i := range fetched {
			batch[i] = &fetched[i]
		}
		return p.db.SaveFacultiesBatch(ctx, batch)
	}); err != nil {
		return nil, err
	}

	faculties, err = p.db.SearchFaculties(ctx, f.Name)
	if err != nil {
		return nil, fmt.Errorf("faculty cache read after refresh: %w", err)
	}
	return capResults(faculties, f.Limit), nil
}

// ListPrograms answers from cache when possible. On a miss the full
// program collection is fetched and cached, then the filter is re-applied.
func (p *CachedProvider) ListPrograms(ctx context.Context, f Filter) ([]storage.Program, error) {
	programs, err := p.db.SearchPrograms(ctx, f.Name, f.Faculty)
	if err != nil {
		p.lg.WithError(err).Warnf("program cache read failed, using upstream")
	} else if len(programs) > 0 {
		p.metrics.RecordCacheHit("programs")
		return capResults(programs, f.Limit), nil
	}

	p.metrics.RecordCacheMiss("programs")
	if err := p.refresh(ctx, "programs", func() error {
		fetched, err := p.upstream.ListPrograms(ctx, Filter{})
		if err != nil {
			return err
		}
		batch := make([]*storage.Program, len(fetched))
		for i := range fetched {
			batch[i] = &fetched[i]
		}
		return p.db.SaveProgramsBatch(ctx, batch)
	}); err != nil {
		return nil, err
	}

	programs, err = p.db.SearchPrograms(ctx, f.Name, f.Faculty)
	if err != nil {
		return nil, fmt.Errorf("program cache read after refresh: %w", err)
	}
	return capResults(programs, f.Limit), nil
}

// ListCurriculum answers from cache when possible. A miss refreshes the
// filter's program when one is present; course-only queries without a
// program go straight to the upstream search.
func (p *CachedProvider) ListCurriculum(ctx context.Context, f Filter) ([]storage.CourseEntry, error) {
	entries, err := p.db.SearchCurriculum(ctx, f.Program, f.Semester, f.Course, f.Track)
	if err != nil {
		p.lg.WithError(err).Warnf("curriculum cache read failed, using upstream")
	} else if len(entries) > 0 {
		p.metrics.RecordCacheHit("curriculum")
		return capResults(entries, f.Limit), nil
	}

	p.metrics.RecordCacheMiss("curriculum")
	if f.Program == "" {
		fetched, err := p.upstream.ListCurriculum(ctx, f)
		if err != nil {
			return nil, err
		}
		p.saveCurriculum(ctx, fetched)
		return capResults(fetched, f.Limit), nil
	}

	if err := p.refresh(ctx, "curriculum:"+f.Program, func() error {
		fetched, err := p.upstream.ListCurriculum(ctx, Filter{Program: f.Program})
		if err != nil {
			return err
		}
		batch := make([]*storage.CourseEntry, len(fetched))
		for i := range fetched {
			batch[i] = &fetched[i]
		}
		return p.db.SaveCurriculumBatch(ctx, batch)
	}); err != nil {
		return nil, err
	}

	entries, err = p.db.SearchCurriculum(ctx, f.Program, f.Semester, f.Course, f.Track)
	if err != nil {
		return nil, fmt.Errorf("curriculum cache read after refresh: %w", err)
	}
	return capResults(entries, f.Limit), nil
}

// refresh runs fn once per key regardless of how many goroutines miss at
// the same time. Keys are "collection" or "collection:qualifier".
func (p *CachedProvider) refresh(ctx context.Context, key string, fn func() error) error {
	_, err, shared := p.group.Do(key, func() (interface{}, error) {
		// Check context before hitting the upstream
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return nil, fn()
	})
	if shared {
		collection, _, _ := strings.Cut(key, ":")
		p.metrics.RecordSingleflightDedup(collection)
	}
	return err
}

// saveCurriculum caches rows from an upstream search, logging instead of
// failing the request when the write does not stick.
func (p *CachedProvider) saveCurriculum(ctx context.Context, entries []storage.CourseEntry) {
	if len(entries) == 0 {
		return
	}
	batch := make([]*storage.CourseEntry, len(entries))
	for i := range entries {
		batch[i] = &entries[i]
	}
	if err := p.db.SaveCurriculumBatch(ctx, batch); err != nil {
		p.lg.WithError(err).Warnf("failed to cache curriculum search results")
	}
}

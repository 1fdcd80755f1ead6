// Package academic provides access to the university's academic-information
// API: faculties, programs and per-program curricula. The Client speaks JSON
// to the upstream API; CachedProvider layers the SQLite catalog cache and
// request deduplication on top. Query planner calls execute against the
// Provider interface, so the engine never cares which layer answered.
package academic

import (
	"context"
	"strconv"

	"github.com/admibot/admibot-go/internal/planner"
	"github.com/admibot/admibot-go/internal/storage"
)

// Provider answers catalog queries. Implementations must be safe for
// concurrent use; parallel plans fan out calls from multiple goroutines.
type Provider interface {
	ListFaculties(ctx context.Context, f Filter) ([]storage.Faculty, error)
	ListPrograms(ctx context.Context, f Filter) ([]storage.Program, error)
	ListCurriculum(ctx context.Context, f Filter) ([]storage.CourseEntry, error)
}

// Filter narrows a catalog query. Zero values mean "no filter"; which
// fields apply depends on the endpoint.
type Filter struct {
	Name     string // name fragment, accent-insensitive
	Faculty  string // canonical faculty key
	Program  string // canonical program name
	Course   string // course name fragment
	Track    string // schedule track
	Semester int    // 1-10, 0 = any
	Limit    int    // max results, 0 = no cap
}

// FilterFromParams builds a Filter from query plan call parameters.
// Unknown keys are ignored; a malformed semester is treated as unset.
func FilterFromParams(params map[string]string) Filter {
	var f Filter
	f.Name = params[planner.ParamName]
	f.Faculty = params[planner.ParamFaculty]
	f.Program = params[planner.ParamProgram]
	f.Course = params[planner.ParamCourse]
	f.Track = params[planner.ParamTrack]
	if raw, ok := params[planner.ParamSemester]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			f.Semester = n
		}
	}
	return f
}

// capResults applies the filter's limit to a result slice.
func capResults[T any](items []T, limit int) []T {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[:limit]
}

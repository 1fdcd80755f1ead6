// Package planner turns extracted entities into a small, ordered set of
// data-fetch calls against the academic provider. Plans are built fresh
// per turn by fixed rules; an optional LLM pass may drop or reorder calls
// but never invent new ones.
package planner

// Endpoint identifies one of the academic provider's collections.
type Endpoint string

const (
	EndpointFaculties  Endpoint = "faculties"
	EndpointPrograms   Endpoint = "programs"
	EndpointCurriculum Endpoint = "curriculum"
)

// IsValid reports whether e is one of the known endpoints.
func (e Endpoint) IsValid() bool {
	switch e {
	case EndpointFaculties, EndpointPrograms, EndpointCurriculum:
		return true
	}
	return false
}

// Parameter keys used in APICall.Params. The academic provider interprets
// them as field-level filters.
const (
	ParamName     = "name"
	ParamFaculty  = "faculty"
	ParamProgram  = "program"
	ParamSemester = "semester"
	ParamCourse   = "course"
	ParamTrack    = "track"
)

// APICall is one planned fetch.
type APICall struct {
	Endpoint Endpoint
	Params   map[string]string
	Priority int
}

// Strategy says how the engine should execute a plan's calls.
type Strategy string

const (
	StrategySequential Strategy = "SEQUENTIAL"
	StrategyParallel   Strategy = "PARALLEL"
)

// QueryPlan is an ordered, deduplicated call list. Never mutated after
// construction.
type QueryPlan struct {
	Calls     []APICall
	Strategy  Strategy
	ResultCap int
}

// IsEmpty reports whether the plan carries no calls.
func (p *QueryPlan) IsEmpty() bool {
	return p == nil || len(p.Calls) == 0
}

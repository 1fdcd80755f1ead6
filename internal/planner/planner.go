package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/admibot/admibot-go/internal/genai"
	"github.com/admibot/admibot-go/internal/logger"
	"github.com/admibot/admibot-go/internal/nlu"
	"github.com/admibot/admibot-go/internal/stringutil"
	"github.com/admibot/admibot-go/internal/textnorm"
)

const (
	// DefaultMaxCalls bounds how many fetches one turn may trigger.
	DefaultMaxCalls = 3

	// DefaultResultCap bounds how many rows each fetch returns.
	DefaultResultCap = 3

	// programPrefixLen shortens program names for prefix matching so small
	// wording differences against the catalog still hit.
	programPrefixLen = 6

	defaultAITimeout = 2 * time.Second
)

// Config tunes plan construction.
type Config struct {
	// MaxCalls truncates the plan, non-positive selects the default.
	MaxCalls int

	// ResultCap is the per-call row limit, non-positive selects the default.
	ResultCap int

	// AITimeout bounds the optional LLM refinement pass.
	AITimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxCalls <= 0 {
		c.MaxCalls = DefaultMaxCalls
	}
	if c.ResultCap <= 0 {
		c.ResultCap = DefaultResultCap
	}
	if c.AITimeout <= 0 {
		c.AITimeout = defaultAITimeout
	}
	return c
}

// Planner builds query plans. Safe for concurrent use.
type Planner struct {
	cfg Config
	ai  genai.PlanOptimizer
	lg  *logger.Logger
}

// New builds a Planner. ai may be nil to disable the refinement pass.
func New(cfg Config, ai genai.PlanOptimizer, lg *logger.Logger) *Planner {
	if lg == nil {
		lg = logger.New("info")
	}
	return &Planner{
		cfg: cfg.withDefaults(),
		ai:  ai,
		lg:  lg.WithModule("planner"),
	}
}

// Plan builds the plan for one enriched turn. The rule plan always exists;
// the LLM pass only runs when there is more than one call to arbitrate and
// any failure falls back to the rule plan silently.
func (p *Planner) Plan(ctx context.Context, entities *nlu.ExtractedEntities) *QueryPlan {
	plan := p.rulePlan(entities)

	if p.ai != nil && p.ai.IsEnabled() && len(plan.Calls) > 1 {
		if refined, ok := p.refineWithAI(ctx, entities, plan); ok {
			return refined
		}
	}

	return plan
}

// rulePlan applies the planning rules in fixed order, each appending at
// most one call.
func (p *Planner) rulePlan(entities *nlu.ExtractedEntities) *QueryPlan {
	if entities == nil {
		return &QueryPlan{Strategy: StrategySequential}
	}
	if entities.HasIntent(nlu.IntentGreeting) || entities.HasIntent(nlu.IntentFarewell) {
		return &QueryPlan{Strategy: StrategySequential}
	}

	var calls []APICall

	faculty := first(entities.Faculties)
	program := first(entities.Programs)

	if entities.HasIntent(nlu.IntentListFaculties) || entities.HasIntent(nlu.IntentFacultyInfo) || faculty != "" {
		params := map[string]string{}
		if faculty != "" {
			params[ParamName] = faculty
		}
		calls = append(calls, APICall{Endpoint: EndpointFaculties, Params: params, Priority: len(calls) + 1})
	}

	if entities.HasIntent(nlu.IntentListPrograms) || entities.HasIntent(nlu.IntentProgramInfo) || program != "" {
		params := map[string]string{}
		if program != "" {
			params[ParamName] = programPrefix(program)
		}
		if faculty != "" {
			params[ParamFaculty] = faculty
		}
		calls = append(calls, APICall{Endpoint: EndpointPrograms, Params: params, Priority: len(calls) + 1})
	}

	if wantsCurriculum(entities) {
		params := map[string]string{}
		if program != "" {
			params[ParamProgram] = program
		}
		if semester := first(entities.Semesters); semester != "" {
			params[ParamSemester] = semester
		}
		if course := first(entities.Courses); course != "" {
			params[ParamCourse] = course
		}
		if track := first(entities.ScheduleTracks); track != "" {
			params[ParamTrack] = track
		}
		calls = append(calls, APICall{Endpoint: EndpointCurriculum, Params: params, Priority: len(calls) + 1})
	}

	if len(calls) == 0 {
		if token := stringutil.FirstToken(textnorm.Normalize(entities.RawQuery)); token != "" {
			calls = append(calls, APICall{
				Endpoint: EndpointPrograms,
				Params:   map[string]string{ParamName: token},
				Priority: 1,
			})
		}
	}

	sort.SliceStable(calls, func(i, j int) bool { return calls[i].Priority < calls[j].Priority })
	calls = calls[:min(len(calls), p.cfg.MaxCalls)]

	plan := &QueryPlan{Calls: calls, Strategy: strategyFor(len(calls))}
	if len(calls) > 0 {
		plan.ResultCap = p.cfg.ResultCap
	}
	return plan
}

func wantsCurriculum(entities *nlu.ExtractedEntities) bool {
	if entities.HasIntent(nlu.IntentCourseInfo) || entities.HasIntent(nlu.IntentCurriculumInfo) ||
		entities.HasIntent(nlu.IntentListCourses) || entities.HasIntent(nlu.IntentCredits) {
		return true
	}
	if len(entities.Courses) > 0 {
		return true
	}
	return len(entities.Programs) > 0 && len(entities.Semesters) > 0
}

// refineWithAI lets the LLM drop or reorder the drafted calls. The
// suggestion is validated strictly; anything off goes back to the draft.
func (p *Planner) refineWithAI(ctx context.Context, entities *nlu.ExtractedEntities, draft *QueryPlan) (*QueryPlan, bool) {
	aiCtx, cancel := context.WithTimeout(ctx, p.cfg.AITimeout)
	defer cancel()

	suggestion, err := p.ai.OptimizePlan(aiCtx, &genai.PlanRequest{
		Utterance: entities.RawQuery,
		Calls:     renderCalls(draft.Calls),
		Strategy:  string(draft.Strategy),
	})
	if err != nil {
		p.lg.Warn("plan optimization failed, keeping rule plan",
			"provider", p.ai.Provider().String(),
			"error", err,
		)
		return nil, false
	}

	refined, err := p.applySuggestion(draft, suggestion)
	if err != nil {
		p.lg.Warn("plan suggestion rejected, keeping rule plan", "error", err)
		return nil, false
	}
	return refined, true
}

// applySuggestion maps suggested call strings back onto drafted calls by
// endpoint. Unknown endpoints, duplicates, and empty suggestions are
// validation failures. Strategy is recomputed from the final call count
// rather than trusted, and the result cap is clamped to the configured
// maximum.
func (p *Planner) applySuggestion(draft *QueryPlan, suggestion *genai.PlanSuggestion) (*QueryPlan, error) {
	if suggestion == nil || len(suggestion.Calls) == 0 {
		return nil, fmt.Errorf("empty suggestion")
	}

	byEndpoint := make(map[Endpoint]APICall, len(draft.Calls))
	for _, call := range draft.Calls {
		byEndpoint[call.Endpoint] = call
	}

	seen := make(map[Endpoint]bool, len(suggestion.Calls))
	calls := make([]APICall, 0, len(suggestion.Calls))
	for _, rendered := range suggestion.Calls {
		endpoint := parseEndpoint(rendered)
		if !endpoint.IsValid() {
			return nil, fmt.Errorf("unknown endpoint %q", rendered)
		}
		call, ok := byEndpoint[endpoint]
		if !ok {
			return nil, fmt.Errorf("endpoint %q not in drafted plan", endpoint)
		}
		if seen[endpoint] {
			return nil, fmt.Errorf("duplicate endpoint %q", endpoint)
		}
		seen[endpoint] = true
		call.Priority = len(calls) + 1
		calls = append(calls, call)
	}

	calls = calls[:min(len(calls), p.cfg.MaxCalls)]

	resultCap := suggestion.ResultCap
	if resultCap <= 0 || resultCap > p.cfg.ResultCap {
		resultCap = p.cfg.ResultCap
	}

	return &QueryPlan{Calls: calls, Strategy: strategyFor(len(calls)), ResultCap: resultCap}, nil
}

// renderCalls flattens calls to "endpoint?k=v&k=v" strings with sorted
// keys so prompts are deterministic.
func renderCalls(calls []APICall) []string {
	rendered := make([]string, 0, len(calls))
	for _, call := range calls {
		rendered = append(rendered, renderCall(call))
	}
	return rendered
}

func renderCall(call APICall) string {
	if len(call.Params) == 0 {
		return string(call.Endpoint)
	}
	keys := make([]string, 0, len(call.Params))
	for k := range call.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(call.Endpoint))
	for i, k := range keys {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(call.Params[k])
	}
	return b.String()
}

// parseEndpoint recovers the endpoint from a rendered call, tolerating
// the LLM echoing the query string back.
func parseEndpoint(rendered string) Endpoint {
	s := strings.TrimSpace(strings.ToLower(rendered))
	if i := strings.IndexAny(s, "?:/ "); i >= 0 {
		s = s[:i]
	}
	return Endpoint(s)
}

// programPrefix shortens a canonical program name for tolerant matching.
func programPrefix(program string) string {
	runes := []rune(program)
	if len(runes) <= programPrefixLen {
		return program
	}
	return strings.TrimSpace(string(runes[:programPrefixLen]))
}

func strategyFor(callCount int) Strategy {
	if callCount > 1 {
		return StrategyParallel
	}
	return StrategySequential
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

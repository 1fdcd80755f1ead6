package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/admibot/admibot-go/internal/academic"
	"github.com/admibot/admibot-go/internal/planner"
	"github.com/admibot/admibot-go/internal/storage"
	"golang.org/x/sync/errgroup"
)

// fetched is what a plan execution resolved, merged across calls in call
// order.
type fetched struct {
	faculties []storage.Faculty
	programs  []storage.Program
	courses   []storage.CourseEntry
}

func (f *fetched) isEmpty() bool {
	return f == nil || (len(f.faculties) == 0 && len(f.programs) == 0 && len(f.courses) == 0)
}

// callResult is one call's outcome; exactly one slice or err is set.
type callResult struct {
	faculties []storage.Faculty
	programs  []storage.Program
	courses   []storage.CourseEntry
	err       error
}

// executePlan runs the plan's calls against the catalog provider and
// keeps whatever resolved. A failed call is logged and skipped; the
// returned error is non-nil only when the plan had calls and every one
// of them failed.
func (e *Engine) executePlan(ctx context.Context, plan *planner.QueryPlan) (*fetched, error) {
	out := &fetched{}
	if plan.IsEmpty() {
		return out, nil
	}
	e.metrics.RecordPlanExecution(string(plan.Strategy))

	results := make([]callResult, len(plan.Calls))
	if plan.Strategy == planner.StrategyParallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, call := range plan.Calls {
			g.Go(func() error {
				results[i] = e.runCall(gctx, call, plan.ResultCap)
				return nil
			})
		}
		// Outcomes land in results; the group never carries an error.
		_ = g.Wait()
	} else {
		for i, call := range plan.Calls {
			results[i] = e.runCall(ctx, call, plan.ResultCap)
		}
	}

	var firstErr error
	failed := 0
	for i, res := range results {
		if res.err != nil {
			failed++
			if firstErr == nil {
				firstErr = res.err
			}
			e.logger.WithError(res.err).WithField("endpoint", string(plan.Calls[i].Endpoint)).Warn("Plan call failed")
			continue
		}
		out.faculties = append(out.faculties, res.faculties...)
		out.programs = append(out.programs, res.programs...)
		out.courses = append(out.courses, res.courses...)
	}

	if failed == len(plan.Calls) {
		return out, fmt.Errorf("plan execution failed: %w", firstErr)
	}
	return out, nil
}

// runCall executes one planned fetch. The plan's result cap becomes the
// filter limit unless the call carries its own.
func (e *Engine) runCall(ctx context.Context, call planner.APICall, resultCap int) callResult {
	start := time.Now()
	filter := academic.FilterFromParams(call.Params)
	if filter.Limit == 0 {
		filter.Limit = resultCap
	}

	var res callResult
	switch call.Endpoint {
	case planner.EndpointFaculties:
		res.faculties, res.err = e.catalog.ListFaculties(ctx, filter)
	case planner.EndpointPrograms:
		res.programs, res.err = e.catalog.ListPrograms(ctx, filter)
	case planner.EndpointCurriculum:
		res.courses, res.err = e.catalog.ListCurriculum(ctx, filter)
	default:
		res.err = fmt.Errorf("unknown plan endpoint %q", call.Endpoint)
	}

	status := "success"
	if res.err != nil {
		status = "error"
	}
	e.metrics.RecordPlanCall(string(call.Endpoint), status, time.Since(start).Seconds())
	return res
}

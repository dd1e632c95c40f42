package services

import (
	"context"
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/platform/obs"
	"departure-optimizer-service/internal/ports"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Tunables of the departure time search. Zero values take the defaults.
type SearchOptions struct {
	WindowMinutes        int
	CoarseStepMinutes    int
	RefineRadiusMinutes  int
	RefineStepMinutes    int
	CandidateConcurrency int
	WaypointConcurrency  int

	// Overall deadline for the run; zero means none. On expiry the best
	// evaluation completed so far is returned.
	Timeout time.Duration
}

func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		WindowMinutes:        30,
		CoarseStepMinutes:    5,
		RefineRadiusMinutes:  5,
		RefineStepMinutes:    1,
		CandidateConcurrency: 4,
		WaypointConcurrency:  8,
	}
}

func (o SearchOptions) withDefaults() SearchOptions {
	d := DefaultSearchOptions()
	if o.WindowMinutes <= 0 {
		o.WindowMinutes = d.WindowMinutes
	}
	if o.CoarseStepMinutes <= 0 {
		o.CoarseStepMinutes = d.CoarseStepMinutes
	}
	if o.RefineRadiusMinutes <= 0 {
		o.RefineRadiusMinutes = d.RefineRadiusMinutes
	}
	if o.RefineStepMinutes <= 0 {
		o.RefineStepMinutes = d.RefineStepMinutes
	}
	if o.CandidateConcurrency <= 0 {
		o.CandidateConcurrency = d.CandidateConcurrency
	}
	if o.WaypointConcurrency <= 0 {
		o.WaypointConcurrency = d.WaypointConcurrency
	}
	return o
}

type departureSearch struct {
	route     domain.Route
	scheduled time.Time
	store     ports.PositionStore
	opts      SearchOptions

	mu    sync.Mutex
	evals map[int]*domain.PathEvaluation
}

// SearchDepartureTime finds the lowest-cost departure within the search
// window around scheduled.
//
// A coarse pass evaluates the whole window; the best candidate is then
// refined at a finer step until it stops changing. Every evaluation is kept
// in the result. The first store failure aborts the run.
func SearchDepartureTime(
	ctx context.Context,
	route domain.Route,
	scheduled time.Time,
	store ports.PositionStore,
	opts SearchOptions,
) (res *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "search departure time")(&err)

	start := time.Now()
	defer func() {
		outcome := "ok"
		switch {
		case err != nil:
			outcome = "error"
		case res.DeadlineExceeded:
			outcome = "deadline"
		}
		obs.OptimizeDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	if store == nil {
		return nil, errors.New("search departure time: store must be non-nil")
	}
	if _, err := RouteDuration(route); err != nil {
		return nil, fmt.Errorf("search departure time: %w", err)
	}

	s := &departureSearch{
		route:     route,
		scheduled: scheduled,
		store:     store,
		opts:      opts.withDefaults(),
		evals:     make(map[int]*domain.PathEvaluation),
	}

	runCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	w := s.opts.WindowMinutes
	coarse := make([]int, 0, 2*w/s.opts.CoarseStepMinutes+1)
	for off := -w; off <= w; off += s.opts.CoarseStepMinutes {
		coarse = append(coarse, off)
	}

	if err := s.evaluateAll(runCtx, coarse, domain.PhaseCoarse); err != nil {
		return s.interrupted(ctx, runCtx, err)
	}

	best := selectBest(s.evaluations())
	slog.DebugContext(ctx, "coarse search done",
		"req_id", obs.RequestID(ctx), "best_offset", best.Departure.OffsetMinutes, "best_cost", best.TotalCost)

	for {
		pending := s.unevaluatedAround(best.Departure.OffsetMinutes)
		if len(pending) == 0 {
			break
		}
		if err := s.evaluateAll(runCtx, pending, domain.PhaseRefine); err != nil {
			return s.interrupted(ctx, runCtx, err)
		}

		next := selectBest(s.evaluations())
		if next == best {
			break
		}
		best = next
	}

	return s.result(false), nil
}

func (s *departureSearch) evaluateAll(ctx context.Context, offsets []int, phase domain.SearchPhase) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.CandidateConcurrency)

	for _, off := range offsets {
		off := off
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ev, err := s.evaluate(gctx, off, phase)
			if err != nil {
				return err
			}

			s.mu.Lock()
			s.evals[off] = ev
			s.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (s *departureSearch) evaluate(ctx context.Context, offset int, phase domain.SearchPhase) (*domain.PathEvaluation, error) {
	dep := domain.CandidateDeparture{
		DepartAt:      s.scheduled.Add(time.Duration(offset) * time.Minute),
		OffsetMinutes: offset,
		Phase:         phase,
	}

	waypoints, err := SynthesizePath(s.route, dep.DepartAt)
	if err != nil {
		return nil, err
	}

	overlaps, err := DetectPathOverlaps(ctx, waypoints, s.store, s.opts.WaypointConcurrency)
	if err != nil {
		var se *domain.ExternalStoreError
		if errors.As(err, &se) {
			se.Departure = dep.DepartAt
			se.OffsetMinutes = offset
		}
		return nil, err
	}

	obs.CandidateEvaluations.WithLabelValues(string(phase)).Inc()
	return PriceEvaluation(dep, waypoints, overlaps), nil
}

// Offsets within the refine radius of center that are inside the window and
// not yet evaluated.
func (s *departureSearch) unevaluatedAround(center int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, step, w := s.opts.RefineRadiusMinutes, s.opts.RefineStepMinutes, s.opts.WindowMinutes

	var out []int
	for off := center - r; off <= center+r; off += step {
		if off < -w || off > w {
			continue
		}
		if _, done := s.evals[off]; !done {
			out = append(out, off)
		}
	}
	return out
}

// Evaluations completed so far, ordered by offset.
func (s *departureSearch) evaluations() []*domain.PathEvaluation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.PathEvaluation, 0, len(s.evals))
	for _, ev := range s.evals {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Departure.OffsetMinutes < out[j].Departure.OffsetMinutes
	})
	return out
}

func (s *departureSearch) result(deadlineExceeded bool) *domain.OptimizationResult {
	evals := s.evaluations()
	return &domain.OptimizationResult{
		Scheduled:        s.scheduled,
		Chosen:           selectBest(evals),
		Evaluations:      evals,
		DeadlineExceeded: deadlineExceeded,
	}
}

// Turns an aborted phase into the run's outcome. Only expiry of the run's own
// deadline yields a partial result; store failures and caller cancellation
// are returned as errors.
func (s *departureSearch) interrupted(parent, run context.Context, err error) (*domain.OptimizationResult, error) {
	deadlineHit := s.opts.Timeout > 0 &&
		parent.Err() == nil &&
		errors.Is(run.Err(), context.DeadlineExceeded)

	if !deadlineHit {
		return nil, fmt.Errorf("search departure time: %w", err)
	}

	if len(s.evaluations()) == 0 {
		return nil, fmt.Errorf("search departure time: no candidate completed within %s: %w",
			s.opts.Timeout, context.DeadlineExceeded)
	}

	slog.WarnContext(parent, "search deadline exceeded, returning best so far",
		"req_id", obs.RequestID(parent), "timeout", s.opts.Timeout.String(), "evaluated", len(s.evaluations()))
	return s.result(true), nil
}

// selectBest picks the minimum total cost, then the smallest absolute offset,
// then the earliest departure. The result does not depend on input order.
func selectBest(evals []*domain.PathEvaluation) *domain.PathEvaluation {
	var best *domain.PathEvaluation
	for _, ev := range evals {
		if best == nil || betterEvaluation(ev, best) {
			best = ev
		}
	}
	return best
}

func betterEvaluation(a, b *domain.PathEvaluation) bool {
	if a.TotalCost != b.TotalCost {
		return a.TotalCost < b.TotalCost
	}
	if oa, ob := absInt(a.Departure.OffsetMinutes), absInt(b.Departure.OffsetMinutes); oa != ob {
		return oa < ob
	}
	return a.Departure.DepartAt.Before(b.Departure.DepartAt)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

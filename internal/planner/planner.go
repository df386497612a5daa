// Package planner runs the graph, A*, assignment and GA planners against
// one scenario and collects their results into a report.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/elektrokombinacija/drone-route-planner/internal/algo"
	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/metrics"
	"github.com/elektrokombinacija/drone-route-planner/internal/sim"
)

// Planner names used in logs, metrics and reports.
const (
	NameGraph = "graph"
	NameAStar = "astar"
	NameCSP   = "csp"
	NameGA    = "ga"
)

// GraphStats summarises the spatial graph at the start time.
type GraphStats struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// PathResult is one A* query and its answer.
type PathResult struct {
	Drone    core.DroneID `json:"drone"`
	Goal     core.NodeID  `json:"goal"`
	Path     core.Path    `json:"path"`
	Expanded int          `json:"expanded"`
}

// Report collects the outcome of one planning run.
type Report struct {
	RunID     string                   `json:"run_id"`
	StartTime float64                  `json:"start_time"`
	Graph     GraphStats               `json:"graph"`
	Paths     []PathResult             `json:"paths,omitempty"`
	CSP       *algo.AssignmentResult   `json:"csp,omitempty"`
	CSPPlan   *sim.Plan                `json:"csp_plan,omitempty"`
	GA        *algo.GAResult           `json:"ga,omitempty"`
	GAPlan    *sim.Plan                `json:"ga_plan,omitempty"`
	Durations map[string]time.Duration `json:"durations"`
}

// Service runs planning requests.
type Service struct {
	log zerolog.Logger
}

// NewService creates a service logging to log.
func NewService(log zerolog.Logger) *Service {
	metrics.RegisterDefault()
	return &Service{log: log}
}

// Plan runs the selected planners. Infeasible plans are reported as data;
// an error is returned only for unknown ids in path queries or when ctx
// is done before the GA finishes its first generation.
func (s *Service) Plan(ctx context.Context, inst *core.Instance, opts Options) (*Report, error) {
	if inst == nil {
		return nil, fmt.Errorf("no instance: %w", core.ErrInvalidInput)
	}
	rep := &Report{
		RunID:     uuid.New().String(),
		StartTime: opts.StartTime,
		Durations: make(map[string]time.Duration),
	}
	log := s.log.With().Str("run_id", rep.RunID).Logger()
	log.Info().
		Int("drones", len(inst.Drones)).
		Int("deliveries", len(inst.Deliveries)).
		Int("zones", len(inst.Zones)).
		Float64("start", opts.StartTime).
		Str("intersection", opts.Intersection.String()).
		Msg("planning started")

	began := time.Now()
	ws := core.BuildWorkspace(inst, opts.StartTime, opts.Intersection)
	rep.Graph = GraphStats{Nodes: len(ws.Nodes()), Edges: ws.EdgeCount()}
	s.observe(rep, NameGraph, "ok", began)
	log.Debug().Int("nodes", rep.Graph.Nodes).Int("edges", rep.Graph.Edges).Msg("graph built")

	if opts.RunCSP {
		s.runCSP(inst, opts, rep, log)
	}
	if opts.RunAStar {
		if err := s.runAStar(ws, inst, opts, rep, log); err != nil {
			return rep, err
		}
	}
	if opts.RunGA {
		if err := s.runGA(ctx, inst, opts, rep, log); err != nil {
			return rep, err
		}
	}

	log.Info().Dur("elapsed", time.Since(began)).Msg("planning finished")
	return rep, nil
}

func (s *Service) runCSP(inst *core.Instance, opts Options, rep *Report, log zerolog.Logger) {
	began := time.Now()
	opts.CSP.Intersection = opts.Intersection
	solver := algo.NewAssignmentSolver(opts.CSP)
	res := solver.Solve(inst, opts.StartTime)
	rep.CSP = res
	rep.CSPPlan = sim.Replay(inst, res.Assignment, opts.StartTime, opts.Intersection, sim.LoadPerLeg)

	outcome := "complete"
	switch {
	case res.UsedFallback && res.Assignment.Count() == 0:
		outcome = "empty"
	case res.UsedFallback:
		outcome = "partial"
	}
	s.observe(rep, NameCSP, outcome, began)
	metrics.DeliveriesUnassigned.WithLabelValues(NameCSP).Set(float64(len(res.Unassigned)))

	log.Info().
		Str("planner", solver.Name()).
		Str("outcome", outcome).
		Int("assigned", res.Assignment.Count()).
		Int("unassigned", len(res.Unassigned)).
		Int("backtracks", res.Backtracks).
		Dur("took", rep.Durations[NameCSP]).
		Msg("assignment solved")
}

// pathQueries returns explicit queries, or one per CSP assignment pair.
func pathQueries(opts Options, rep *Report) []PathQuery {
	if len(opts.PathQueries) > 0 {
		return opts.PathQueries
	}
	if rep.CSP == nil {
		return nil
	}
	var qs []PathQuery
	for _, tl := range rep.CSPPlan.Timelines {
		for _, id := range rep.CSP.Assignment[tl.Drone] {
			qs = append(qs, PathQuery{Drone: tl.Drone, Goal: core.DeliveryNode(id)})
		}
	}
	return qs
}

func (s *Service) runAStar(ws *core.Workspace, inst *core.Instance, opts Options, rep *Report, log zerolog.Logger) error {
	began := time.Now()
	pf := algo.NewPathFinder(ws)
	found := 0
	for _, q := range pathQueries(opts, rep) {
		d, err := inst.DroneByID(q.Drone)
		if err != nil {
			s.observe(rep, NameAStar, "error", began)
			return fmt.Errorf("path query: %w", err)
		}
		path, err := pf.FindPath(core.DroneNode(q.Drone), q.Goal, d, opts.StartTime)
		if err != nil {
			s.observe(rep, NameAStar, "error", began)
			return fmt.Errorf("path query: %w", err)
		}
		metrics.AStarExpanded.Observe(float64(pf.Expanded()))
		if path.Found() {
			found++
		}
		rep.Paths = append(rep.Paths, PathResult{Drone: q.Drone, Goal: q.Goal, Path: path, Expanded: pf.Expanded()})
		log.Debug().
			Stringer("from", core.DroneNode(q.Drone)).
			Stringer("goal", q.Goal).
			Bool("found", path.Found()).
			Float64("cost", path.Cost).
			Int("expanded", pf.Expanded()).
			Msg("path searched")
	}
	outcome := "ok"
	if found < len(rep.Paths) {
		outcome = "partial"
	}
	s.observe(rep, NameAStar, outcome, began)
	log.Info().Int("queries", len(rep.Paths)).Int("found", found).Dur("took", rep.Durations[NameAStar]).Msg("paths searched")
	return nil
}

func (s *Service) runGA(ctx context.Context, inst *core.Instance, opts Options, rep *Report, log zerolog.Logger) error {
	began := time.Now()
	cfg := opts.GA
	cfg.Intersection = opts.Intersection
	inner := cfg.Observer
	var stopped error
	cfg.Observer = func(gen int, best float64) bool {
		if opts.ProgressEvery > 0 && gen%opts.ProgressEvery == 0 {
			log.Debug().Int("generation", gen).Float64("best", best).Msg("ga progress")
		}
		if err := ctx.Err(); err != nil {
			stopped = err
			return false
		}
		return inner == nil || inner(gen, best)
	}

	opt := algo.NewRouteOptimizer(cfg)
	res := opt.Run(inst, opts.StartTime)
	rep.GA = res
	rep.GAPlan = sim.Replay(inst, res.Best.ToAssignment(inst), opts.StartTime, opts.Intersection, sim.LoadCumulative)

	outcome := "ok"
	if stopped != nil {
		outcome = "stopped"
	}
	s.observe(rep, NameGA, outcome, began)
	metrics.GABestFitness.Set(res.Fitness)
	metrics.DeliveriesUnassigned.WithLabelValues(NameGA).Set(float64(len(inst.Deliveries) - res.Evaluation.Delivered))

	ev := log.Info()
	if stopped != nil {
		ev = log.Warn().Err(stopped)
	}
	ev.Str("planner", opt.Name()).
		Int64("seed", res.Seed).
		Int("generations", res.Generations).
		Float64("fitness", res.Fitness).
		Int("delivered", res.Evaluation.Delivered).
		Int("violations", res.Evaluation.Violations).
		Dur("took", rep.Durations[NameGA]).
		Msg("routes optimised")

	if stopped != nil && res.Generations == 0 {
		return fmt.Errorf("route optimisation: %w", stopped)
	}
	return nil
}

func (s *Service) observe(rep *Report, planner, outcome string, began time.Time) {
	took := time.Since(began)
	rep.Durations[planner] = took
	metrics.PlannerRuns.WithLabelValues(planner, outcome).Inc()
	metrics.PlannerDuration.WithLabelValues(planner).Observe(took.Seconds())
}

// IsStopped reports whether err came from a cancelled or expired context.
func IsStopped(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

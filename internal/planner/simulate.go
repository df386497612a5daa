package planner

import (
	"fmt"
	"time"

	"github.com/elektrokombinacija/drone-route-planner/internal/algo"
	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/sim"
)

// SimulateOptions tunes the simulated clock.
type SimulateOptions struct {
	Step    float64 // minutes per tick
	Timeout time.Duration
}

// Simulate steps the CSP and GA assignments selected in opts through the
// simulator. A planner whose run fails or times out is still reported,
// with Success false.
func (s *Service) Simulate(inst *core.Instance, opts Options, so SimulateOptions) ([]*sim.SimulationResult, error) {
	if inst == nil {
		return nil, fmt.Errorf("no instance: %w", core.ErrInvalidInput)
	}
	if so.Timeout <= 0 {
		so.Timeout = 30 * time.Second
	}

	var runs []sim.SimulationConfig
	base := sim.DefaultConfig()
	base.Instance = inst
	base.StartTime = opts.StartTime
	base.Intersection = opts.Intersection
	if so.Step > 0 {
		base.TimeStep = so.Step
	}
	if opts.RunCSP {
		cfg := base
		csp := opts.CSP
		csp.Intersection = opts.Intersection
		cfg.Assigner = algo.NewAssignmentSolver(csp)
		cfg.Load = sim.LoadPerLeg
		runs = append(runs, cfg)
	}
	if opts.RunGA {
		cfg := base
		ga := opts.GA
		ga.Intersection = opts.Intersection
		cfg.Assigner = algo.NewRouteOptimizer(ga)
		cfg.Load = sim.LoadCumulative
		runs = append(runs, cfg)
	}

	results := make([]*sim.SimulationResult, 0, len(runs))
	for _, cfg := range runs {
		res, err := sim.RunSimulation(cfg, so.Timeout)
		if err != nil {
			s.log.Warn().Err(err).Str("planner", res.Planner).Msg("simulation incomplete")
		}
		m := res.Metrics
		s.log.Info().
			Str("planner", res.Planner).
			Int("completed", m.DeliveriesCompleted).
			Int("failed", m.DeliveriesFailed).
			Int("windows_met", m.WindowsMet).
			Float64("min_slack", m.MinSlack).
			Int("recharges", m.Recharges).
			Float64("makespan", m.Makespan).
			Msg("simulation finished")
		results = append(results, res)
	}
	return results, nil
}

package planner

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/drone-route-planner/internal/algo"
	"github.com/elektrokombinacija/drone-route-planner/internal/config"
	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
)

func testInstance(t *testing.T) *core.Instance {
	t.Helper()
	w := core.TimeWindow{End: 1000}
	inst, err := core.NewInstance(
		[]*core.Drone{
			{ID: 1, Start: core.Pos{X: 0, Y: 0}, MaxWeight: 10, Battery: 10000, Speed: 10},
			{ID: 2, Start: core.Pos{X: 10, Y: 0}, MaxWeight: 10, Battery: 10000, Speed: 10},
			{ID: 3, Start: core.Pos{X: 0, Y: 10}, MaxWeight: 10, Battery: 10000, Speed: 10},
		},
		[]*core.DeliveryPoint{
			{ID: 1, Pos: core.Pos{X: 5, Y: 5}, Weight: 2, Priority: 3, Window: w},
			{ID: 2, Pos: core.Pos{X: 15, Y: 5}, Weight: 2, Priority: 3, Window: w},
			{ID: 3, Pos: core.Pos{X: 5, Y: 15}, Weight: 2, Priority: 3, Window: w},
		}, nil)
	require.NoError(t, err)
	return inst
}

func fastOptions() Options {
	opts := DefaultOptions()
	opts.GA.PopulationSize = 30
	opts.GA.Generations = 10
	opts.GA.Seed = 42
	return opts
}

func TestPlan_AllPlanners(t *testing.T) {
	var logs bytes.Buffer
	svc := NewService(zerolog.New(&logs))
	inst := testInstance(t)

	rep, err := svc.Plan(context.Background(), inst, fastOptions())
	require.NoError(t, err)

	_, err = uuid.Parse(rep.RunID)
	assert.NoError(t, err)
	assert.Equal(t, GraphStats{Nodes: 6, Edges: 30}, rep.Graph)

	require.NotNil(t, rep.CSP)
	assert.True(t, rep.CSP.Complete)
	assert.Equal(t, 3, rep.CSP.Assignment.Count())
	require.NotNil(t, rep.CSPPlan)
	assert.Len(t, rep.CSPPlan.Timelines, 3)

	// One A* query per assigned pair, all reachable in a zone-free scenario.
	require.Len(t, rep.Paths, 3)
	for _, p := range rep.Paths {
		assert.True(t, p.Path.Found())
		assert.Equal(t, core.DroneNode(p.Drone), p.Path.Nodes[0])
		assert.Equal(t, p.Goal, p.Path.Nodes[len(p.Path.Nodes)-1])
	}

	require.NotNil(t, rep.GA)
	assert.Equal(t, 3, rep.GA.Evaluation.Delivered)
	require.NotNil(t, rep.GAPlan)

	for _, name := range []string{NameGraph, NameCSP, NameAStar, NameGA} {
		assert.Contains(t, rep.Durations, name)
	}
	assert.Contains(t, logs.String(), rep.RunID)
	assert.Contains(t, logs.String(), "routes optimised")
}

func TestPlan_ExplicitPathQueries(t *testing.T) {
	svc := NewService(zerolog.Nop())
	opts := fastOptions()
	opts.RunCSP, opts.RunGA = false, false
	opts.PathQueries = []PathQuery{{Drone: 2, Goal: core.DeliveryNode(3)}}

	rep, err := svc.Plan(context.Background(), testInstance(t), opts)
	require.NoError(t, err)
	assert.Nil(t, rep.CSP)
	assert.Nil(t, rep.GA)
	require.Len(t, rep.Paths, 1)
	assert.True(t, rep.Paths[0].Path.Found())
}

func TestPlan_UnknownQueryIsNotFound(t *testing.T) {
	svc := NewService(zerolog.Nop())
	opts := fastOptions()
	opts.RunGA = false
	opts.PathQueries = []PathQuery{{Drone: 9, Goal: core.DeliveryNode(1)}}

	_, err := svc.Plan(context.Background(), testInstance(t), opts)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	opts.PathQueries = []PathQuery{{Drone: 1, Goal: core.DeliveryNode(42)}}
	_, err = svc.Plan(context.Background(), testInstance(t), opts)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestPlan_CancelledContextStopsGA(t *testing.T) {
	svc := NewService(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := fastOptions()
	opts.RunAStar, opts.RunCSP = false, false
	rep, err := svc.Plan(ctx, testInstance(t), opts)
	require.Error(t, err)
	assert.True(t, IsStopped(err))
	require.NotNil(t, rep.GA, "the initial population is still reported")
	assert.Zero(t, rep.GA.Generations)
	assert.Len(t, rep.GA.History, 1)
}

func TestPlan_CSPFollowsIntersectionMode(t *testing.T) {
	zone, err := core.NewNoFlyZone(1, []core.Pos{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}, core.TimeWindow{End: 1e6})
	require.NoError(t, err)
	inst, err := core.NewInstance(
		[]*core.Drone{{ID: 1, Start: core.Pos{X: 6, Y: 6}, MaxWeight: 10, Battery: 10000, Speed: 10}},
		[]*core.DeliveryPoint{{ID: 1, Pos: core.Pos{X: 12, Y: 12}, Weight: 1, Priority: 3, Window: core.TimeWindow{End: 1e6}}},
		[]*core.NoFlyZone{zone})
	require.NoError(t, err)

	opts := fastOptions()
	opts.RunAStar, opts.RunGA = false, false
	require.Equal(t, geo.ModeBoundingBox, opts.CSP.Intersection)

	// The leg runs alongside the hypotenuse: only the box test rejects it.
	rep, err := NewService(zerolog.Nop()).Plan(context.Background(), inst, opts)
	require.NoError(t, err)
	assert.Equal(t, []core.DeliveryID{1}, rep.CSP.Unassigned)

	opts.Intersection = geo.ModeExact
	rep, err = NewService(zerolog.Nop()).Plan(context.Background(), inst, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.CSP.Assignment.Count())
	assert.Empty(t, rep.CSP.Unassigned)
	require.Len(t, rep.CSPPlan.Timelines, 1)
	assert.Equal(t, algo.ViolationNone, rep.CSPPlan.Timelines[0].Legs[0].Violation)
}

func TestPlan_NilInstance(t *testing.T) {
	_, err := NewService(zerolog.Nop()).Plan(context.Background(), nil, DefaultOptions())
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestOptionsFromSettings(t *testing.T) {
	s := config.Settings{
		Planner: config.PlannerConfig{StartTime: 600, AStar: true, CSP: true},
		Graph:   config.GraphConfig{Intersection: "exact"},
		CSP:     config.CSPConfig{Search: "exhaustive", MaxBacktracks: 25},
		GA:      config.GAConfig{Mode: "multi", Elitism: "single", Seed: 9, PopulationSize: 40, TournamentSize: 4},
	}
	opts, err := OptionsFromSettings(s)
	require.NoError(t, err)

	assert.Equal(t, 600.0, opts.StartTime)
	assert.False(t, opts.RunGA)
	assert.Equal(t, geo.ModeExact, opts.Intersection)
	assert.Equal(t, algo.SearchExhaustive, opts.CSP.Strategy)
	assert.Equal(t, 25, opts.CSP.MaxBacktracks)
	assert.Equal(t, geo.ModeExact, opts.CSP.Intersection)
	assert.Equal(t, algo.MultiParcel, opts.GA.Mode)
	assert.Equal(t, algo.EliteSingle, opts.GA.Elitism)
	assert.Equal(t, int64(9), opts.GA.Seed)
	assert.Equal(t, 40, opts.GA.PopulationSize)
	assert.Equal(t, 4, opts.GA.TournamentSize)
	assert.Equal(t, 100, opts.GA.Generations, "zero keeps the default")
}

func TestOptionsFromSettings_ZeroRates(t *testing.T) {
	s := config.Settings{GA: config.GAConfig{MutationRate: 0, InitialAssignProb: 0}}
	opts, err := OptionsFromSettings(s)
	require.NoError(t, err)
	assert.Equal(t, 0.0, opts.GA.MutationRate, "mutation can be switched off")
	assert.Equal(t, 0.0, opts.GA.InitialAssignProb)

	s.GA.MutationRate, s.GA.InitialAssignProb = 0.25, 0.5
	opts, err = OptionsFromSettings(s)
	require.NoError(t, err)
	assert.Equal(t, 0.25, opts.GA.MutationRate)
	assert.Equal(t, 0.5, opts.GA.InitialAssignProb)
}

func TestOptionsFromSettings_Rejects(t *testing.T) {
	cases := map[string]config.Settings{
		"intersection": {Graph: config.GraphConfig{Intersection: "fuzzy"}},
		"search":       {CSP: config.CSPConfig{Search: "random"}},
		"mode":         {GA: config.GAConfig{Mode: "bulk"}},
		"elitism":      {GA: config.GAConfig{Elitism: "half"}},
		"tournament":   {GA: config.GAConfig{TournamentSize: 9}},
		"mutation":     {GA: config.GAConfig{MutationRate: 1.5}},
		"assignProb":   {GA: config.GAConfig{InitialAssignProb: -0.1}},
		"assignProbHi": {GA: config.GAConfig{InitialAssignProb: 1.2}},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := OptionsFromSettings(s)
			assert.Error(t, err)
		})
	}
}

func TestWriteSummary(t *testing.T) {
	inst := testInstance(t)
	rep, err := NewService(zerolog.Nop()).Plan(context.Background(), inst, fastOptions())
	require.NoError(t, err)

	var out bytes.Buffer
	rep.WriteSummary(&out, inst)
	s := out.String()
	assert.Contains(t, s, rep.RunID)
	assert.Contains(t, s, "Assignment (CSP)")
	assert.Contains(t, s, "Paths (A*)")
	assert.Contains(t, s, "Routes (GA)")
	assert.Contains(t, s, "drone(1)")
}

func TestService_Simulate(t *testing.T) {
	var logs bytes.Buffer
	svc := NewService(zerolog.New(&logs))
	inst := testInstance(t)

	results, err := svc.Simulate(inst, fastOptions(), SimulateOptions{Step: 0.25, Timeout: 10 * time.Second})
	require.NoError(t, err)
	require.Len(t, results, 2)

	csp := results[0]
	assert.Equal(t, "CSP-greedy", csp.Planner)
	assert.True(t, csp.Success)
	assert.Equal(t, 3, csp.Metrics.DeliveriesCompleted)
	assert.Equal(t, 3, csp.Metrics.WindowsMet)
	require.NotNil(t, csp.Plan)

	ga := results[1]
	assert.Equal(t, "GA-single", ga.Planner)
	assert.True(t, ga.Success)
	assert.Equal(t, ga.Metrics.DeliveriesAssigned, ga.Metrics.DeliveriesCompleted+ga.Metrics.DeliveriesFailed)
	assert.Contains(t, logs.String(), "simulation finished")

	opts := fastOptions()
	opts.RunGA = false
	results, err = svc.Simulate(inst, opts, SimulateOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	_, err = svc.Simulate(nil, opts, SimulateOptions{})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

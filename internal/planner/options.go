package planner

import (
	"fmt"

	"github.com/elektrokombinacija/drone-route-planner/internal/algo"
	"github.com/elektrokombinacija/drone-route-planner/internal/config"
	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
)

// PathQuery asks for a route from a drone's start to a graph node.
type PathQuery struct {
	Drone core.DroneID
	Goal  core.NodeID
}

// Options selects and configures the planners for one run.
type Options struct {
	StartTime    float64
	Intersection geo.Mode

	RunAStar bool
	RunCSP   bool
	RunGA    bool

	CSP algo.CSPOptions
	GA  algo.GAConfig

	// PathQueries overrides the default A* queries, which follow the CSP
	// assignment from each drone to each of its deliveries.
	PathQueries []PathQuery

	// ProgressEvery logs GA progress every n generations; 0 disables it.
	ProgressEvery int
}

// DefaultOptions runs every planner with default settings.
func DefaultOptions() Options {
	return Options{
		RunAStar:      true,
		RunCSP:        true,
		RunGA:         true,
		CSP:           algo.CSPOptions{MaxBacktracks: algo.DefaultMaxBacktracks},
		GA:            algo.DefaultGAConfig(),
		ProgressEvery: 10,
	}
}

// OptionsFromSettings maps loaded configuration onto planner options.
func OptionsFromSettings(s config.Settings) (Options, error) {
	opts := DefaultOptions()
	opts.StartTime = s.Planner.StartTime
	opts.RunAStar = s.Planner.AStar
	opts.RunCSP = s.Planner.CSP
	opts.RunGA = s.Planner.GA

	mode, err := geo.ParseMode(s.Graph.Intersection)
	if err != nil {
		return opts, fmt.Errorf("graph.intersection: %w", err)
	}
	opts.Intersection = mode

	search, err := algo.ParseSearchStrategy(s.CSP.Search)
	if err != nil {
		return opts, fmt.Errorf("csp.search: %w", err)
	}
	opts.CSP = algo.CSPOptions{Strategy: search, MaxBacktracks: s.CSP.MaxBacktracks, Intersection: mode}

	capMode, err := algo.ParseCapacityMode(s.GA.Mode)
	if err != nil {
		return opts, fmt.Errorf("ga.mode: %w", err)
	}
	elite, err := algo.ParseEliteMode(s.GA.Elitism)
	if err != nil {
		return opts, fmt.Errorf("ga.elitism: %w", err)
	}
	if s.GA.TournamentSize != 0 && (s.GA.TournamentSize < 3 || s.GA.TournamentSize > 5) {
		return opts, fmt.Errorf("ga.tournamentSize %d outside 3..5: %w", s.GA.TournamentSize, core.ErrInvalidInput)
	}
	if s.GA.MutationRate < 0 || s.GA.MutationRate > 1 {
		return opts, fmt.Errorf("ga.mutationRate %v outside 0..1: %w", s.GA.MutationRate, core.ErrInvalidInput)
	}
	if s.GA.InitialAssignProb < 0 || s.GA.InitialAssignProb > 1 {
		return opts, fmt.Errorf("ga.initialAssignProb %v outside 0..1: %w", s.GA.InitialAssignProb, core.ErrInvalidInput)
	}

	ga := algo.DefaultGAConfig()
	ga.Mode = capMode
	ga.Elitism = elite
	ga.Seed = s.GA.Seed
	ga.Intersection = mode
	if s.GA.PopulationSize > 0 {
		ga.PopulationSize = s.GA.PopulationSize
	}
	if s.GA.Generations > 0 {
		ga.Generations = s.GA.Generations
	}
	if s.GA.TournamentSize > 0 {
		ga.TournamentSize = s.GA.TournamentSize
	}
	// Zero is a valid rate, so both are taken as loaded.
	ga.MutationRate = s.GA.MutationRate
	ga.InitialAssignProb = s.GA.InitialAssignProb
	opts.GA = ga
	return opts, nil
}

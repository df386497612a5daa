package algo

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
)

// CapacityMode fixes how many parcels a drone carries per route.
type CapacityMode int

const (
	SingleParcel CapacityMode = iota // at most one delivery per drone
	MultiParcel                      // ordered multi-stop routes
)

func (m CapacityMode) String() string {
	if m == MultiParcel {
		return "multi"
	}
	return "single"
}

// ParseCapacityMode parses "single" or "multi".
func ParseCapacityMode(s string) (CapacityMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single":
		return SingleParcel, nil
	case "multi":
		return MultiParcel, nil
	}
	return SingleParcel, fmt.Errorf("unknown capacity mode %q", s)
}

// EliteMode selects how many individuals survive unchanged.
type EliteMode int

const (
	EliteQuarter EliteMode = iota // ceil(population/4)
	EliteSingle                   // best individual only
)

// ParseEliteMode parses "quarter" or "single".
func ParseEliteMode(s string) (EliteMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "quarter":
		return EliteQuarter, nil
	case "single":
		return EliteSingle, nil
	}
	return EliteQuarter, fmt.Errorf("unknown elitism %q", s)
}

// Fitness weights.
const (
	DeliveryReward   = 50.0
	EnergyWeight     = 0.1
	ViolationPenalty = 1000.0
)

// GenerationObserver is called after each generation is scored. Returning
// false stops the run early.
type GenerationObserver func(generation int, bestFitness float64) bool

// GAConfig configures the route optimiser.
type GAConfig struct {
	PopulationSize    int
	Generations       int
	MutationRate      float64
	TournamentSize    int
	Elitism           EliteMode
	Mode              CapacityMode
	InitialAssignProb float64
	Seed              int64 // 0 picks a time-based seed
	Intersection      geo.Mode
	Observer          GenerationObserver
}

// DefaultGAConfig returns the standard optimiser settings.
func DefaultGAConfig() GAConfig {
	return GAConfig{
		PopulationSize:    200,
		Generations:       100,
		MutationRate:      0.1,
		TournamentSize:    3,
		Elitism:           EliteQuarter,
		Mode:              SingleParcel,
		InitialAssignProb: 0.7,
	}
}

// Evaluation is the scored walk of one individual.
type Evaluation struct {
	Valid      bool
	Delivered  int
	Violations int
	Energy     float64
	Fitness    float64
}

// GAResult is the output of one optimiser run.
type GAResult struct {
	Best        core.Individual
	Fitness     float64
	Evaluation  Evaluation
	History     []float64 // best fitness per generation, initial population first
	Generations int       // generations actually bred
	Seed        int64
}

// RouteOptimizer evolves whole-fleet route assignments.
type RouteOptimizer struct {
	cfg GAConfig
	rng *rand.Rand
}

// NewRouteOptimizer creates an optimiser. Out-of-range settings are clamped.
func NewRouteOptimizer(cfg GAConfig) *RouteOptimizer {
	if cfg.PopulationSize < 1 {
		cfg.PopulationSize = 1
	}
	if cfg.Generations < 0 {
		cfg.Generations = 0
	}
	if cfg.TournamentSize < 1 {
		cfg.TournamentSize = 1
	}
	if cfg.MutationRate < 0 {
		cfg.MutationRate = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &RouteOptimizer{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Name returns the algorithm name.
func (o *RouteOptimizer) Name() string {
	return "GA-" + o.cfg.Mode.String()
}

// Config returns the effective configuration.
func (o *RouteOptimizer) Config() GAConfig { return o.cfg }

// Assign implements Assigner.
func (o *RouteOptimizer) Assign(inst *core.Instance, startTime float64) core.Assignment {
	return o.Run(inst, startTime).Best.ToAssignment(inst)
}

type scored struct {
	ind  core.Individual
	eval Evaluation
}

// Run evolves the population for the configured number of generations and
// returns the best individual of the final population.
func (o *RouteOptimizer) Run(inst *core.Instance, startTime float64) *GAResult {
	o.rng = rand.New(rand.NewSource(o.cfg.Seed))
	pop := o.score(inst, o.initialPopulation(inst), startTime)

	res := &GAResult{Seed: o.cfg.Seed}
	res.History = append(res.History, pop[0].eval.Fitness)
	if o.cfg.Observer != nil && !o.cfg.Observer(0, pop[0].eval.Fitness) {
		return o.finish(res, pop)
	}

	elite := o.eliteCount()
	for gen := 1; gen <= o.cfg.Generations; gen++ {
		next := make([]core.Individual, 0, o.cfg.PopulationSize)
		for i := 0; i < elite && i < len(pop); i++ {
			next = append(next, pop[i].ind.Clone())
		}
		for len(next) < o.cfg.PopulationSize {
			p1 := o.tournament(pop)
			p2 := o.tournament(pop)
			c1, c2 := o.crossover(p1, p2)
			o.mutate(inst, c1)
			o.mutate(inst, c2)
			next = append(next, o.Repair(inst, c1))
			if len(next) < o.cfg.PopulationSize {
				next = append(next, o.Repair(inst, c2))
			}
		}

		pop = o.score(inst, next, startTime)
		res.Generations = gen
		res.History = append(res.History, pop[0].eval.Fitness)
		if o.cfg.Observer != nil && !o.cfg.Observer(gen, pop[0].eval.Fitness) {
			break
		}
	}
	return o.finish(res, pop)
}

func (o *RouteOptimizer) finish(res *GAResult, pop []scored) *GAResult {
	res.Best = pop[0].ind.Clone()
	res.Evaluation = pop[0].eval
	res.Fitness = pop[0].eval.Fitness
	return res
}

func (o *RouteOptimizer) eliteCount() int {
	if o.cfg.Elitism == EliteSingle {
		return 1
	}
	return (o.cfg.PopulationSize + 3) / 4
}

// score evaluates and sorts the population, best first.
func (o *RouteOptimizer) score(inst *core.Instance, pop []core.Individual, startTime float64) []scored {
	out := make([]scored, len(pop))
	for i, ind := range pop {
		out[i] = scored{ind: ind, eval: o.Evaluate(inst, ind, startTime)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].eval.Fitness > out[j].eval.Fitness })
	return out
}

// Evaluate walks every route in order from startTime and scores it.
// Structurally invalid individuals score -Inf.
func (o *RouteOptimizer) Evaluate(inst *core.Instance, ind core.Individual, startTime float64) Evaluation {
	if err := o.ValidateStructure(inst, ind); err != nil {
		return Evaluation{Valid: false, Fitness: math.Inf(-1)}
	}

	ev := Evaluation{Valid: true}
	for i, route := range ind {
		d := inst.Drones[i]
		st := StartState(d, startTime)
		load := 0.0
		for _, id := range route {
			dp, _ := inst.DeliveryByID(id)
			load += dp.Weight
		}

		for _, id := range route {
			dp, _ := inst.DeliveryByID(id)
			leg := FlyLeg(inst, d, st, dp, load, o.cfg.Intersection)
			load -= dp.Weight
			if leg.Violation.Flown() {
				ev.Energy += d.FitnessEnergy(leg.Distance)
				st = leg.Next
			}
			if leg.Violation == ViolationNone {
				ev.Delivered++
			} else {
				ev.Violations++
			}
		}
	}
	ev.Fitness = float64(ev.Delivered)*DeliveryReward - ev.Energy*EnergyWeight - float64(ev.Violations)*ViolationPenalty
	return ev
}

// ValidateStructure checks the chromosome shape: one route per drone, known
// ids, no duplicates and, in single-parcel mode, at most one id per route.
func (o *RouteOptimizer) ValidateStructure(inst *core.Instance, ind core.Individual) error {
	if len(ind) != len(inst.Drones) {
		return fmt.Errorf("individual has %d routes for %d drones: %w", len(ind), len(inst.Drones), core.ErrInvalidInput)
	}
	seen := make(map[core.DeliveryID]bool)
	for i, route := range ind {
		if o.cfg.Mode == SingleParcel && len(route) > 1 {
			return fmt.Errorf("route %d holds %d parcels in single-parcel mode: %w", i, len(route), core.ErrInvalidInput)
		}
		for _, id := range route {
			if !inst.HasDelivery(id) {
				return fmt.Errorf("route %d: delivery %d: %w", i, id, core.ErrNotFound)
			}
			if seen[id] {
				return fmt.Errorf("route %d: delivery %d assigned twice: %w", i, id, core.ErrInvalidInput)
			}
			seen[id] = true
		}
	}
	return nil
}

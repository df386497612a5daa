package algo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
)

// SearchStrategy selects how far the assignment search backtracks.
type SearchStrategy int

const (
	// SearchGreedy commits each delivery to its cheapest feasible drone and
	// never revisits a commitment.
	SearchGreedy SearchStrategy = iota
	// SearchExhaustive tries every feasible drone in cost order and
	// backtracks over earlier commitments, within MaxBacktracks.
	SearchExhaustive
)

func (s SearchStrategy) String() string {
	if s == SearchExhaustive {
		return "exhaustive"
	}
	return "greedy"
}

// ParseSearchStrategy parses "greedy" or "exhaustive".
func ParseSearchStrategy(s string) (SearchStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "greedy":
		return SearchGreedy, nil
	case "exhaustive":
		return SearchExhaustive, nil
	}
	return SearchGreedy, fmt.Errorf("unknown search strategy %q", s)
}

// DefaultMaxBacktracks bounds exhaustive search.
const DefaultMaxBacktracks = 10000

// CSPOptions configures the assignment solver.
type CSPOptions struct {
	Strategy      SearchStrategy
	MaxBacktracks int
	Intersection  geo.Mode
}

// AssignmentResult is the output of one solver run.
type AssignmentResult struct {
	Assignment   core.Assignment
	Complete     bool // every delivery placed by the recursive search
	UsedFallback bool // the single-pass greedy matcher produced the result
	Unassigned   []core.DeliveryID
	Backtracks   int
}

// AssignmentSolver assigns deliveries to drones under capacity, battery,
// time-window and no-fly-zone constraints.
type AssignmentSolver struct {
	opts CSPOptions
}

// NewAssignmentSolver creates a solver.
func NewAssignmentSolver(opts CSPOptions) *AssignmentSolver {
	if opts.MaxBacktracks <= 0 {
		opts.MaxBacktracks = DefaultMaxBacktracks
	}
	return &AssignmentSolver{opts: opts}
}

// Name returns the algorithm name.
func (s *AssignmentSolver) Name() string {
	return "CSP-" + s.opts.Strategy.String()
}

// Assign implements Assigner.
func (s *AssignmentSolver) Assign(inst *core.Instance, startTime float64) core.Assignment {
	return s.Solve(inst, startTime).Assignment
}

// IsValid checks whether drone d in state st can serve dp, and returns the
// state after serving it.
func (s *AssignmentSolver) IsValid(inst *core.Instance, d *core.Drone, dp *core.DeliveryPoint, st FlightState) (FlightState, bool) {
	leg := FlyLeg(inst, d, st, dp, dp.Weight, s.opts.Intersection)
	if leg.Violation != ViolationNone {
		return st, false
	}
	return leg.Next, true
}

// commit records one delivery placed on the drone at index drone.
type commit struct {
	drone    int
	delivery core.DeliveryID
}

// candidate is a feasible drone for the delivery under consideration.
type candidate struct {
	drone int
	cost  float64
	next  FlightState
}

// searchState is passed by value down the recursion; states and commits
// are copied before a branch changes them.
type searchState struct {
	states  []FlightState
	commits []commit
}

// Solve runs the search and falls back to a single greedy pass when the
// search cannot place every delivery.
func (s *AssignmentSolver) Solve(inst *core.Instance, startTime float64) *AssignmentResult {
	order := priorityOrder(inst)
	initial := searchState{states: make([]FlightState, len(inst.Drones))}
	for i, d := range inst.Drones {
		initial.states[i] = StartState(d, startTime)
	}

	res := &AssignmentResult{}
	budget := s.opts.MaxBacktracks
	commits, ok := s.search(inst, order, 0, initial, &budget)
	res.Backtracks = s.opts.MaxBacktracks - budget

	if !ok {
		commits = s.greedyPass(inst, order, initial)
		res.UsedFallback = true
	}
	res.Complete = ok

	res.Assignment = core.NewAssignment(inst)
	for _, c := range commits {
		id := inst.Drones[c.drone].ID
		res.Assignment[id] = append(res.Assignment[id], c.delivery)
	}
	res.Unassigned = res.Assignment.Unassigned(inst)
	return res
}

func (s *AssignmentSolver) search(inst *core.Instance, order []*core.DeliveryPoint, idx int, st searchState, budget *int) ([]commit, bool) {
	if idx == len(order) {
		return st.commits, true
	}
	dp := order[idx]
	cands := s.candidates(inst, dp, st.states)
	if s.opts.Strategy == SearchGreedy && len(cands) > 1 {
		cands = cands[:1]
	}

	for _, c := range cands {
		next := searchState{
			states:  append([]FlightState(nil), st.states...),
			commits: append(st.commits[:len(st.commits):len(st.commits)], commit{drone: c.drone, delivery: dp.ID}),
		}
		next.states[c.drone] = c.next
		if commits, ok := s.search(inst, order, idx+1, next, budget); ok {
			return commits, true
		}
		if *budget <= 0 {
			return nil, false
		}
		*budget--
	}
	return nil, false
}

// greedyPass assigns each delivery to its cheapest feasible drone, skipping
// deliveries no drone can serve.
func (s *AssignmentSolver) greedyPass(inst *core.Instance, order []*core.DeliveryPoint, st searchState) []commit {
	states := append([]FlightState(nil), st.states...)
	var commits []commit
	for _, dp := range order {
		cands := s.candidates(inst, dp, states)
		if len(cands) == 0 {
			continue
		}
		best := cands[0]
		states[best.drone] = best.next
		commits = append(commits, commit{drone: best.drone, delivery: dp.ID})
	}
	return commits
}

// candidates returns feasible drones for dp ordered by cost, ties by drone order.
func (s *AssignmentSolver) candidates(inst *core.Instance, dp *core.DeliveryPoint, states []FlightState) []candidate {
	var out []candidate
	for i, d := range inst.Drones {
		next, ok := s.IsValid(inst, d, dp, states[i])
		if !ok {
			continue
		}
		dist := states[i].Pos.Dist(dp.Pos)
		out = append(out, candidate{drone: i, cost: core.AssignmentCost(dist, dp), next: next})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].cost < out[j].cost })
	return out
}

// Package sim replays delivery plans over simulated time.
//
// Replay turns an assignment into per-drone leg timelines; the Simulator
// steps a clock over those timelines to track positions, completed
// deliveries and window outcomes.
package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/elektrokombinacija/drone-route-planner/internal/algo"
	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
)

// SimulationConfig configures a simulation run.
type SimulationConfig struct {
	// Instance to simulate
	Instance *core.Instance

	// Planner producing the assignment
	Assigner algo.Assigner

	// Load model used when replaying the assignment
	Load LoadModel

	// Clock start in minutes
	StartTime float64

	// Simulated horizon after the last arrival, in minutes
	Tail float64

	// Clock step in minutes
	TimeStep float64

	Intersection geo.Mode
}

// DefaultConfig returns default simulation settings.
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		Tail:     1,
		TimeStep: 0.5,
	}
}

// SimulationMetrics collects counters during a run.
type SimulationMetrics struct {
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	SimulatedTime float64   `json:"simulated_minutes"`
	Steps         int       `json:"steps"`

	PlanningTimeMs float64 `json:"planning_ms"`

	DeliveriesAssigned  int `json:"deliveries_assigned"`
	DeliveriesCompleted int `json:"deliveries_completed"`
	DeliveriesFailed    int `json:"deliveries_failed"`

	WindowsMet      int     `json:"windows_met"`
	WindowsMissed   int     `json:"windows_missed"`
	AvgSlack        float64 `json:"avg_slack"`
	MinSlack        float64 `json:"min_slack"`
	ZoneViolations  int     `json:"zone_violations"`
	Recharges       int     `json:"recharges"`
	TotalDistance   float64 `json:"total_distance"`
	AvgBatteryLevel float64 `json:"avg_battery_pct"`
	Makespan        float64 `json:"makespan"`
}

// Simulator steps a clock over a replayed plan.
type Simulator struct {
	mu sync.Mutex

	config SimulationConfig

	currentTime float64
	plan        *Plan
	positions   map[core.DroneID]core.Pos
	done        map[core.DeliveryID]bool

	metrics SimulationMetrics
}

// NewSimulator creates a simulator. Zero step or tail values take defaults.
func NewSimulator(config SimulationConfig) *Simulator {
	def := DefaultConfig()
	if config.TimeStep <= 0 {
		config.TimeStep = def.TimeStep
	}
	if config.Tail < 0 {
		config.Tail = 0
	}
	s := &Simulator{
		config:    config,
		positions: make(map[core.DroneID]core.Pos),
		done:      make(map[core.DeliveryID]bool),
		metrics:   SimulationMetrics{MinSlack: math.Inf(1)},
	}
	if config.Instance != nil {
		for _, d := range config.Instance.Drones {
			s.positions[d.ID] = d.Start
		}
	}
	return s
}

// Run plans, replays and steps the clock until every flown leg is over.
func (s *Simulator) Run(ctx context.Context) (*SimulationMetrics, error) {
	if s.config.Instance == nil || s.config.Assigner == nil {
		return nil, fmt.Errorf("simulation needs an instance and an assigner: %w", core.ErrInvalidInput)
	}
	s.metrics.StartTime = time.Now()
	s.planRoutes()

	_, end := s.plan.Span()
	end += s.config.Tail
	s.currentTime = s.config.StartTime
	for s.currentTime <= end {
		select {
		case <-ctx.Done():
			return &s.metrics, ctx.Err()
		default:
		}
		s.step()
		s.currentTime += s.config.TimeStep
	}
	s.finish()
	return &s.metrics, nil
}

func (s *Simulator) planRoutes() {
	s.mu.Lock()
	defer s.mu.Unlock()

	began := time.Now()
	assignment := s.config.Assigner.Assign(s.config.Instance, s.config.StartTime)
	s.metrics.PlanningTimeMs = float64(time.Since(began).Microseconds()) / 1000

	s.plan = Replay(s.config.Instance, assignment, s.config.StartTime, s.config.Intersection, s.config.Load)
	s.metrics.DeliveriesAssigned = assignment.Count()
}

// step advances positions and settles legs that arrived by the current time.
func (s *Simulator) step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.Steps++
	for i := range s.plan.Timelines {
		tl := &s.plan.Timelines[i]
		s.positions[tl.Drone] = tl.PositionAt(s.currentTime)
		for _, leg := range tl.Legs {
			if s.done[leg.Delivery] || leg.Arrive > s.currentTime {
				continue
			}
			s.settle(leg)
		}
	}
}

func (s *Simulator) settle(leg LegRecord) {
	s.done[leg.Delivery] = true
	if leg.Recharged {
		s.metrics.Recharges++
	}
	if leg.Flown() {
		s.metrics.TotalDistance += leg.Distance
	}

	switch leg.Violation {
	case algo.ViolationNone:
		s.metrics.DeliveriesCompleted++
		s.metrics.WindowsMet++
		dp, err := s.config.Instance.DeliveryByID(leg.Delivery)
		if err != nil {
			return
		}
		slack := dp.Window.End - leg.Arrive
		n := float64(s.metrics.WindowsMet)
		s.metrics.AvgSlack = (s.metrics.AvgSlack*(n-1) + slack) / n
		if slack < s.metrics.MinSlack {
			s.metrics.MinSlack = slack
		}
	case algo.ViolationWindow:
		s.metrics.DeliveriesFailed++
		s.metrics.WindowsMissed++
	case algo.ViolationZone:
		s.metrics.DeliveriesFailed++
		s.metrics.ZoneViolations++
	default:
		s.metrics.DeliveriesFailed++
	}
}

func (s *Simulator) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.EndTime = time.Now()
	s.metrics.SimulatedTime = s.currentTime - s.config.StartTime
	if math.IsInf(s.metrics.MinSlack, 1) {
		s.metrics.MinSlack = 0
	}

	var pct float64
	for _, tl := range s.plan.Timelines {
		d, err := s.config.Instance.DroneByID(tl.Drone)
		if err != nil {
			continue
		}
		level := d.Battery
		for _, l := range tl.Legs {
			if l.Flown() {
				level = l.BatteryAfter
			}
		}
		pct += d.BatteryPercentage(level)
		if end, ok := tl.End(); ok && end-s.config.StartTime > s.metrics.Makespan {
			s.metrics.Makespan = end - s.config.StartTime
		}
	}
	if n := len(s.plan.Timelines); n > 0 {
		s.metrics.AvgBatteryLevel = pct / float64(n)
	}
}

// Position returns the drone's current simulated position.
func (s *Simulator) Position(id core.DroneID) (core.Pos, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[id]
	return p, ok
}

// Plan returns the replayed plan, nil before Run.
func (s *Simulator) Plan() *Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// Metrics returns current simulation metrics.
func (s *Simulator) Metrics() SimulationMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// SimulationResult is the final output of a simulation run.
type SimulationResult struct {
	Planner string            `json:"planner"`
	Metrics SimulationMetrics `json:"metrics"`
	Plan    *Plan             `json:"plan,omitempty"`
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
}

// RunSimulation runs a complete simulation with a wall-clock timeout.
func RunSimulation(config SimulationConfig, timeout time.Duration) (*SimulationResult, error) {
	sim := NewSimulator(config)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	metrics, err := sim.Run(ctx)
	result := &SimulationResult{Success: err == nil, Plan: sim.Plan()}
	if config.Assigner != nil {
		result.Planner = config.Assigner.Name()
	}
	if err != nil {
		result.Error = err.Error()
	}
	if metrics != nil {
		result.Metrics = *metrics
	}
	return result, err
}

// ExportResults writes simulation results to a JSON file.
func ExportResults(path string, results []*SimulationResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

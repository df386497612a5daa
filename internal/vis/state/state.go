// Package state holds what the visualiser shows: the scenario, the planner
// report and the playback clock.
package state

import (
	"fmt"
	"strings"

	"github.com/elektrokombinacija/drone-route-planner/internal/algo"
	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
	"github.com/elektrokombinacija/drone-route-planner/internal/planner"
	"github.com/elektrokombinacija/drone-route-planner/internal/sim"
)

// View selects which planner output is drawn.
type View int

const (
	ViewCSP   View = iota // assignment solver routes
	ViewGA                // route optimiser routes
	ViewPaths             // A* paths over the graph
	ViewGraph             // the spatial graph at the playback time
	viewCount
)

func (v View) String() string {
	return [...]string{"CSP", "GA", "A*", "Graph"}[v]
}

// State holds all visualisation state.
type State struct {
	Instance *core.Instance
	Report   *planner.Report
	Mode     geo.Mode
	View     View
	Playback *PlaybackState
	Selected core.DroneID // zero when nothing is selected

	graph    *core.Workspace
	graphKey string
}

// NewState creates the state for inst. rep may be nil, in which case only
// the scenario and its graph are shown.
func NewState(inst *core.Instance, rep *planner.Report, mode geo.Mode) *State {
	start, end := 0.0, 0.0
	if rep != nil {
		start, end = rep.StartTime, rep.StartTime
		for _, p := range []*sim.Plan{rep.CSPPlan, rep.GAPlan} {
			if p == nil {
				continue
			}
			_, to := p.Span()
			end = max(end, to)
		}
	}
	// Show the zone schedule even when nothing flies.
	for _, z := range inst.Zones {
		if z.Active.End > end && z.Active.End-start < 24*60 {
			end = z.Active.End
		}
	}

	view := ViewCSP
	if rep != nil && rep.CSPPlan == nil && rep.GAPlan != nil {
		view = ViewGA
	}
	return &State{
		Instance: inst,
		Report:   rep,
		Mode:     mode,
		View:     view,
		Playback: NewPlaybackState(start, end),
	}
}

// NextView cycles through the views.
func (s *State) NextView() { s.View = (s.View + 1) % viewCount }

// ActivePlan returns the replayed schedule animated in the current view.
func (s *State) ActivePlan() *sim.Plan {
	if s.Report == nil {
		return nil
	}
	if s.View == ViewGA {
		return s.Report.GAPlan
	}
	return s.Report.CSPPlan
}

func (s *State) timeline(id core.DroneID) *sim.Timeline {
	plan := s.ActivePlan()
	if plan == nil {
		return nil
	}
	for i := range plan.Timelines {
		if plan.Timelines[i].Drone == id {
			return &plan.Timelines[i]
		}
	}
	return nil
}

// CurrentPositions returns every drone's position at the playback time.
func (s *State) CurrentPositions() map[core.DroneID]core.Pos {
	positions := make(map[core.DroneID]core.Pos, len(s.Instance.Drones))
	for _, d := range s.Instance.Drones {
		if tl := s.timeline(d.ID); tl != nil {
			positions[d.ID] = tl.PositionAt(s.Playback.Current)
		} else {
			positions[d.ID] = d.Start
		}
	}
	return positions
}

// Trail returns the points a drone has flown through so far, ending at its
// current position.
func (s *State) Trail(id core.DroneID) []core.Pos {
	tl := s.timeline(id)
	if tl == nil {
		return nil
	}
	trail := []core.Pos{tl.Start}
	for _, l := range tl.Legs {
		if !l.Flown() || l.Arrive > s.Playback.Current {
			continue
		}
		trail = append(trail, l.To)
	}
	if cur := tl.PositionAt(s.Playback.Current); cur != trail[len(trail)-1] {
		trail = append(trail, cur)
	}
	if len(trail) < 2 {
		return nil
	}
	return trail
}

// Route returns the full planned stop sequence of a drone.
func (s *State) Route(id core.DroneID) []core.Pos {
	tl := s.timeline(id)
	if tl == nil {
		return nil
	}
	route := []core.Pos{tl.Start}
	for _, l := range tl.Legs {
		if l.Flown() {
			route = append(route, l.To)
		}
	}
	return route
}

// Missed returns the deliveries in the active plan that were refused or
// reached after their window closed.
func (s *State) Missed() map[core.DeliveryID]bool {
	missed := make(map[core.DeliveryID]bool)
	plan := s.ActivePlan()
	if plan == nil {
		return missed
	}
	for _, tl := range plan.Timelines {
		for _, l := range tl.Legs {
			if l.Violation != algo.ViolationNone {
				missed[l.Delivery] = true
			}
		}
	}
	return missed
}

// Delivered returns the deliveries reached on time by the playback time.
func (s *State) Delivered() map[core.DeliveryID]bool {
	done := make(map[core.DeliveryID]bool)
	plan := s.ActivePlan()
	if plan == nil {
		return done
	}
	for _, tl := range plan.Timelines {
		for _, l := range tl.Legs {
			if l.Violation == algo.ViolationNone && l.Arrive <= s.Playback.Current {
				done[l.Delivery] = true
			}
		}
	}
	return done
}

// ZoneActive reports which zones are active at the playback time.
func (s *State) ZoneActive() map[int]bool {
	active := make(map[int]bool, len(s.Instance.Zones))
	for _, z := range s.Instance.Zones {
		active[z.ID] = z.ActiveAt(s.Playback.Current)
	}
	return active
}

// Graph returns the spatial graph at the playback time. It is rebuilt only
// when the set of active zones changes.
func (s *State) Graph() *core.Workspace {
	var key strings.Builder
	for _, z := range s.Instance.Zones {
		if z.ActiveAt(s.Playback.Current) {
			fmt.Fprintf(&key, "%d,", z.ID)
		}
	}
	if s.graph == nil || key.String() != s.graphKey {
		s.graph = core.BuildWorkspace(s.Instance, s.Playback.Current, s.Mode)
		s.graphKey = key.String()
	}
	return s.graph
}

// PathLine is one A* answer as drawable points.
type PathLine struct {
	Drone  core.DroneID
	Points []core.Pos
}

// Paths returns the found A* paths from the report.
func (s *State) Paths() []PathLine {
	if s.Report == nil {
		return nil
	}
	var lines []PathLine
	for _, pr := range s.Report.Paths {
		if !pr.Path.Found() {
			continue
		}
		line := PathLine{Drone: pr.Drone}
		for _, n := range pr.Path.Nodes {
			if p, err := s.Instance.NodePosition(n); err == nil {
				line.Points = append(line.Points, p)
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// SelectDrone toggles the highlighted drone.
func (s *State) SelectDrone(id core.DroneID) {
	if s.Selected == id {
		s.Selected = 0
		return
	}
	s.Selected = id
}

// Status is a one-line description of the current view.
func (s *State) Status() string {
	n := len(s.Instance.Deliveries)
	switch s.View {
	case ViewGraph:
		g := s.Graph()
		return fmt.Sprintf("graph: %d nodes, %d edges", len(g.Nodes()), g.EdgeCount())
	case ViewPaths:
		return fmt.Sprintf("A*: %d paths", len(s.Paths()))
	}
	if s.ActivePlan() == nil {
		return fmt.Sprintf("%s: not run", s.View)
	}
	return fmt.Sprintf("%s: %d/%d delivered", s.View, len(s.Delivered()), n)
}

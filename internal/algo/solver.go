// Package algo implements the drone delivery planners: A* path search,
// constraint-based assignment and the genetic route optimiser.
package algo

import (
	"sort"

	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
)

// Assigner produces a delivery assignment for a scenario.
type Assigner interface {
	// Assign runs the planner from startTime. The result may be partial.
	Assign(inst *core.Instance, startTime float64) core.Assignment

	// Name returns the algorithm name.
	Name() string
}

// Violation classifies why a leg cannot be served as planned.
type Violation int

const (
	ViolationNone     Violation = iota
	ViolationCapacity           // payload above the drone's limit
	ViolationBattery            // leg needs more charge than is left
	ViolationZone               // leg enters an active no-fly zone
	ViolationWindow             // arrival outside the delivery window
)

func (v Violation) String() string {
	return [...]string{"none", "capacity", "battery", "zone", "window"}[v]
}

// MarshalText renders the violation name in reports.
func (v Violation) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Flown reports whether the drone still flies a leg with this outcome.
func (v Violation) Flown() bool {
	return v == ViolationNone || v == ViolationZone || v == ViolationWindow
}

// FlightState is a drone's dynamic state during planning. It is a value:
// every search branch and evaluation owns its copy.
type FlightState struct {
	Pos     core.Pos
	Battery float64
	Elapsed float64
}

// StartState returns a drone at its start with a full battery.
func StartState(d *core.Drone, startTime float64) FlightState {
	return FlightState{Pos: d.Start, Battery: d.Battery, Elapsed: startTime}
}

// Leg is the outcome of flying from a state to a delivery.
type Leg struct {
	Delivery  core.DeliveryID
	Distance  float64
	Depart    float64
	Arrive    float64
	Recharged bool
	Violation Violation
	Next      FlightState // unchanged from the input state unless the leg is flown
}

// FlyLeg evaluates a leg to dp carrying load. A drone that would fall below
// the low-battery threshold recharges to full before departing.
func FlyLeg(inst *core.Instance, d *core.Drone, s FlightState, dp *core.DeliveryPoint, load float64, mode geo.Mode) Leg {
	leg := Leg{Delivery: dp.ID, Next: s, Depart: s.Elapsed, Arrive: s.Elapsed}
	if !d.CanCarry(load) {
		leg.Violation = ViolationCapacity
		return leg
	}

	leg.Distance = s.Pos.Dist(dp.Pos)
	drain := d.Drain(leg.Distance)
	if drain > s.Battery {
		leg.Violation = ViolationBattery
		return leg
	}

	battery, elapsed := s.Battery, s.Elapsed
	if d.IsLowBattery(battery - drain) {
		battery = d.Battery
		elapsed += d.ChargeTime
		leg.Recharged = true
	}
	leg.Depart = elapsed
	leg.Arrive = elapsed + d.TravelTime(leg.Distance)
	leg.Next = FlightState{Pos: dp.Pos, Battery: battery - drain, Elapsed: leg.Arrive}

	switch {
	case inst.SegmentBlocked(s.Pos, dp.Pos, leg.Depart, leg.Arrive, mode):
		leg.Violation = ViolationZone
	case !dp.Window.Contains(leg.Arrive):
		leg.Violation = ViolationWindow
	}
	return leg
}

// priorityOrder returns deliveries by descending priority, then ascending ID.
func priorityOrder(inst *core.Instance) []*core.DeliveryPoint {
	order := append([]*core.DeliveryPoint(nil), inst.Deliveries...)
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Priority != order[j].Priority {
			return order[i].Priority > order[j].Priority
		}
		return order[i].ID < order[j].ID
	})
	return order
}

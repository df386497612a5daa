package sim

import (
	"sort"

	"github.com/elektrokombinacija/drone-route-planner/internal/algo"
	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
)

// LoadModel selects how payload is counted when replaying a route.
type LoadModel int

const (
	// LoadPerLeg carries only the parcel being delivered, as the
	// assignment solver checks it.
	LoadPerLeg LoadModel = iota
	// LoadCumulative loads every parcel of the route at the start and drops
	// one per stop, as the route optimiser scores it.
	LoadCumulative
)

// LegRecord is one replayed leg.
type LegRecord struct {
	Delivery     core.DeliveryID `json:"delivery"`
	From         core.Pos        `json:"from"`
	To           core.Pos        `json:"to"`
	Distance     float64         `json:"distance"`
	Depart       float64         `json:"depart"`
	Arrive       float64         `json:"arrive"`
	BatteryAfter float64         `json:"battery_after"`
	Recharged    bool            `json:"recharged"`
	Violation    algo.Violation  `json:"violation"`
}

// Flown reports whether the drone actually moved on this leg.
func (l LegRecord) Flown() bool { return l.Violation.Flown() }

// Timeline is the replayed schedule of one drone.
type Timeline struct {
	Drone core.DroneID `json:"drone"`
	Start core.Pos     `json:"start"`
	Legs  []LegRecord  `json:"legs"`
}

// PositionAt returns the drone position at time t, interpolating along
// flown legs. Before the first departure the drone sits at its start.
func (tl *Timeline) PositionAt(t float64) core.Pos {
	pos := tl.Start
	for _, l := range tl.Legs {
		if !l.Flown() {
			continue
		}
		if t < l.Depart {
			return pos
		}
		if t <= l.Arrive {
			span := l.Arrive - l.Depart
			if span <= 0 {
				return l.To
			}
			f := (t - l.Depart) / span
			return core.Pos{X: l.From.X + f*(l.To.X-l.From.X), Y: l.From.Y + f*(l.To.Y-l.From.Y)}
		}
		pos = l.To
	}
	return pos
}

// End returns the arrival time of the last flown leg, or false if the drone
// never moves.
func (tl *Timeline) End() (float64, bool) {
	for i := len(tl.Legs) - 1; i >= 0; i-- {
		if tl.Legs[i].Flown() {
			return tl.Legs[i].Arrive, true
		}
	}
	return 0, false
}

// Plan is a replayed fleet schedule, ordered by drone id.
type Plan struct {
	StartTime float64    `json:"start_time"`
	Timelines []Timeline `json:"timelines"`
}

// Span returns the earliest departure and latest arrival over all flown legs.
func (p *Plan) Span() (from, to float64) {
	from, to = p.StartTime, p.StartTime
	for _, tl := range p.Timelines {
		if end, ok := tl.End(); ok && end > to {
			to = end
		}
	}
	return from, to
}

// Replay flies each drone's route in order from startTime using the same
// leg model the planners use.
func Replay(inst *core.Instance, routes core.Assignment, startTime float64, mode geo.Mode, load LoadModel) *Plan {
	plan := &Plan{StartTime: startTime}
	for _, d := range inst.Drones {
		tl := Timeline{Drone: d.ID, Start: d.Start}
		route := routes[d.ID]

		remaining := 0.0
		if load == LoadCumulative {
			for _, id := range route {
				if dp, err := inst.DeliveryByID(id); err == nil {
					remaining += dp.Weight
				}
			}
		}

		st := algo.StartState(d, startTime)
		for _, id := range route {
			dp, err := inst.DeliveryByID(id)
			if err != nil {
				continue
			}
			carried := dp.Weight
			if load == LoadCumulative {
				carried = remaining
				remaining -= dp.Weight
			}
			leg := algo.FlyLeg(inst, d, st, dp, carried, mode)
			rec := LegRecord{
				Delivery:     dp.ID,
				From:         st.Pos,
				To:           dp.Pos,
				Distance:     leg.Distance,
				Depart:       leg.Depart,
				Arrive:       leg.Arrive,
				BatteryAfter: leg.Next.Battery,
				Recharged:    leg.Recharged,
				Violation:    leg.Violation,
			}
			if leg.Violation.Flown() {
				st = leg.Next
			} else {
				rec.To = st.Pos
			}
			tl.Legs = append(tl.Legs, rec)
		}
		plan.Timelines = append(plan.Timelines, tl)
	}
	sort.Slice(plan.Timelines, func(i, j int) bool { return plan.Timelines[i].Drone < plan.Timelines[j].Drone })
	return plan
}

package core

// DeliveryID is a unique delivery identifier.
type DeliveryID int

// Priority bounds; 5 is the most urgent.
const (
	MinPriority = 1
	MaxPriority = 5
)

// TimeWindow is a closed interval in minutes.
type TimeWindow struct {
	Start, End float64
}

// Contains reports whether t lies inside the window, bounds included.
func (w TimeWindow) Contains(t float64) bool {
	return w.Start <= t && t <= w.End
}

// Overlaps reports whether [from, to] shares an instant with the window.
func (w TimeWindow) Overlaps(from, to float64) bool {
	return w.Start <= to && from <= w.End
}

// DeliveryPoint is a parcel drop.
type DeliveryPoint struct {
	ID       DeliveryID
	Pos      Pos
	Weight   float64
	Priority int
	Window   TimeWindow
}

// NewDeliveryPoint creates a validated delivery point.
func NewDeliveryPoint(id DeliveryID, pos Pos, weight float64, priority int, window TimeWindow) (*DeliveryPoint, error) {
	dp := &DeliveryPoint{ID: id, Pos: pos, Weight: weight, Priority: priority, Window: window}
	if err := dp.Validate(); err != nil {
		return nil, err
	}
	return dp, nil
}

// Validate checks weight, priority and window.
func (dp *DeliveryPoint) Validate() error {
	switch {
	case !finite(dp.Pos.X) || !finite(dp.Pos.Y):
		return invalidf("delivery %d: non-finite position", dp.ID)
	case !finite(dp.Weight) || dp.Weight < 0:
		return invalidf("delivery %d: negative weight %.2f", dp.ID, dp.Weight)
	case dp.Priority < MinPriority || dp.Priority > MaxPriority:
		return invalidf("delivery %d: priority %d outside [%d,%d]", dp.ID, dp.Priority, MinPriority, MaxPriority)
	case !finite(dp.Window.Start) || !finite(dp.Window.End):
		return invalidf("delivery %d: non-finite time window", dp.ID)
	case dp.Window.End < dp.Window.Start:
		return invalidf("delivery %d: inverted time window [%.1f, %.1f]", dp.ID, dp.Window.Start, dp.Window.End)
	}
	return nil
}

// PriorityBonus is the fixed cost added for serving a delivery of priority p.
func PriorityBonus(p int) float64 {
	return float64(6-p) * 100
}

// AssignmentCost is the cost of flying dist to dp.
func AssignmentCost(dist float64, dp *DeliveryPoint) float64 {
	return dist*dp.Weight + PriorityBonus(dp.Priority)
}

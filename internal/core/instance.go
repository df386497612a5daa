package core

import (
	"fmt"
	"sort"

	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
)

// Instance is one planning scenario: fleet, parcels and restricted airspace.
// Entities are read-only once the instance is built.
type Instance struct {
	Drones     []*Drone         // sorted by ID
	Deliveries []*DeliveryPoint // sorted by ID
	Zones      []*NoFlyZone     // sorted by ID

	droneIndex    map[DroneID]int
	deliveryIndex map[DeliveryID]int
}

// NewInstance validates the entities and indexes them by id.
// The input slices are copied; the entities are shared.
func NewInstance(drones []*Drone, deliveries []*DeliveryPoint, zones []*NoFlyZone) (*Instance, error) {
	inst := &Instance{
		Drones:     append([]*Drone(nil), drones...),
		Deliveries: append([]*DeliveryPoint(nil), deliveries...),
		Zones:      append([]*NoFlyZone(nil), zones...),
	}
	sort.SliceStable(inst.Drones, func(i, j int) bool { return inst.Drones[i].ID < inst.Drones[j].ID })
	sort.SliceStable(inst.Deliveries, func(i, j int) bool { return inst.Deliveries[i].ID < inst.Deliveries[j].ID })
	sort.SliceStable(inst.Zones, func(i, j int) bool { return inst.Zones[i].ID < inst.Zones[j].ID })

	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// Validate checks every entity and id uniqueness, then rebuilds the indexes.
func (inst *Instance) Validate() error {
	inst.droneIndex = make(map[DroneID]int, len(inst.Drones))
	for i, d := range inst.Drones {
		if d == nil {
			return invalidf("drone at index %d is nil", i)
		}
		if err := d.Validate(); err != nil {
			return err
		}
		if _, dup := inst.droneIndex[d.ID]; dup {
			return invalidf("duplicate drone id %d", d.ID)
		}
		inst.droneIndex[d.ID] = i
	}

	inst.deliveryIndex = make(map[DeliveryID]int, len(inst.Deliveries))
	for i, dp := range inst.Deliveries {
		if dp == nil {
			return invalidf("delivery at index %d is nil", i)
		}
		if err := dp.Validate(); err != nil {
			return err
		}
		if _, dup := inst.deliveryIndex[dp.ID]; dup {
			return invalidf("duplicate delivery id %d", dp.ID)
		}
		inst.deliveryIndex[dp.ID] = i
	}

	seen := make(map[int]bool, len(inst.Zones))
	for i, z := range inst.Zones {
		if z == nil || z.shape == nil {
			return invalidf("zone at index %d was not built with NewNoFlyZone", i)
		}
		if seen[z.ID] {
			return invalidf("duplicate zone id %d", z.ID)
		}
		seen[z.ID] = true
	}
	return nil
}

// DroneByID finds a drone by ID.
func (inst *Instance) DroneByID(id DroneID) (*Drone, error) {
	i, ok := inst.droneIndex[id]
	if !ok {
		return nil, fmt.Errorf("drone %d: %w", id, ErrNotFound)
	}
	return inst.Drones[i], nil
}

// DeliveryByID finds a delivery point by ID.
func (inst *Instance) DeliveryByID(id DeliveryID) (*DeliveryPoint, error) {
	i, ok := inst.deliveryIndex[id]
	if !ok {
		return nil, fmt.Errorf("delivery %d: %w", id, ErrNotFound)
	}
	return inst.Deliveries[i], nil
}

// DroneIndex returns the position of a drone in Drones.
func (inst *Instance) DroneIndex(id DroneID) (int, bool) {
	i, ok := inst.droneIndex[id]
	return i, ok
}

// HasDelivery reports whether id is registered.
func (inst *Instance) HasDelivery(id DeliveryID) bool {
	_, ok := inst.deliveryIndex[id]
	return ok
}

// NodePosition resolves a node's coordinates.
func (inst *Instance) NodePosition(n NodeID) (Pos, error) {
	switch n.Kind {
	case KindDrone:
		d, err := inst.DroneByID(DroneID(n.ID))
		if err != nil {
			return Pos{}, err
		}
		return d.Start, nil
	case KindDelivery:
		dp, err := inst.DeliveryByID(DeliveryID(n.ID))
		if err != nil {
			return Pos{}, err
		}
		return dp.Pos, nil
	}
	return Pos{}, fmt.Errorf("node %v: %w", n, ErrNotFound)
}

// SegmentBlocked reports whether any zone active during [from, to] blocks a-b.
func (inst *Instance) SegmentBlocked(a, b Pos, from, to float64, mode geo.Mode) bool {
	for _, z := range inst.Zones {
		if z.Blocks(a, b, from, to, mode) {
			return true
		}
	}
	return false
}

// Bounds returns the box enclosing all drones, deliveries and zones.
func (inst *Instance) Bounds() geo.Box {
	var pts []Pos
	for _, d := range inst.Drones {
		pts = append(pts, d.Start)
	}
	for _, dp := range inst.Deliveries {
		pts = append(pts, dp.Pos)
	}
	for _, z := range inst.Zones {
		b := z.Bounds()
		pts = append(pts, Pos{X: b.MinX, Y: b.MinY}, Pos{X: b.MaxX, Y: b.MaxY})
	}
	if len(pts) == 0 {
		return geo.Box{}
	}
	box := geo.BoxOf(pts[0], pts[0])
	for _, p := range pts[1:] {
		box = geo.Box{
			MinX: min(box.MinX, p.X), MinY: min(box.MinY, p.Y),
			MaxX: max(box.MaxX, p.X), MaxY: max(box.MaxY, p.Y),
		}
	}
	return box
}

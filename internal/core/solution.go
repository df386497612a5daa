package core

import (
	"fmt"
	"math"
)

// Assignment maps each drone to its ordered deliveries.
// A delivery appears in at most one list.
type Assignment map[DroneID][]DeliveryID

// NewAssignment creates an assignment with an empty list per drone.
func NewAssignment(inst *Instance) Assignment {
	a := make(Assignment, len(inst.Drones))
	for _, d := range inst.Drones {
		a[d.ID] = []DeliveryID{}
	}
	return a
}

// Clone returns a deep copy.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for id, list := range a {
		out[id] = append([]DeliveryID{}, list...)
	}
	return out
}

// Count returns the number of assigned deliveries.
func (a Assignment) Count() int {
	n := 0
	for _, list := range a {
		n += len(list)
	}
	return n
}

// Unassigned returns registered deliveries missing from the assignment, in ID order.
func (a Assignment) Unassigned(inst *Instance) []DeliveryID {
	used := make(map[DeliveryID]bool)
	for _, list := range a {
		for _, id := range list {
			used[id] = true
		}
	}
	var out []DeliveryID
	for _, dp := range inst.Deliveries {
		if !used[dp.ID] {
			out = append(out, dp.ID)
		}
	}
	return out
}

// Validate checks ids exist and no delivery is assigned twice.
func (a Assignment) Validate(inst *Instance) error {
	seen := make(map[DeliveryID]DroneID)
	for droneID, list := range a {
		if _, err := inst.DroneByID(droneID); err != nil {
			return err
		}
		for _, id := range list {
			if !inst.HasDelivery(id) {
				return fmt.Errorf("delivery %d: %w", id, ErrNotFound)
			}
			if other, dup := seen[id]; dup {
				return invalidf("delivery %d assigned to drones %d and %d", id, other, droneID)
			}
			seen[id] = droneID
		}
	}
	return nil
}

// Individual is a GA chromosome: routes index-aligned with Instance.Drones.
type Individual [][]DeliveryID

// NewIndividual creates an individual with an empty route per drone.
func NewIndividual(n int) Individual {
	ind := make(Individual, n)
	for i := range ind {
		ind[i] = []DeliveryID{}
	}
	return ind
}

// Clone returns a deep copy.
func (ind Individual) Clone() Individual {
	out := make(Individual, len(ind))
	for i, r := range ind {
		out[i] = append([]DeliveryID{}, r...)
	}
	return out
}

// Equal reports whether both individuals hold the same routes.
func (ind Individual) Equal(other Individual) bool {
	if len(ind) != len(other) {
		return false
	}
	for i := range ind {
		if len(ind[i]) != len(other[i]) {
			return false
		}
		for j := range ind[i] {
			if ind[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Count returns the number of genes.
func (ind Individual) Count() int {
	n := 0
	for _, r := range ind {
		n += len(r)
	}
	return n
}

// ToAssignment converts the individual to an assignment map.
func (ind Individual) ToAssignment(inst *Instance) Assignment {
	a := NewAssignment(inst)
	for i, d := range inst.Drones {
		if i < len(ind) {
			a[d.ID] = append([]DeliveryID{}, ind[i]...)
		}
	}
	return a
}

// Path is a node sequence with its total cost.
type Path struct {
	Nodes []NodeID
	Cost  float64
}

// NoPath is the result when the goal cannot be reached.
func NoPath() Path {
	return Path{Nodes: nil, Cost: math.Inf(1)}
}

// Found returns true if the path reaches a goal.
func (p Path) Found() bool {
	return len(p.Nodes) > 0 && !math.IsInf(p.Cost, 1)
}

package core

import (
	"errors"

	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
)

// NoFlyZone is restricted airspace during its active interval.
type NoFlyZone struct {
	ID     int
	Active TimeWindow
	shape  *geo.Polygon
}

// NewNoFlyZone validates the ring and interval and builds the zone.
func NewNoFlyZone(id int, ring []Pos, active TimeWindow) (*NoFlyZone, error) {
	if !finite(active.Start) || !finite(active.End) {
		return nil, invalidf("zone %d: non-finite active interval", id)
	}
	if active.End < active.Start {
		return nil, invalidf("zone %d: inverted active interval [%.1f, %.1f]", id, active.Start, active.End)
	}
	shape, err := geo.NewPolygon(ring)
	if err != nil {
		if errors.Is(err, geo.ErrDegeneratePolygon) {
			return nil, invalidf("zone %d: %v", id, err)
		}
		return nil, err
	}
	return &NoFlyZone{ID: id, Active: active, shape: shape}, nil
}

// Ring returns the zone's vertices.
func (z *NoFlyZone) Ring() []Pos {
	return z.shape.Ring()
}

// Centroid returns the zone's area centroid.
func (z *NoFlyZone) Centroid() Pos {
	return z.shape.Centroid()
}

// Bounds returns the zone's bounding box.
func (z *NoFlyZone) Bounds() geo.Box {
	return z.shape.Bounds()
}

// ActiveAt reports whether the zone is active at t.
func (z *NoFlyZone) ActiveAt(t float64) bool {
	return z.Active.Contains(t)
}

// Blocks reports whether a flight from a to b during [from, to] enters the zone.
func (z *NoFlyZone) Blocks(a, b Pos, from, to float64, mode geo.Mode) bool {
	if !z.Active.Overlaps(from, to) {
		return false
	}
	return z.shape.Crosses(a, b, mode)
}

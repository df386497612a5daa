// Package geo provides planar geometry for no-fly zone checks.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrDegeneratePolygon is returned for rings that do not enclose an area.
var ErrDegeneratePolygon = errors.New("degenerate polygon")

// Point is a position on the plane.
type Point struct {
	X, Y float64
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Box is an axis-aligned bounding box.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// BoxOf returns the bounding box of the segment a-b.
func BoxOf(a, b Point) Box {
	return Box{
		MinX: math.Min(a.X, b.X),
		MinY: math.Min(a.Y, b.Y),
		MaxX: math.Max(a.X, b.X),
		MaxY: math.Max(a.Y, b.Y),
	}
}

// Overlaps reports whether two boxes share at least one point.
func (b Box) Overlaps(o Box) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX &&
		b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// Contains reports whether o lies entirely inside b.
func (b Box) Contains(o Box) bool {
	return b.MinX <= o.MinX && o.MaxX <= b.MaxX &&
		b.MinY <= o.MinY && o.MaxY <= b.MaxY
}

// Mode selects how a segment is tested against a zone polygon.
type Mode int

const (
	ModeBoundingBox Mode = iota // AABB overlap against every zone edge
	ModeExact                   // true segment/polygon intersection
)

func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	default:
		return "bbox"
	}
}

// ParseMode parses "bbox" or "exact".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bbox", "boundingbox":
		return ModeBoundingBox, nil
	case "exact":
		return ModeExact, nil
	default:
		return ModeBoundingBox, fmt.Errorf("unknown intersection mode %q", s)
	}
}

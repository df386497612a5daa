package geo

import (
	"fmt"
	"math"

	"github.com/peterstace/simplefeatures/geom"
)

// areaEpsilon is the smallest enclosed area accepted for a zone ring.
const areaEpsilon = 1e-9

// Polygon is an immutable simple polygon with cached bounds.
type Polygon struct {
	ring     []Point
	bounds   Box
	edges    []Box
	centroid Point
	shape    geom.Polygon
}

// NewPolygon builds a polygon from an implicitly closed ring.
// A repeated closing vertex is accepted and dropped.
func NewPolygon(ring []Point) (*Polygon, error) {
	pts := append([]Point(nil), ring...)
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return nil, fmt.Errorf("%w: %d vertices, need at least 3", ErrDegeneratePolygon, len(pts))
	}
	for _, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return nil, fmt.Errorf("%w: non-finite vertex", ErrDegeneratePolygon)
		}
	}

	area, cx, cy := 0.0, 0.0, 0.0
	n := len(pts)
	p := &Polygon{ring: pts, edges: make([]Box, n)}
	p.bounds = Box{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	flat := make([]float64, 0, 2*(n+1))
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		cross := a.X*b.Y - b.X*a.Y
		area += cross
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
		p.edges[i] = BoxOf(a, b)
		p.bounds.MinX = math.Min(p.bounds.MinX, a.X)
		p.bounds.MinY = math.Min(p.bounds.MinY, a.Y)
		p.bounds.MaxX = math.Max(p.bounds.MaxX, a.X)
		p.bounds.MaxY = math.Max(p.bounds.MaxY, a.Y)
		flat = append(flat, a.X, a.Y)
	}
	area /= 2
	if math.Abs(area) < areaEpsilon {
		return nil, fmt.Errorf("%w: zero area", ErrDegeneratePolygon)
	}
	p.centroid = Point{X: cx / (6 * area), Y: cy / (6 * area)}

	flat = append(flat, pts[0].X, pts[0].Y)
	shell, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegeneratePolygon, err)
	}
	if p.shape, err = geom.NewPolygon([]geom.LineString{shell}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegeneratePolygon, err)
	}

	return p, nil
}

// Ring returns a copy of the polygon vertices.
func (p *Polygon) Ring() []Point {
	return append([]Point(nil), p.ring...)
}

// Bounds returns the polygon's bounding box.
func (p *Polygon) Bounds() Box { return p.bounds }

// Centroid returns the area centroid.
func (p *Polygon) Centroid() Point { return p.centroid }

// Crosses reports whether the segment a-b hits the polygon under the given mode.
//
// In bounding-box mode the segment box is compared with the box of every
// polygon edge, and a segment whose box sits inside the polygon's box is
// treated as crossing as well. This rejects some near misses on diagonal
// edges and is kept as the default for compatibility with existing plans.
// In exact mode a segment with a non-finite endpoint counts as crossing.
func (p *Polygon) Crosses(a, b Point, mode Mode) bool {
	seg := BoxOf(a, b)
	if !seg.Overlaps(p.bounds) {
		return false
	}
	if mode == ModeExact {
		g, err := segmentGeometry(a, b)
		if err != nil {
			return true
		}
		return geom.Intersects(g, p.shape.AsGeometry())
	}
	if p.bounds.Contains(seg) {
		return true
	}
	for _, e := range p.edges {
		if seg.Overlaps(e) {
			return true
		}
	}
	return false
}

// segmentGeometry fails only for non-finite endpoints.
func segmentGeometry(a, b Point) (geom.Geometry, error) {
	if a == b {
		pt, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: a.X, Y: a.Y}})
		return pt.AsGeometry(), err
	}
	seq := geom.NewSequence([]float64{a.X, a.Y, b.X, b.Y}, geom.DimXY)
	ls, err := geom.NewLineString(seq)
	return ls.AsGeometry(), err
}

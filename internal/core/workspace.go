package core

import (
	"fmt"

	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
)

// Edge is a directed flight leg between two nodes.
type Edge struct {
	From, To NodeID
	Distance float64
	Cost     float64
}

// Workspace is the complete directed graph over drone starts and delivery
// points at one query time. Legs crossing an active zone are left out.
type Workspace struct {
	inst      *Instance
	queryTime float64
	mode      geo.Mode

	nodes     []NodeID
	positions map[NodeID]Pos
	edges     map[NodeID][]Edge // Adjacency list
}

// BuildWorkspace constructs the graph for inst at queryTime.
func BuildWorkspace(inst *Instance, queryTime float64, mode geo.Mode) *Workspace {
	w := &Workspace{
		inst:      inst,
		queryTime: queryTime,
		mode:      mode,
		positions: make(map[NodeID]Pos, len(inst.Drones)+len(inst.Deliveries)),
		edges:     make(map[NodeID][]Edge, len(inst.Drones)+len(inst.Deliveries)),
	}
	for _, d := range inst.Drones {
		w.addNode(DroneNode(d.ID), d.Start)
	}
	for _, dp := range inst.Deliveries {
		w.addNode(DeliveryNode(dp.ID), dp.Pos)
	}

	for _, from := range w.nodes {
		a := w.positions[from]
		for _, to := range w.nodes {
			if from == to {
				continue
			}
			b := w.positions[to]
			if inst.SegmentBlocked(a, b, queryTime, queryTime, mode) {
				continue
			}
			dist := a.Dist(b)
			w.edges[from] = append(w.edges[from], Edge{
				From:     from,
				To:       to,
				Distance: dist,
				Cost:     w.edgeCost(to, dist),
			})
		}
	}
	return w
}

func (w *Workspace) addNode(n NodeID, p Pos) {
	w.nodes = append(w.nodes, n)
	w.positions[n] = p
	w.edges[n] = []Edge{}
}

// edgeCost charges weight and priority for delivery targets, distance only otherwise.
func (w *Workspace) edgeCost(to NodeID, dist float64) float64 {
	if to.IsDelivery() {
		if dp, err := w.inst.DeliveryByID(DeliveryID(to.ID)); err == nil {
			return AssignmentCost(dist, dp)
		}
	}
	return dist
}

// Instance returns the scenario the graph was built from.
func (w *Workspace) Instance() *Instance { return w.inst }

// QueryTime returns the time zones were evaluated at.
func (w *Workspace) QueryTime() float64 { return w.queryTime }

// Mode returns the intersection mode used for zone tests.
func (w *Workspace) Mode() geo.Mode { return w.mode }

// Nodes returns all nodes, drones first, each group in ID order.
func (w *Workspace) Nodes() []NodeID {
	return append([]NodeID(nil), w.nodes...)
}

// Neighbors returns the outgoing edges of n.
func (w *Workspace) Neighbors(n NodeID) ([]Edge, error) {
	edges, ok := w.edges[n]
	if !ok {
		return nil, fmt.Errorf("node %v: %w", n, ErrNotFound)
	}
	return edges, nil
}

// Position resolves the coordinates of n.
func (w *Workspace) Position(n NodeID) (Pos, error) {
	p, ok := w.positions[n]
	if !ok {
		return Pos{}, fmt.Errorf("node %v: %w", n, ErrNotFound)
	}
	return p, nil
}

// Edge returns the edge from -> to if present.
func (w *Workspace) Edge(from, to NodeID) (Edge, bool) {
	for _, e := range w.edges[from] {
		if e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// EdgeCount returns the number of directed edges.
func (w *Workspace) EdgeCount() int {
	n := 0
	for _, edges := range w.edges {
		n += len(edges)
	}
	return n
}

// Payload returns the parcel weight picked up at n.
func (w *Workspace) Payload(n NodeID) float64 {
	if !n.IsDelivery() {
		return 0
	}
	dp, err := w.inst.DeliveryByID(DeliveryID(n.ID))
	if err != nil {
		return 0
	}
	return dp.Weight
}

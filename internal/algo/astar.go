package algo

import (
	"container/heap"
	"fmt"

	"github.com/elektrokombinacija/drone-route-planner/internal/core"
)

// Heuristic penalties steering the search away from zones.
const (
	ZonePenalty      = 1000.0 // straight line to goal enters an active zone
	ProximityPenalty = 100.0  // node lies near a zone centroid
	ProximityRadius  = 10.0
)

// astarNode for priority queue.
type astarNode struct {
	node    core.NodeID
	g       float64 // Cost so far
	f       float64 // g + h
	payload float64 // parcels picked up along the path
	energy  float64 // battery used along the path
	parent  *astarNode
	index   int // heap index
}

// astarHeap implements heap.Interface.
type astarHeap []*astarNode

func (h astarHeap) Len() int           { return len(h) }
func (h astarHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h astarHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *astarHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// PathFinder runs A* over a workspace graph.
type PathFinder struct {
	ws       *core.Workspace
	expanded int
}

// NewPathFinder creates a path finder over ws.
func NewPathFinder(ws *core.Workspace) *PathFinder {
	return &PathFinder{ws: ws}
}

// Name returns the algorithm name.
func (pf *PathFinder) Name() string { return "A*" }

// Expanded returns the number of nodes expanded by the last search.
func (pf *PathFinder) Expanded() int { return pf.expanded }

// FindPath finds the least-cost path from start to goal for drone.
// Transitions exceeding the drone's payload or battery are pruned.
// An unreachable goal yields core.NoPath() and a nil error; unknown
// nodes yield core.NoPath() and an error wrapping core.ErrNotFound.
func (pf *PathFinder) FindPath(start, goal core.NodeID, drone *core.Drone, queryTime float64) (core.Path, error) {
	pf.expanded = 0
	ws := pf.ws
	if queryTime != ws.QueryTime() {
		ws = core.BuildWorkspace(ws.Instance(), queryTime, ws.Mode())
		pf.ws = ws
	}

	if _, err := ws.Position(start); err != nil {
		return core.NoPath(), fmt.Errorf("find path: start: %w", err)
	}
	goalPos, err := ws.Position(goal)
	if err != nil {
		return core.NoPath(), fmt.Errorf("find path: goal: %w", err)
	}
	if drone == nil {
		return core.NoPath(), fmt.Errorf("find path: drone: %w", core.ErrNotFound)
	}

	heuristic := func(n core.NodeID) float64 {
		if n == goal {
			return 0
		}
		p, _ := ws.Position(n)
		return pf.heuristic(p, goalPos, queryTime)
	}

	open := &astarHeap{}
	heap.Init(open)
	heap.Push(open, &astarNode{node: start, f: heuristic(start)})

	closed := make(map[core.NodeID]bool)
	bestG := map[core.NodeID]float64{start: 0}

	for open.Len() > 0 {
		current := heap.Pop(open).(*astarNode)

		if current.node == goal {
			return reconstructPath(current), nil
		}

		if closed[current.node] {
			continue
		}
		closed[current.node] = true
		pf.expanded++

		edges, _ := ws.Neighbors(current.node)
		for _, e := range edges {
			if closed[e.To] {
				continue
			}
			payload := current.payload + ws.Payload(e.To)
			if payload > drone.MaxWeight {
				continue
			}
			energy := current.energy + e.Distance*core.EnergyPerUnit
			if energy > drone.Battery {
				continue
			}

			g := current.g + e.Cost
			if old, seen := bestG[e.To]; seen && old <= g {
				continue
			}
			bestG[e.To] = g

			heap.Push(open, &astarNode{
				node:    e.To,
				g:       g,
				f:       g + heuristic(e.To),
				payload: payload,
				energy:  energy,
				parent:  current,
			})
		}
	}

	return core.NoPath(), nil // No path found
}

// heuristic is the straight-line distance plus zone penalties.
func (pf *PathFinder) heuristic(p, goal core.Pos, t float64) float64 {
	h := p.Dist(goal)
	inst := pf.ws.Instance()
	if inst.SegmentBlocked(p, goal, t, t, pf.ws.Mode()) {
		return h + ZonePenalty
	}
	for _, z := range inst.Zones {
		if p.Dist(z.Centroid()) <= ProximityRadius {
			return h + ProximityPenalty
		}
	}
	return h
}

func reconstructPath(node *astarNode) core.Path {
	var nodes []core.NodeID
	for n := node; n != nil; n = n.parent {
		nodes = append([]core.NodeID{n.node}, nodes...)
	}
	return core.Path{Nodes: nodes, Cost: node.g}
}

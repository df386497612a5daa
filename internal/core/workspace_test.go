package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
)

func mustInstance(t *testing.T, drones []*Drone, deliveries []*DeliveryPoint, zones []*NoFlyZone) *Instance {
	t.Helper()
	inst, err := NewInstance(drones, deliveries, zones)
	require.NoError(t, err)
	return inst
}

func mustZone(t *testing.T, id int, ring []Pos, active TimeWindow) *NoFlyZone {
	t.Helper()
	z, err := NewNoFlyZone(id, ring, active)
	require.NoError(t, err)
	return z
}

func TestBuildWorkspace_CompleteWithoutZones(t *testing.T) {
	inst := mustInstance(t,
		[]*Drone{{ID: 1, Start: Pos{X: 0, Y: 0}, MaxWeight: 10, Battery: 1000, Speed: 10}},
		[]*DeliveryPoint{
			{ID: 1, Pos: Pos{X: 3, Y: 4}, Weight: 2, Priority: 5, Window: TimeWindow{0, 100}},
			{ID: 2, Pos: Pos{X: 6, Y: 8}, Weight: 1, Priority: 1, Window: TimeWindow{0, 100}},
		},
		nil)

	ws := BuildWorkspace(inst, 0, geo.ModeBoundingBox)
	assert.Len(t, ws.Nodes(), 3)
	assert.Equal(t, 6, ws.EdgeCount(), "complete directed graph over 3 nodes")

	e, ok := ws.Edge(DroneNode(1), DeliveryNode(1))
	require.True(t, ok)
	assert.InDelta(t, 5.0, e.Distance, 1e-9)
	assert.InDelta(t, 5*2+100, e.Cost, 1e-9)

	back, ok := ws.Edge(DeliveryNode(2), DroneNode(1))
	require.True(t, ok)
	assert.InDelta(t, back.Distance, back.Cost, 1e-9, "drone targets cost distance only")
}

func TestBuildWorkspace_ZoneOmitsEdge(t *testing.T) {
	zone := mustZone(t, 7, []Pos{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}, TimeWindow{0, 1e6})
	inst := mustInstance(t,
		[]*Drone{{ID: 1, Start: Pos{X: 10, Y: 50}, MaxWeight: 10, Battery: 1000, Speed: 10}},
		[]*DeliveryPoint{{ID: 1, Pos: Pos{X: 90, Y: 50}, Weight: 1, Priority: 3, Window: TimeWindow{0, 1000}}},
		[]*NoFlyZone{zone})

	ws := BuildWorkspace(inst, 10, geo.ModeBoundingBox)
	_, ok := ws.Edge(DroneNode(1), DeliveryNode(1))
	assert.False(t, ok, "segment inside an active zone must be omitted")

	exact := BuildWorkspace(inst, 10, geo.ModeExact)
	_, ok = exact.Edge(DroneNode(1), DeliveryNode(1))
	assert.False(t, ok)
}

func TestBuildWorkspace_InactiveZoneIgnored(t *testing.T) {
	zone := mustZone(t, 7, []Pos{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}, TimeWindow{100, 200})
	inst := mustInstance(t,
		[]*Drone{{ID: 1, Start: Pos{X: 10, Y: 50}, MaxWeight: 10, Battery: 1000, Speed: 10}},
		[]*DeliveryPoint{{ID: 1, Pos: Pos{X: 90, Y: 50}, Weight: 1, Priority: 3, Window: TimeWindow{0, 1000}}},
		[]*NoFlyZone{zone})

	ws := BuildWorkspace(inst, 50, geo.ModeBoundingBox)
	_, ok := ws.Edge(DroneNode(1), DeliveryNode(1))
	assert.True(t, ok)
}

func TestWorkspace_UnknownNode(t *testing.T) {
	inst := mustInstance(t,
		[]*Drone{{ID: 1, MaxWeight: 10, Battery: 1000, Speed: 10}}, nil, nil)
	ws := BuildWorkspace(inst, 0, geo.ModeBoundingBox)

	_, err := ws.Neighbors(DeliveryNode(42))
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = ws.Position(DroneNode(9))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNewInstance_Rejects(t *testing.T) {
	d := &Drone{ID: 1, MaxWeight: 10, Battery: 1000, Speed: 10}

	_, err := NewInstance([]*Drone{d, d}, nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidInput), "duplicate drone id")

	_, err = NewInstance([]*Drone{d}, []*DeliveryPoint{{ID: 1, Weight: -1, Priority: 3}}, nil)
	assert.True(t, errors.Is(err, ErrInvalidInput), "negative weight")

	_, err = NewInstance([]*Drone{d}, nil, []*NoFlyZone{{ID: 1}})
	assert.True(t, errors.Is(err, ErrInvalidInput), "zone without shape")
}

func TestAssignment_Validate(t *testing.T) {
	inst := mustInstance(t,
		[]*Drone{
			{ID: 1, MaxWeight: 10, Battery: 1000, Speed: 10},
			{ID: 2, MaxWeight: 10, Battery: 1000, Speed: 10},
		},
		[]*DeliveryPoint{{ID: 1, Weight: 1, Priority: 3, Window: TimeWindow{0, 10}}},
		nil)

	ok := Assignment{1: {1}, 2: {}}
	assert.NoError(t, ok.Validate(inst))
	assert.Empty(t, ok.Unassigned(inst))

	dup := Assignment{1: {1}, 2: {1}}
	assert.True(t, errors.Is(dup.Validate(inst), ErrInvalidInput))

	unknown := Assignment{1: {99}}
	assert.True(t, errors.Is(unknown.Validate(inst), ErrNotFound))
}

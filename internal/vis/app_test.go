package vis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
	"github.com/elektrokombinacija/drone-route-planner/internal/planner"
	"github.com/elektrokombinacija/drone-route-planner/internal/sim"
	"github.com/elektrokombinacija/drone-route-planner/internal/vis/state"
)

func TestDroneLines(t *testing.T) {
	w := core.TimeWindow{End: 2000}
	inst, err := core.NewInstance(
		[]*core.Drone{
			{ID: 1, Start: core.Pos{X: 0, Y: 0}, MaxWeight: 10, Battery: 10000, Speed: 10},
			{ID: 2, Start: core.Pos{X: 50, Y: 0}, MaxWeight: 10, Battery: 10000, Speed: 10},
		},
		[]*core.DeliveryPoint{
			{ID: 1, Pos: core.Pos{X: 100, Y: 0}, Weight: 1, Priority: 3, Window: w},
			{ID: 2, Pos: core.Pos{X: 0, Y: 10}, Weight: 40, Priority: 3, Window: w},
		}, nil)
	require.NoError(t, err)

	rep := &planner.Report{
		StartTime: 600,
		CSPPlan:   sim.Replay(inst, core.Assignment{1: {1, 2}}, 600, geo.ModeBoundingBox, sim.LoadPerLeg),
	}
	st := state.NewState(inst, rep, geo.ModeBoundingBox)

	assert.Nil(t, droneLines(st), "nothing selected")

	st.SelectDrone(1)
	assert.Equal(t, []string{
		"Drone 1",
		"payload 10.0  battery 10000  speed 10.0",
		"#1  10:00-10:10  90%",
		"#2  10:10-10:10  90%  capacity",
	}, droneLines(st))

	st.SelectDrone(2)
	assert.Equal(t, "idle", droneLines(st)[2])

	st.View = state.ViewGA
	assert.Equal(t, "no plan in this view", droneLines(st)[2])
}

package scenario

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/drone-route-planner/internal/core"
)

const sample = `
name: downtown
startTime: "10:00"
drones:
  - {id: 1, start: [0, 0], maxWeight: 10, battery: 1000, speed: 10, chargeTime: 30}
deliveries:
  - {id: 1, pos: [10, 0], weight: 5, priority: 5, window: ["09:00", "17:00"]}
  - {id: 2, pos: [0, 10], weight: 2, priority: 1, window: [0, 1000.5]}
zones:
  - id: 1
    ring: [[20, 20], [30, 20], [30, 30], [20, 30]]
    active: ["09:30", 660]
`

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570.0, m)

	for _, bad := range []string{"930", "24:00", "10:60", "ab:10"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
	assert.Equal(t, "09:30", FormatClock(570.7))
}

func TestParse_MixedTimeFormats(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "downtown", f.Name)
	assert.Equal(t, 600.0, f.StartTime.Minutes())
	assert.Equal(t, Window{540, 1020}, f.Deliveries[0].Window)
	assert.Equal(t, Window{0, 1000.5}, f.Deliveries[1].Window)
	assert.Equal(t, Window{570, 660}, f.Zones[0].Active)

	inst, err := f.Instance()
	require.NoError(t, err)
	assert.Len(t, inst.Drones, 1)
	assert.Len(t, inst.Deliveries, 2)
	require.Len(t, inst.Zones, 1)
	assert.True(t, inst.Zones[0].ActiveAt(600))
	assert.Equal(t, 30.0, inst.Drones[0].ChargeTime)
}

func TestParse_BadTime(t *testing.T) {
	_, err := Parse([]byte(`startTime: "soon"`))
	assert.Error(t, err)
}

func TestInstance_RejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"negative weight": `deliveries: [{id: 1, pos: [0, 0], weight: -1, priority: 1, window: [0, 10]}]`,
		"inverted window": `deliveries: [{id: 1, pos: [0, 0], weight: 1, priority: 1, window: ["11:00", "10:00"]}]`,
		"short ring":      `zones: [{id: 1, ring: [[0, 0], [1, 1]], active: [0, 10]}]`,
		"projection":      "projection: utm\ndrones: [{id: 1, start: [0, 0], maxWeight: 1, battery: 1, speed: 1}]",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := Parse([]byte(doc))
			require.NoError(t, err)
			_, err = f.Instance()
			assert.True(t, errors.Is(err, core.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestInstance_ProjectsLonLat(t *testing.T) {
	f, err := Parse([]byte(`
projection: epsg:4326
drones: [{id: 1, start: [0, 0], maxWeight: 5, battery: 100, speed: 1}]
deliveries: [{id: 1, pos: [0.001, 0], weight: 1, priority: 3, window: [0, 100]}]
`))
	require.NoError(t, err)
	inst, err := f.Instance()
	require.NoError(t, err)

	assert.InDelta(t, 0, inst.Drones[0].Start.X, 1e-6)
	// 0.001 degrees of longitude at the equator is about 111 metres.
	assert.InDelta(t, 111.32, inst.Deliveries[0].Pos.X, 0.01)
}

func TestSaveLoad(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	inst, err := f.Instance()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, Save(path, FromInstance("downtown", inst, 600)))

	back, err := Load(path)
	require.NoError(t, err)
	again, err := back.Instance()
	require.NoError(t, err)
	assert.Equal(t, inst.Deliveries[0].Window, again.Deliveries[0].Window)
	assert.Equal(t, inst.Zones[0].Ring(), again.Zones[0].Ring())
	assert.Equal(t, 600.0, back.StartTime.Minutes())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	p := DefaultParams()
	p.Seed = 7
	a, b := Generate(p), Generate(p)
	assert.Equal(t, a, b, "same seed gives the same scenario")

	inst, err := a.Instance()
	require.NoError(t, err)
	assert.Len(t, inst.Drones, p.Drones)
	assert.Len(t, inst.Deliveries, p.Deliveries)
	assert.Len(t, inst.Zones, p.Zones)

	for _, d := range inst.Drones {
		assert.GreaterOrEqual(t, d.MaxWeight, 5.0)
		assert.LessOrEqual(t, d.MaxWeight, 20.0)
		assert.GreaterOrEqual(t, d.Battery, 5000.0)
		assert.LessOrEqual(t, d.Battery, 20000.0)
		assert.GreaterOrEqual(t, d.Speed, 5.0)
		assert.LessOrEqual(t, d.Speed, 15.0)
	}
	for _, dp := range inst.Deliveries {
		assert.Equal(t, core.TimeWindow{Start: 540, End: 1020}, dp.Window)
	}
}

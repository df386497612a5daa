package algo

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/drone-route-planner/internal/core"
)

// scenarioC: three drones, three parcels, one obvious pairing.
func scenarioC(t *testing.T) *core.Instance {
	w := core.TimeWindow{Start: 0, End: 1000}
	return newInstance(t,
		[]*core.Drone{
			{ID: 1, Start: core.Pos{X: 0, Y: 0}, MaxWeight: 10, Battery: 10000, Speed: 10},
			{ID: 2, Start: core.Pos{X: 10, Y: 0}, MaxWeight: 10, Battery: 10000, Speed: 10},
			{ID: 3, Start: core.Pos{X: 0, Y: 10}, MaxWeight: 10, Battery: 10000, Speed: 10},
		},
		[]*core.DeliveryPoint{
			{ID: 1, Pos: core.Pos{X: 5, Y: 5}, Weight: 2, Priority: 3, Window: w},
			{ID: 2, Pos: core.Pos{X: 15, Y: 5}, Weight: 2, Priority: 3, Window: w},
			{ID: 3, Pos: core.Pos{X: 5, Y: 15}, Weight: 2, Priority: 3, Window: w},
		}, nil)
}

func testGAConfig(mode CapacityMode) GAConfig {
	cfg := DefaultGAConfig()
	cfg.PopulationSize = 50
	cfg.Generations = 20
	cfg.Mode = mode
	cfg.Seed = 42
	return cfg
}

func TestRouteOptimizer_ScenarioC(t *testing.T) {
	inst := scenarioC(t)
	res := NewRouteOptimizer(testGAConfig(SingleParcel)).Run(inst, 0)

	require.NotNil(t, res.Best)
	assert.Equal(t, 3, res.Evaluation.Delivered)
	assert.Zero(t, res.Evaluation.Violations)
	assert.InDelta(t, 150-0.1*res.Evaluation.Energy, res.Fitness, 1e-9)
	assert.Equal(t, 3, res.Best.Count())
	assert.Equal(t, 20, res.Generations)
	assert.Len(t, res.History, 21)
}

func TestRouteOptimizer_HistoryNeverDecreases(t *testing.T) {
	for _, mode := range []CapacityMode{SingleParcel, MultiParcel} {
		for _, elite := range []EliteMode{EliteQuarter, EliteSingle} {
			cfg := testGAConfig(mode)
			cfg.Elitism = elite
			res := NewRouteOptimizer(cfg).Run(randomInstance(t, 3, 4, 10), 0)
			for i := 1; i < len(res.History); i++ {
				assert.GreaterOrEqual(t, res.History[i], res.History[i-1],
					"mode %v elitism %v generation %d", mode, elite, i)
			}
		}
	}
}

func TestRouteOptimizer_Deterministic(t *testing.T) {
	inst := randomInstance(t, 11, 3, 9)
	a := NewRouteOptimizer(testGAConfig(MultiParcel)).Run(inst, 0)
	b := NewRouteOptimizer(testGAConfig(MultiParcel)).Run(inst, 0)

	assert.True(t, a.Best.Equal(b.Best))
	assert.Equal(t, a.History, b.History)

	// Run reseeds, so repeating on the same optimiser matches too.
	o := NewRouteOptimizer(testGAConfig(MultiParcel))
	first := o.Run(inst, 0)
	second := o.Run(inst, 0)
	assert.Equal(t, first.History, second.History)
}

func TestRouteOptimizer_ObserverStopsEarly(t *testing.T) {
	cfg := testGAConfig(SingleParcel)
	var seen []int
	cfg.Observer = func(gen int, _ float64) bool {
		seen = append(seen, gen)
		return gen < 3
	}
	res := NewRouteOptimizer(cfg).Run(scenarioC(t), 0)

	assert.Equal(t, []int{0, 1, 2, 3}, seen)
	assert.Equal(t, 3, res.Generations)
	assert.Len(t, res.History, 4)
}

func TestRouteOptimizer_ResultIsStructurallyValid(t *testing.T) {
	for _, mode := range []CapacityMode{SingleParcel, MultiParcel} {
		inst := randomInstance(t, 5, 3, 10)
		o := NewRouteOptimizer(testGAConfig(mode))
		res := o.Run(inst, 0)
		require.NoError(t, o.ValidateStructure(inst, res.Best))
		require.NoError(t, res.Best.ToAssignment(inst).Validate(inst))
	}
}

func TestEvaluate_InvalidScoresNegativeInfinity(t *testing.T) {
	inst := scenarioC(t)
	o := NewRouteOptimizer(testGAConfig(SingleParcel))

	cases := map[string]core.Individual{
		"route count":   {{1}, {2}},
		"duplicate":     {{1}, {1}, {}},
		"unknown":       {{9}, {}, {}},
		"single excess": {{1, 2}, {}, {}},
	}
	for name, ind := range cases {
		t.Run(name, func(t *testing.T) {
			ev := o.Evaluate(inst, ind, 0)
			assert.False(t, ev.Valid)
			assert.True(t, math.IsInf(ev.Fitness, -1))
		})
	}
}

func TestEvaluate_CountsCapacityViolation(t *testing.T) {
	w := core.TimeWindow{End: 1000}
	inst := newInstance(t,
		[]*core.Drone{{ID: 1, Start: core.Pos{X: 0, Y: 0}, MaxWeight: 10, Battery: 10000, Speed: 10}},
		[]*core.DeliveryPoint{
			{ID: 1, Pos: core.Pos{X: 10, Y: 0}, Weight: 6, Priority: 3, Window: w},
			{ID: 2, Pos: core.Pos{X: 20, Y: 0}, Weight: 6, Priority: 3, Window: w},
		}, nil)
	o := NewRouteOptimizer(testGAConfig(MultiParcel))

	// Loaded with 12 the first leg is refused; the second flies from the start.
	ev := o.Evaluate(inst, core.Individual{{1, 2}}, 0)
	require.True(t, ev.Valid)
	assert.Equal(t, 1, ev.Delivered)
	assert.Equal(t, 1, ev.Violations)
	assert.InDelta(t, 20*core.FitnessEnergyFactor/10, ev.Energy, 1e-9)
	assert.InDelta(t, DeliveryReward-EnergyWeight*ev.Energy-ViolationPenalty, ev.Fitness, 1e-9)
}

func TestRepair(t *testing.T) {
	inst := scenarioC(t)

	single := NewRouteOptimizer(testGAConfig(SingleParcel))
	fixed := single.Repair(inst, core.Individual{{1, 2}, {1}, {}})
	require.NoError(t, single.ValidateStructure(inst, fixed))
	assert.Equal(t, core.Individual{{1}, {2}, {}}, fixed)
	assert.True(t, fixed.Equal(single.Repair(inst, fixed)), "repair is idempotent")

	multi := NewRouteOptimizer(testGAConfig(MultiParcel))
	fixed = multi.Repair(inst, core.Individual{{1, 2, 1}, {9, 3}, {2}})
	require.NoError(t, multi.ValidateStructure(inst, fixed))
	assert.Equal(t, core.Individual{{1, 2, 3}, {}, {}}, fixed)
	assert.True(t, fixed.Equal(multi.Repair(inst, fixed)))

	valid := core.Individual{{3}, {}, {1}}
	out := single.Repair(inst, valid)
	assert.True(t, out.Equal(valid))
	out[0][0] = 2
	assert.Equal(t, core.DeliveryID(3), valid[0][0], "repair returns a copy")
}

func TestRepair_RespectsCapacity(t *testing.T) {
	w := core.TimeWindow{End: 1000}
	inst := newInstance(t,
		[]*core.Drone{
			{ID: 1, MaxWeight: 5, Battery: 100, Speed: 1},
			{ID: 2, MaxWeight: 1, Battery: 100, Speed: 1},
		},
		[]*core.DeliveryPoint{
			{ID: 1, Weight: 4, Priority: 3, Window: w},
			{ID: 2, Weight: 3, Priority: 3, Window: w},
		}, nil)
	o := NewRouteOptimizer(testGAConfig(MultiParcel))

	// Delivery 2 is cut as a duplicate and fits neither drone afterwards.
	fixed := o.Repair(inst, core.Individual{{1}, {1, 2}})
	assert.Equal(t, core.Individual{{1}, {}}, fixed)
}

func TestOrderedCrossover_Permutation(t *testing.T) {
	o := NewRouteOptimizer(testGAConfig(MultiParcel))
	a := []core.DeliveryID{1, 2, 3, 4, 5}
	b := []core.DeliveryID{5, 4, 3, 2, 1}
	for i := 0; i < 20; i++ {
		child := o.orderedCrossover(a, b)
		assert.ElementsMatch(t, a, child)
	}
	assert.Equal(t, []core.DeliveryID{7}, o.orderedCrossover([]core.DeliveryID{7}, b))
}

func TestMutate_SwapKeepsRoutePermutation(t *testing.T) {
	inst := scenarioC(t)
	for seed := int64(1); seed <= 50; seed++ {
		cfg := testGAConfig(MultiParcel)
		cfg.MutationRate = 1
		cfg.Seed = seed
		o := NewRouteOptimizer(cfg)

		ind := core.Individual{{1, 2, 3, 4}, {5}, {}, {6, 7}}
		orig := ind.Clone()
		o.mutate(inst, ind)

		for i := range ind {
			assert.ElementsMatch(t, orig[i], ind[i], "seed %d route %d", seed, i)
		}
		assert.Equal(t, []core.DeliveryID{5}, ind[1], "single-parcel route is skipped")
		assert.Empty(t, ind[2])
		assert.Equal(t, []core.DeliveryID{7, 6}, ind[3])

		moved := 0
		for k := range ind[0] {
			if ind[0][k] != orig[0][k] {
				moved++
			}
		}
		assert.Equal(t, 2, moved, "seed %d: exactly one swap of distinct positions", seed)
	}
}

func TestCrossover_SingleParcelGenes(t *testing.T) {
	p1 := core.Individual{{1}, {}, {3}, {5}}
	p2 := core.Individual{{2}, {4}, {}, {6}}
	swapped, kept := 0, 0
	for seed := int64(1); seed <= 50; seed++ {
		cfg := testGAConfig(SingleParcel)
		cfg.Seed = seed
		c1, c2 := NewRouteOptimizer(cfg).crossover(p1, p2)
		require.Len(t, c1, len(p1))
		require.Len(t, c2, len(p2))

		for i := range p1 {
			assert.LessOrEqual(t, len(c1[i]), 1)
			assert.LessOrEqual(t, len(c2[i]), 1)
			switch {
			case slices.Equal(c1[i], p1[i]) && slices.Equal(c2[i], p2[i]):
				kept++
			case slices.Equal(c1[i], p2[i]) && slices.Equal(c2[i], p1[i]):
				swapped++
			default:
				t.Errorf("seed %d route %d: children %v %v do not split parent genes %v %v",
					seed, i, c1[i], c2[i], p1[i], p2[i])
			}
		}

		// Children own their routes.
		c1[0] = append(c1[0][:0], 99)
		assert.Equal(t, []core.DeliveryID{1}, p1[0])
		assert.Equal(t, []core.DeliveryID{2}, p2[0])
	}
	assert.Positive(t, swapped)
	assert.Positive(t, kept)
}

func TestParseCapacityMode(t *testing.T) {
	m, err := ParseCapacityMode("multi")
	require.NoError(t, err)
	assert.Equal(t, MultiParcel, m)

	_, err = ParseCapacityMode("bulk")
	assert.Error(t, err)

	e, err := ParseEliteMode("single")
	require.NoError(t, err)
	assert.Equal(t, EliteSingle, e)
}

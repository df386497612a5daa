package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/drone-route-planner/internal/planner"
	"github.com/elektrokombinacija/drone-route-planner/internal/scenario"
)

func TestResultsFromReport(t *testing.T) {
	f, err := scenario.Parse([]byte(`
name: bench
startTime: "10:00"
drones:
  - {id: 1, start: [0, 0], maxWeight: 10, battery: 10000, speed: 10}
  - {id: 2, start: [50, 0], maxWeight: 10, battery: 10000, speed: 10}
deliveries:
  - {id: 1, pos: [10, 0], weight: 2, priority: 5, window: ["09:00", "17:00"]}
  - {id: 2, pos: [40, 10], weight: 3, priority: 2, window: ["09:00", "17:00"]}
  - {id: 3, pos: [20, 20], weight: 1, priority: 3, window: ["09:00", "17:00"]}
  - {id: 4, pos: [60, 5], weight: 4, priority: 1, window: ["09:00", "17:00"]}
  - {id: 5, pos: [30, 30], weight: 2, priority: 4, window: ["09:00", "17:00"]}
  - {id: 6, pos: [5, 40], weight: 2, priority: 1, window: ["09:00", "17:00"]}
`))
	require.NoError(t, err)
	inst, err := f.Instance()
	require.NoError(t, err)

	opts := planner.DefaultOptions()
	opts.StartTime = f.StartTime.Minutes()
	opts.GA.PopulationSize, opts.GA.Generations, opts.GA.Seed = 20, 5, 1
	rep, err := planner.NewService(zerolog.Nop()).Plan(context.Background(), inst, opts)
	require.NoError(t, err)

	rows := resultsFromReport(baseResult(f.Name, inst, "test"), rep, 1, true)
	require.Len(t, rows, 3)
	assert.Equal(t, planner.NameCSP, rows[0].Planner)
	assert.Equal(t, planner.NameAStar, rows[1].Planner)
	assert.Equal(t, planner.NameGA, rows[2].Planner)
	assert.Equal(t, 6, rows[2].Assigned+rows[2].Unassigned)

	rows = resultsFromReport(baseResult(f.Name, inst, "test"), rep, 2, false)
	require.Len(t, rows, 1, "deterministic planners are reported once")

	var buf bytes.Buffer
	require.NoError(t, writeCSV(rows, &buf))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "planner", records[0][9])
	assert.Equal(t, "ga", records[1][9])
	assert.Equal(t, "2", records[1][10])

	var summary bytes.Buffer
	printSummary(&summary, rows)
	assert.Contains(t, summary.String(), "BENCHMARK SUMMARY")
	assert.Contains(t, summary.String(), "ga")
}

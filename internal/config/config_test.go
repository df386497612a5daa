package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `
logLevel: debug
graph:
  intersection: exact
csp:
  search: exhaustive
  maxBacktracks: 50
ga:
  mode: multi
  seed: 42
  populationSize: 30
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "droneplan.yaml"), []byte(cfg), 0644))
	require.NoError(t, Load(dir))

	s, err := Current()
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "exact", s.Graph.Intersection)
	assert.Equal(t, "exhaustive", s.CSP.Search)
	assert.Equal(t, 50, s.CSP.MaxBacktracks)
	assert.Equal(t, "multi", s.GA.Mode)
	assert.Equal(t, int64(42), s.GA.Seed)
	assert.Equal(t, 30, s.GA.PopulationSize)
	assert.Equal(t, 100, s.GA.Generations, "unset keys keep defaults")
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(t.TempDir()))
	s, err := Current()
	require.NoError(t, err)

	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "bbox", s.Graph.Intersection)
	assert.Equal(t, "greedy", s.CSP.Search)
	assert.Equal(t, 10000, s.CSP.MaxBacktracks)
	assert.Equal(t, 200, s.GA.PopulationSize)
	assert.Equal(t, 100, s.GA.Generations)
	assert.Equal(t, 0.1, s.GA.MutationRate)
	assert.Equal(t, 3, s.GA.TournamentSize)
	assert.Equal(t, "quarter", s.GA.Elitism)
	assert.Equal(t, "single", s.GA.Mode)
	assert.Equal(t, 0.7, s.GA.InitialAssignProb)
	assert.True(t, s.Planner.AStar)
	assert.True(t, s.Planner.CSP)
	assert.True(t, s.Planner.GA)
	assert.Empty(t, s.Metrics.Textfile)
	assert.Empty(t, s.Simulate.Output)
	assert.Equal(t, 0.5, s.Simulate.Step)
	assert.Equal(t, 30*time.Second, s.Simulate.Timeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("DRONEPLAN_GA_GENERATIONS", "7")
	t.Setenv("DRONEPLAN_LOGLEVEL", "warn")

	require.NoError(t, Load(t.TempDir()))
	s, err := Current()
	require.NoError(t, err)
	assert.Equal(t, 7, s.GA.Generations)
	assert.Equal(t, "warn", s.LogLevel)
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "droneplan.yaml"), []byte("ga: [unclosed"), 0644))

	err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestSet_OverridesLoaded(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(t.TempDir()))

	Set("ga.seed", 7)
	Set("graph.intersection", "exact")
	s, err := Current()
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.GA.Seed)
	assert.Equal(t, "exact", s.Graph.Intersection)
}

// Package config loads planner settings with viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "droneplan"

// EnvPrefix prefixes environment overrides, e.g. DRONEPLAN_GA_SEED.
const EnvPrefix = "DRONEPLAN"

// GraphConfig holds spatial graph settings.
type GraphConfig struct {
	Intersection string `mapstructure:"intersection"`
}

// CSPConfig holds assignment search settings.
type CSPConfig struct {
	Search        string `mapstructure:"search"`
	MaxBacktracks int    `mapstructure:"maxBacktracks"`
}

// GAConfig holds route optimiser settings.
type GAConfig struct {
	PopulationSize    int     `mapstructure:"populationSize"`
	Generations       int     `mapstructure:"generations"`
	MutationRate      float64 `mapstructure:"mutationRate"`
	TournamentSize    int     `mapstructure:"tournamentSize"`
	Elitism           string  `mapstructure:"elitism"`
	Mode              string  `mapstructure:"mode"`
	Seed              int64   `mapstructure:"seed"`
	InitialAssignProb float64 `mapstructure:"initialAssignProb"`
}

// PlannerConfig selects which planners run.
type PlannerConfig struct {
	StartTime float64 `mapstructure:"startTime"`
	AStar     bool    `mapstructure:"astar"`
	CSP       bool    `mapstructure:"csp"`
	GA        bool    `mapstructure:"ga"`
}

// MetricsConfig controls the metrics dump.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// SimulateConfig controls the optional simulation run after planning.
type SimulateConfig struct {
	Output  string        `mapstructure:"output"`
	Step    float64       `mapstructure:"step"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Settings is the typed view of the loaded configuration.
type Settings struct {
	LogLevel string         `mapstructure:"logLevel"`
	Scenario string         `mapstructure:"scenario"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	Graph    GraphConfig    `mapstructure:"graph"`
	CSP      CSPConfig      `mapstructure:"csp"`
	GA       GAConfig       `mapstructure:"ga"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Simulate SimulateConfig `mapstructure:"simulate"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("scenario", "")

	viper.SetDefault("planner.startTime", 0.0)
	viper.SetDefault("planner.astar", true)
	viper.SetDefault("planner.csp", true)
	viper.SetDefault("planner.ga", true)

	viper.SetDefault("graph.intersection", "bbox")

	viper.SetDefault("csp.search", "greedy")
	viper.SetDefault("csp.maxBacktracks", 10000)

	viper.SetDefault("ga.populationSize", 200)
	viper.SetDefault("ga.generations", 100)
	viper.SetDefault("ga.mutationRate", 0.1)
	viper.SetDefault("ga.tournamentSize", 3)
	viper.SetDefault("ga.elitism", "quarter")
	viper.SetDefault("ga.mode", "single")
	viper.SetDefault("ga.seed", 0)
	viper.SetDefault("ga.initialAssignProb", 0.7)

	viper.SetDefault("metrics.textfile", "")

	viper.SetDefault("simulate.output", "")
	viper.SetDefault("simulate.step", 0.5)
	viper.SetDefault("simulate.timeout", 30*time.Second)
}

// Load sets defaults, reads droneplan.yaml from configDir when present and
// applies DRONEPLAN_* environment overrides. A missing file is not an error.
func Load(configDir string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}
	return nil
}

// Current decodes the loaded configuration.
func Current() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("error decoding config: %v", err)
	}
	return s, nil
}

// Set overrides a value, typically from a command-line flag.
func Set(key string, value any) {
	viper.Set(key, value)
}

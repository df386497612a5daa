// Command droneplan plans drone deliveries for one scenario and prints a summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/elektrokombinacija/drone-route-planner/internal/config"
	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/logging"
	"github.com/elektrokombinacija/drone-route-planner/internal/metrics"
	"github.com/elektrokombinacija/drone-route-planner/internal/planner"
	"github.com/elektrokombinacija/drone-route-planner/internal/scenario"
	"github.com/elektrokombinacija/drone-route-planner/internal/sim"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing droneplan.yaml")
	scenarioPath := flag.String("scenario", "", "Scenario YAML file (default: generated demo)")
	start := flag.Float64("start", 0, "Planning start time in minutes (default: scenario start)")
	seed := flag.Int64("seed", 0, "GA seed (0 = config or time-based)")
	intersection := flag.String("intersection", "", "Zone test: bbox or exact")
	search := flag.String("search", "", "CSP search: greedy or exhaustive")
	mode := flag.String("mode", "", "GA capacity mode: single or multi")
	metricsFile := flag.String("metrics", "", "Write Prometheus metrics to this textfile")
	simulateOut := flag.String("simulate", "", "Simulate the CSP and GA plans and write results as JSON to this file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found (using environment variables)")
	}
	if err := config.Load(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	overrides := map[string]func(){
		"scenario":     func() { config.Set("scenario", *scenarioPath) },
		"start":        func() { config.Set("planner.startTime", *start) },
		"seed":         func() { config.Set("ga.seed", *seed) },
		"intersection": func() { config.Set("graph.intersection", *intersection) },
		"search":       func() { config.Set("csp.search", *search) },
		"mode":         func() { config.Set("ga.mode", *mode) },
		"metrics":      func() { config.Set("metrics.textfile", *metricsFile) },
		"simulate":     func() { config.Set("simulate.output", *simulateOut) },
	}
	flag.Visit(func(f *flag.Flag) {
		if set, ok := overrides[f.Name]; ok {
			set()
		}
	})

	settings, err := config.Current()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logging.Setup(settings.LogLevel, os.Stderr)

	file, err := loadScenario(settings.Scenario)
	if err != nil {
		log.Fatal().Err(err).Str("scenario", settings.Scenario).Msg("cannot load scenario")
	}
	inst, err := file.Instance()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scenario")
	}

	opts, err := planner.OptionsFromSettings(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid planner settings")
	}
	if !startFlagSet() && settings.Planner.StartTime == 0 {
		opts.StartTime = file.StartTime.Minutes()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc := planner.NewService(log)
	rep, err := svc.Plan(ctx, inst, opts)
	if rep != nil {
		rep.WriteSummary(os.Stdout, inst)
	}
	if err != nil && !planner.IsStopped(err) {
		log.Error().Err(err).Msg("planning failed")
		os.Exit(1)
	}

	if path := settings.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("cannot write metrics")
			os.Exit(1)
		}
		log.Info().Str("path", path).Msg("metrics written")
	}
	if path := settings.Simulate.Output; path != "" {
		results, err := svc.Simulate(inst, opts, planner.SimulateOptions{
			Step:    settings.Simulate.Step,
			Timeout: settings.Simulate.Timeout,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("simulation failed")
		}
		if err := sim.ExportResults(path, results); err != nil {
			log.Error().Err(err).Str("path", path).Msg("cannot write simulation results")
			os.Exit(1)
		}
		log.Info().Str("path", path).Int("runs", len(results)).Msg("simulation written")
	}
	printUnassigned(rep, inst)
}

func loadScenario(path string) (*scenario.File, error) {
	if path == "" {
		return scenario.Generate(scenario.DefaultParams()), nil
	}
	return scenario.Load(path)
}

func startFlagSet() bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "start" {
			set = true
		}
	})
	return set
}

func printUnassigned(rep *planner.Report, inst *core.Instance) {
	if rep == nil || rep.GA == nil {
		return
	}
	left := rep.GA.Best.ToAssignment(inst).Unassigned(inst)
	if len(left) > 0 {
		fmt.Printf("\nGA left %d of %d deliveries unassigned: %v\n", len(left), len(inst.Deliveries), left)
	}
}

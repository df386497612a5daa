// Package main runs the drone planners over a directory of scenarios and
// collects metrics.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/elektrokombinacija/drone-route-planner/internal/config"
	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/logging"
	"github.com/elektrokombinacija/drone-route-planner/internal/planner"
	"github.com/elektrokombinacija/drone-route-planner/internal/scenario"
)

// BenchmarkResult stores one planner run on one scenario.
type BenchmarkResult struct {
	Timestamp  string
	CommitHash string
	GoVersion  string
	OS         string
	Arch       string
	Scenario   string
	Drones     int
	Deliveries int
	Zones      int
	Planner    string
	Seed       int64
	RuntimeMs  float64
	Assigned   int
	Unassigned int
	Complete   bool
	Fitness    float64
	Violations int
	Expanded   int
	PathsFound int
}

// PlannerMetrics aggregates runs per planner.
type PlannerMetrics struct {
	Name           string
	Runs           int
	Complete       int
	TotalRuntimeMs float64
	TotalAssigned  int
	TotalDelivery  int
	Violations     int
}

func getGitCommit() string {
	output, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

func baseResult(name string, inst *core.Instance, commit string) BenchmarkResult {
	return BenchmarkResult{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		CommitHash: commit,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		Scenario:   name,
		Drones:     len(inst.Drones),
		Deliveries: len(inst.Deliveries),
		Zones:      len(inst.Zones),
	}
}

// resultsFromReport flattens one planning report into per-planner rows.
func resultsFromReport(base BenchmarkResult, rep *planner.Report, seed int64, includeDeterministic bool) []*BenchmarkResult {
	var out []*BenchmarkResult
	ms := func(name string) float64 { return float64(rep.Durations[name].Microseconds()) / 1000 }

	if includeDeterministic && rep.CSP != nil {
		r := base
		r.Planner = planner.NameCSP
		r.RuntimeMs = ms(planner.NameCSP)
		r.Assigned = rep.CSP.Assignment.Count()
		r.Unassigned = len(rep.CSP.Unassigned)
		r.Complete = rep.CSP.Complete
		out = append(out, &r)
	}
	if includeDeterministic && len(rep.Paths) > 0 {
		r := base
		r.Planner = planner.NameAStar
		r.RuntimeMs = ms(planner.NameAStar)
		for _, p := range rep.Paths {
			r.Expanded += p.Expanded
			if p.Path.Found() {
				r.PathsFound++
			}
		}
		r.Complete = r.PathsFound == len(rep.Paths)
		out = append(out, &r)
	}
	if rep.GA != nil {
		r := base
		r.Planner = planner.NameGA
		r.Seed = seed
		r.RuntimeMs = ms(planner.NameGA)
		r.Assigned = rep.GA.Evaluation.Delivered
		r.Unassigned = base.Deliveries - rep.GA.Evaluation.Delivered
		r.Complete = r.Unassigned == 0 && rep.GA.Evaluation.Violations == 0
		r.Fitness = rep.GA.Fitness
		r.Violations = rep.GA.Evaluation.Violations
		out = append(out, &r)
	}
	return out
}

func writeCSV(results []*BenchmarkResult, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"timestamp", "commit_hash", "go_version", "os", "arch",
		"scenario", "drones", "deliveries", "zones", "planner", "seed",
		"runtime_ms", "assigned", "unassigned", "complete", "fitness",
		"violations", "nodes_expanded", "paths_found",
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Timestamp, r.CommitHash, r.GoVersion, r.OS, r.Arch,
			r.Scenario, strconv.Itoa(r.Drones), strconv.Itoa(r.Deliveries), strconv.Itoa(r.Zones),
			r.Planner, strconv.FormatInt(r.Seed, 10),
			fmt.Sprintf("%.3f", r.RuntimeMs), strconv.Itoa(r.Assigned), strconv.Itoa(r.Unassigned),
			strconv.FormatBool(r.Complete), fmt.Sprintf("%.3f", r.Fitness),
			strconv.Itoa(r.Violations), strconv.Itoa(r.Expanded), strconv.Itoa(r.PathsFound),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func printSummary(w io.Writer, results []*BenchmarkResult) {
	metrics := make(map[string]*PlannerMetrics)
	for _, r := range results {
		m, ok := metrics[r.Planner]
		if !ok {
			m = &PlannerMetrics{Name: r.Planner}
			metrics[r.Planner] = m
		}
		m.Runs++
		m.TotalRuntimeMs += r.RuntimeMs
		m.TotalAssigned += r.Assigned
		m.TotalDelivery += r.Deliveries
		m.Violations += r.Violations
		if r.Complete {
			m.Complete++
		}
	}

	fmt.Fprintln(w, "\n=== BENCHMARK SUMMARY ===")
	fmt.Fprintf(w, "%-10s %6s %9s %12s %10s %10s\n", "Planner", "Runs", "Complete", "Avg Time(ms)", "Served%", "Violations")
	fmt.Fprintln(w, strings.Repeat("-", 62))

	var names []string
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m := metrics[name]
		served := 0.0
		if m.TotalDelivery > 0 {
			served = float64(m.TotalAssigned) / float64(m.TotalDelivery) * 100
		}
		fmt.Fprintf(w, "%-10s %6d %9d %12.2f %9.1f%% %10d\n",
			m.Name, m.Runs, m.Complete, m.TotalRuntimeMs/float64(m.Runs), served, m.Violations)
	}
}

func main() {
	inputDir := flag.String("input", "testdata", "Directory containing scenario YAML files")
	outputFile := flag.String("output", "evidence/benchmark_results.csv", "Output CSV file")
	configDir := flag.String("config", ".", "Directory containing droneplan.yaml")
	seeds := flag.Int("seeds", 3, "GA runs per scenario, seeded 1..n")
	timeout := flag.Duration("timeout", 5*time.Minute, "Timeout per scenario")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	if err := godotenv.Load(); err != nil && *verbose {
		fmt.Fprintln(os.Stderr, "No .env file found (using environment variables)")
	}
	if err := config.Load(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	settings, err := config.Current()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	level := "warn"
	if *verbose {
		level = settings.LogLevel
	}
	log := logging.Setup(level, os.Stderr)

	opts, err := planner.OptionsFromSettings(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*outputFile), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	files, err := filepath.Glob(filepath.Join(*inputDir, "*.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding scenario files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No scenario files found in %s\n", *inputDir)
		fmt.Fprintf(os.Stderr, "Run gen_scenarios first: go run ./tools/gen_scenarios -scaling -output %s\n", *inputDir)
		os.Exit(1)
	}

	fmt.Printf("Running benchmarks: %d scenarios x %d seeds\n", len(files), *seeds)
	fmt.Printf("Timeout per scenario: %v\n\n", *timeout)

	svc := planner.NewService(log)
	commit := getGitCommit()
	var results []*BenchmarkResult
	for _, path := range files {
		f, err := scenario.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
			continue
		}
		inst, err := f.Instance()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error in %s: %v\n", path, err)
			continue
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		base := baseResult(name, inst, commit)

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		for seed := int64(1); seed <= int64(*seeds); seed++ {
			run := opts
			run.StartTime = f.StartTime.Minutes()
			run.GA.Seed = seed
			first := seed == 1
			run.RunCSP, run.RunAStar = opts.RunCSP && first, opts.RunAStar && first

			rep, err := svc.Plan(ctx, inst, run)
			if err != nil && !planner.IsStopped(err) {
				fmt.Fprintf(os.Stderr, "Error planning %s: %v\n", name, err)
				break
			}
			rows := resultsFromReport(base, rep, seed, first)
			results = append(results, rows...)
			if *verbose {
				for _, r := range rows {
					fmt.Printf("%s / %s seed=%d: assigned=%d/%d (%.2fms)\n",
						name, r.Planner, r.Seed, r.Assigned, r.Deliveries, r.RuntimeMs)
				}
			}
			if err != nil {
				break
			}
		}
		cancel()
	}

	out, err := os.Create(*outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}
	if err := writeCSV(results, out); err != nil {
		out.Close()
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}
	out.Close()
	fmt.Printf("Results written to: %s\n", *outputFile)

	printSummary(os.Stdout, results)
}

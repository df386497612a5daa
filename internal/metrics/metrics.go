// Package metrics holds the Prometheus collectors for planning runs.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated registry for planner metrics.
	Registry = prometheus.NewRegistry()

	// PlannerRuns counts planner invocations by planner and outcome.
	PlannerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "droneplan_planner_runs_total", Help: "Planner runs by planner and outcome."},
		[]string{"planner", "outcome"},
	)
	// PlannerDuration records planner wall time in seconds.
	PlannerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "droneplan_planner_duration_seconds", Help: "Planner duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"planner"},
	)
	// AStarExpanded tracks nodes expanded per path query.
	AStarExpanded = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "droneplan_astar_expanded_nodes", Help: "Nodes expanded per A* query.", Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000}},
	)
	// GABestFitness is the best fitness of the last GA run.
	GABestFitness = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "droneplan_ga_best_fitness", Help: "Best fitness of the last GA run."},
	)
	// DeliveriesUnassigned is the number of deliveries left over per planner.
	DeliveriesUnassigned = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "droneplan_deliveries_unassigned", Help: "Deliveries left unassigned by the last run."},
		[]string{"planner"},
	)
)

var regOnce sync.Once

// RegisterDefault registers the collectors on Registry once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(PlannerRuns)
		Registry.MustRegister(PlannerDuration)
		Registry.MustRegister(AStarExpanded)
		Registry.MustRegister(GABestFitness)
		Registry.MustRegister(DeliveriesUnassigned)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	RegisterDefault()
	return prometheus.WriteToTextfile(path, Registry)
}

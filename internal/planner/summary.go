package planner

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/elektrokombinacija/drone-route-planner/internal/algo"
	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/sim"
)

// WriteSummary prints a human-readable report.
func (r *Report) WriteSummary(w io.Writer, inst *core.Instance) {
	fmt.Fprintf(w, "=== Drone delivery plan %s ===\n", r.RunID)
	fmt.Fprintf(w, "Scenario: %d drones, %d deliveries, %d zones, start %.1f\n",
		len(inst.Drones), len(inst.Deliveries), len(inst.Zones), r.StartTime)
	fmt.Fprintf(w, "Graph: %d nodes, %d edges\n", r.Graph.Nodes, r.Graph.Edges)

	if r.CSP != nil {
		fmt.Fprintf(w, "\n--- Assignment (CSP) ---\n")
		fmt.Fprintf(w, "Complete=%v Fallback=%v Backtracks=%d Time=%v\n",
			r.CSP.Complete, r.CSP.UsedFallback, r.CSP.Backtracks, r.Durations[NameCSP])
		writeRoutes(w, r.CSPPlan)
		if len(r.CSP.Unassigned) > 0 {
			fmt.Fprintf(w, "Unassigned: %v\n", r.CSP.Unassigned)
		}
	}

	if len(r.Paths) > 0 {
		fmt.Fprintf(w, "\n--- Paths (A*) ---\n")
		for _, p := range r.Paths {
			if !p.Path.Found() {
				fmt.Fprintf(w, "  %v -> %v: no path (%d expanded)\n", core.DroneNode(p.Drone), p.Goal, p.Expanded)
				continue
			}
			hops := make([]string, len(p.Path.Nodes))
			for i, n := range p.Path.Nodes {
				hops[i] = n.String()
			}
			fmt.Fprintf(w, "  %s  cost=%.2f (%d expanded)\n", strings.Join(hops, " -> "), p.Path.Cost, p.Expanded)
		}
	}

	if r.GA != nil {
		fmt.Fprintf(w, "\n--- Routes (GA) ---\n")
		fitness := "-inf"
		if !math.IsInf(r.GA.Fitness, -1) {
			fitness = fmt.Sprintf("%.2f", r.GA.Fitness)
		}
		fmt.Fprintf(w, "Fitness=%s Delivered=%d Violations=%d Energy=%.2f Generations=%d Seed=%d Time=%v\n",
			fitness, r.GA.Evaluation.Delivered, r.GA.Evaluation.Violations, r.GA.Evaluation.Energy,
			r.GA.Generations, r.GA.Seed, r.Durations[NameGA])
		writeRoutes(w, r.GAPlan)
	}
}

func writeRoutes(w io.Writer, plan *sim.Plan) {
	if plan == nil {
		return
	}
	fmt.Fprintf(w, "%-10s %-28s %10s %10s %9s\n", "Drone", "Route", "Distance", "Finish", "Recharges")
	fmt.Fprintln(w, strings.Repeat("-", 71))
	for _, tl := range plan.Timelines {
		var stops []string
		dist, recharges := 0.0, 0
		for _, l := range tl.Legs {
			stop := fmt.Sprintf("%d", l.Delivery)
			if l.Violation != algo.ViolationNone {
				stop += "!" + l.Violation.String()
			}
			stops = append(stops, stop)
			if l.Flown() {
				dist += l.Distance
			}
			if l.Recharged {
				recharges++
			}
		}
		finish := "-"
		if end, ok := tl.End(); ok {
			finish = fmt.Sprintf("%.1f", end)
		}
		route := strings.Join(stops, ",")
		if route == "" {
			route = "(idle)"
		}
		fmt.Fprintf(w, "%-10s %-28s %10.2f %10s %9d\n", core.DroneNode(tl.Drone), route, dist, finish, recharges)
	}
}

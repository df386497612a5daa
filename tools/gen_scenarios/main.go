// Package main generates deterministic drone delivery scenarios as YAML.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elektrokombinacija/drone-route-planner/internal/scenario"
)

// scalingSizes are fleet sizes for the scaling suite; deliveries scale 4x.
var scalingSizes = []int{5, 10, 20, 50, 100}

func main() {
	def := scenario.DefaultParams()
	seed := flag.Int64("seed", 42, "Random seed for deterministic generation")
	drones := flag.Int("drones", def.Drones, "Number of drones")
	deliveries := flag.Int("deliveries", def.Deliveries, "Number of delivery points")
	zones := flag.Int("zones", def.Zones, "Number of no-fly zones")
	area := flag.Float64("area", def.AreaSize, "Side length of the square area")
	charge := flag.Float64("charge", def.ChargeTime, "Recharge duration in minutes")
	outputDir := flag.String("output", "testdata", "Output directory")
	scalingMode := flag.Bool("scaling", false, "Generate the scaling suite (5, 10, 20, 50, 100 drones)")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	base := scenario.Params{
		Seed:       *seed,
		Drones:     *drones,
		Deliveries: *deliveries,
		Zones:      *zones,
		AreaSize:   *area,
		ChargeTime: *charge,
	}

	var params []scenario.Params
	if *scalingMode {
		for _, n := range scalingSizes {
			p := base
			p.Drones = n
			p.Deliveries = 4 * n
			p.Zones = max(2, n/10)
			params = append(params, p)
		}
	} else {
		params = append(params, base)
	}

	for _, p := range params {
		f := scenario.Generate(p)
		filename := filepath.Join(*outputDir, f.Name+".yaml")
		if err := scenario.Save(filename, f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing scenario %s: %v\n", filename, err)
			continue
		}
		fmt.Printf("Generated: %s (%d drones, %d deliveries, %d zones)\n",
			filename, len(f.Drones), len(f.Deliveries), len(f.Zones))
	}
}

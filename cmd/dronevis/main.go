// Command dronevis plans a scenario and shows the routes in a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/joho/godotenv"

	"github.com/elektrokombinacija/drone-route-planner/internal/config"
	"github.com/elektrokombinacija/drone-route-planner/internal/logging"
	"github.com/elektrokombinacija/drone-route-planner/internal/planner"
	"github.com/elektrokombinacija/drone-route-planner/internal/scenario"
	"github.com/elektrokombinacija/drone-route-planner/internal/vis"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing droneplan.yaml")
	scenarioPath := flag.String("scenario", "", "Scenario YAML file (default: generated demo)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found (using environment variables)")
	}
	if err := config.Load(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *scenarioPath != "" {
		config.Set("scenario", *scenarioPath)
	}
	settings, err := config.Current()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logging.Setup(settings.LogLevel, os.Stderr)

	file := scenario.Generate(scenario.DefaultParams())
	if settings.Scenario != "" {
		if file, err = scenario.Load(settings.Scenario); err != nil {
			log.Fatal().Err(err).Str("scenario", settings.Scenario).Msg("cannot load scenario")
		}
	}
	inst, err := file.Instance()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scenario")
	}

	opts, err := planner.OptionsFromSettings(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid planner settings")
	}
	if settings.Planner.StartTime == 0 {
		opts.StartTime = file.StartTime.Minutes()
	}

	rep, err := planner.NewService(log).Plan(context.Background(), inst, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("planning failed")
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("Drone Route Planner: "+file.Name),
			app.Size(unit.Dp(1400), unit.Dp(900)),
		)
		if err := vis.NewApp(inst, rep, opts.Intersection).Run(window); err != nil {
			log.Fatal().Err(err).Msg("window closed with error")
		}
		os.Exit(0)
	}()
	app.Main()
}

package main

import (
	"flag"
	"fmt"
	"os"

	cubesim "github.com/mysteryDate/vention-project"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to a YAML scenario file (defaults built in)")
	ticks := flag.Int("ticks", 600, "number of simulation ticks to run")
	debug := flag.Bool("debug", false, "enable per-contact debug logging")
	flag.Parse()

	cfg := cubesim.DefaultScenario()
	if *scenarioPath != "" {
		var err error
		cfg, err = cubesim.LoadScenario(*scenarioPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	params := cfg.Parameters()

	app := cubesim.NewAppBuilder().UseModule(
		cubesim.LoggingModule{Prefix: "cubesim", Debug: *debug},
		cubesim.TimeModule{},
		cubesim.PhysicsModule{Params: params},
		cubesim.BroadPhaseModule{Strategy: cfg.BroadPhase, VolumeHalfExtent: params.VolumeHalfExtent},
	).Build()

	world := cubesim.ResourceOf[cubesim.World](app)
	cubesim.SeedScenario(world, cfg)

	log := app.Logger()
	log.Infof("run %s: %d particles, %d ticks, broad phase %q", world.RunID, cfg.Particles, *ticks, cfg.BroadPhase)

	events := cubesim.ResourceOf[cubesim.ContactEvents](app)
	contacts := 0
	sticking := 0
	for i := 0; i < *ticks; i++ {
		app.Step()
		contacts += len(events.Events)
		for _, ev := range events.Events {
			if ev.Sticking {
				sticking++
			}
		}
	}

	largest := 0
	for _, agg := range world.Aggregates() {
		if n := len(agg.Members()); n > largest {
			largest = n
		}
	}
	log.Infof("done: %d contacts (%d sticking), %d aggregates, largest has %d members",
		contacts, sticking, len(world.Aggregates()), largest)
}

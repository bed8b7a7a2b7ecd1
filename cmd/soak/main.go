// Command soak replays random joystick drags against a running position
// store and prints a JSON report of the upload path.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/xtding233/joystick-backend/internal/rpc"
	"github.com/xtding233/joystick-backend/internal/sim"
)

func main() {
	var (
		addr    = flag.String("addr", "localhost:50051", "position store address")
		drags   = flag.Int("drags", 50, "number of drags")
		steps   = flag.Int("steps", 40, "moves per drag")
		maxStep = flag.Float64("step", 12, "largest pointer step, in control units")
		radius  = flag.Float64("radius", 100, "control radius, in control units")
		keep    = flag.Int("keep", 0, "history size, 0 = default")
		seed    = flag.Uint64("seed", 0, "seed for a reproducible walk, 0 = random")
	)
	flag.Parse()

	client, err := rpc.NewClient(*addr)
	if err != nil {
		log.Fatalf("store client: %v", err)
	}
	defer client.Close()

	rng := sim.DefaultRNG()
	if *seed != 0 {
		rng = sim.NewSeededRNG(*seed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := sim.Run(ctx, client, sim.Params{
		Drags:       *drags,
		Steps:       *steps,
		MaxStep:     *maxStep,
		Radius:      *radius,
		HistorySize: *keep,
	}, rng)
	if err != nil {
		log.Printf("soak stopped early: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(rep)
}

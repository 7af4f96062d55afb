package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"chosenoffset.com/sightline/internal/render/term"
	"chosenoffset.com/sightline/internal/simulation"
	"chosenoffset.com/sightline/internal/viewer"
)

func main() {
	configPath := flag.String("config", "data/sightline.json", "simulation config file")
	dump := flag.Bool("dump", false, "print the view from the spawn point and exit")
	simulation.DefaultConfig().Bind(flag.CommandLine)
	flag.Parse()

	cfg, err := simulation.LoadWithFlags(*configPath, flag.CommandLine)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	world, err := viewer.LoadWorld(cfg)
	if err != nil {
		log.Fatalf("Failed to load map: %v", err)
	}

	scene, err := viewer.NewScene(cfg, world)
	if err != nil {
		log.Fatalf("Failed to create scene: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *dump {
		if err := scene.Recompute(ctx); err != nil {
			log.Fatalf("Failed to compute view: %v", err)
		}
		if err := term.Dump(os.Stdout, scene); err != nil {
			log.Fatal(err)
		}
		return
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("Failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("Failed to initialize screen: %v", err)
	}

	// log output would corrupt the terminal while the screen is up
	log.SetOutput(io.Discard)
	err = term.NewCanvas(screen, scene).Run(ctx)
	screen.Fini()
	log.SetOutput(os.Stderr)
	if err != nil {
		log.Fatal(err)
	}
}

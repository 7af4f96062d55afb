package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	ebitenrender "chosenoffset.com/sightline/internal/render/ebiten"
	"chosenoffset.com/sightline/internal/simulation"
	"chosenoffset.com/sightline/internal/viewer"
)

func main() {
	configPath := flag.String("config", "data/sightline.json", "simulation config file")
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

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	game := viewer.NewGame(ctx, scene, renderer, inputMgr)

	// Set up the window
	engine.SetWindowSize(cfg.Viewer.ScreenWidth, cfg.Viewer.ScreenHeight)
	engine.SetWindowTitle("Sightline - " + world.Data.Name)
	engine.SetWindowResizable(true)
	engine.SetTPS(cfg.Viewer.TPS)

	log.Println("Starting viewer...")
	if err := engine.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"grid_router/pkg/api"
	"grid_router/pkg/config"
	"grid_router/pkg/grid"
	"grid_router/pkg/pathfind"
)

func main() {
	configPath := flag.String("config", "grid.yaml", "Path to the grid YAML config")
	gridPath := flag.String("grid", "", "Preprocessed grid binary (default: build from config)")
	watch := flag.Bool("watch", false, "Rebuild the grid when the config file changes")
	flag.Parse()

	start := time.Now()

	log.Printf("Loading config from %s...", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var g *grid.Grid
	if *gridPath != "" {
		log.Printf("Loading grid from %s...", *gridPath)
		g, err = grid.ReadBinary(*gridPath)
	} else {
		log.Println("Building grid from config...")
		g, err = cfg.BuildGrid(context.Background())
	}
	if err != nil {
		log.Fatalf("Failed to load grid: %v", err)
	}
	log.Printf("Grid: %dx%d cells of %.2f, %d walkable, %d regions",
		g.Width(), g.Height(), g.CellSize(), g.WalkableCount(), g.RegionCount())

	engine := pathfind.NewEngine(g)

	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *watch {
		w, err := config.NewWatcher(*configPath)
		if err != nil {
			log.Fatalf("Failed to watch config: %v", err)
		}
		defer w.Close()
		go reload(ctx, w, engine)
		log.Printf("Watching %s for changes", *configPath)
	}

	srvCfg := api.ServerConfig{
		Addr:          cfg.Server.Addr,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		MaxConcurrent: cfg.Server.MaxConcurrent,
		CORSOrigin:    cfg.Server.CORSOrigin,
	}
	srv := api.NewServer(srvCfg, api.NewHandlers(engine))

	if err := api.ListenAndServe(ctx, srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}

// reload rebuilds the grid on each config change. A config that fails to
// load or build leaves the current grid in place. Server settings are only
// read at startup.
func reload(ctx context.Context, w *config.Watcher, engine *pathfind.Engine) {
	for {
		select {
		case path, ok := <-w.Events:
			if !ok {
				return
			}
			start := time.Now()
			cfg, err := config.Load(path)
			if err != nil {
				log.Printf("Reload skipped: %v", err)
				continue
			}
			g, err := cfg.BuildGrid(ctx)
			if err != nil {
				log.Printf("Reload skipped: %v", err)
				continue
			}
			engine.Replace(g)
			log.Printf("Reloaded %s in %s: %d walkable cells", path, time.Since(start).Round(time.Millisecond), g.WalkableCount())
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("Watch error: %v", err)
		case <-ctx.Done():
			return
		}
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"grid_router/pkg/config"
	"grid_router/pkg/grid"
)

func main() {
	configPath := flag.String("config", "", "Path to the grid YAML config")
	osmPath := flag.String("osm", "", "OSM extract (.osm.pbf or .osm) overriding osm.file in the config")
	output := flag.String("output", "grid.bin", "Output binary grid file path")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --config <grid.yaml> [--osm file.osm.pbf] [--output grid.bin]")
		os.Exit(1)
	}

	start := time.Now()

	// Step 1: Load config.
	log.Printf("Loading config from %s...", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *osmPath != "" {
		cfg.OSM.File = *osmPath
	}

	// Step 2: Rasterize obstacles.
	log.Printf("Building %dx%d grid...", cfg.Grid.Width, cfg.Grid.Height)
	g, err := cfg.BuildGrid(context.Background())
	if err != nil {
		log.Fatalf("Failed to build grid: %v", err)
	}
	log.Printf("Grid: %d of %d cells walkable", g.WalkableCount(), g.Len())

	// Step 3: Report connectivity.
	regions := g.RegionCount()
	if g.WalkableCount() > 0 {
		log.Printf("Regions: %d, largest %d cells (%.1f%%)", regions, g.LargestRegion(),
			float64(g.LargestRegion())/float64(g.WalkableCount())*100)
	}

	// Step 4: Serialize to binary.
	log.Printf("Writing binary to %s...", *output)
	if err := grid.WriteBinary(*output, g); err != nil {
		log.Fatalf("Failed to write binary: %v", err)
	}

	info, err := os.Stat(*output)
	if err != nil {
		log.Fatalf("Failed to stat output: %v", err)
	}
	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s (%.1f KB)", elapsed.Round(time.Millisecond), *output, float64(info.Size())/1024)
}

// Command gridpath answers a single path query and prints the grid as ASCII.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"grid_router/pkg/config"
	"grid_router/pkg/grid"
	"grid_router/pkg/pathfind"
)

func main() {
	configPath := flag.String("config", "grid.yaml", "Path to the grid YAML config")
	gridPath := flag.String("grid", "", "Preprocessed grid binary (default: build from config)")
	from := flag.String("from", "", "Start world position x,z")
	to := flag.String("to", "", "Goal world position x,z")
	noMap := flag.Bool("no-map", false, "Print only the path summary")
	flag.Parse()

	if *from == "" || *to == "" {
		fmt.Fprintln(os.Stderr, "Usage: gridpath --config <grid.yaml> --from x,z --to x,z [--grid grid.bin] [--no-map]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	start, err := parseXZ(*from, cfg.Grid.Origin[1])
	if err != nil {
		log.Fatalf("Invalid --from: %v", err)
	}
	end, err := parseXZ(*to, cfg.Grid.Origin[1])
	if err != nil {
		log.Fatalf("Invalid --to: %v", err)
	}

	var g *grid.Grid
	if *gridPath != "" {
		g, err = grid.ReadBinary(*gridPath)
	} else {
		g, err = cfg.BuildGrid(context.Background())
	}
	if err != nil {
		log.Fatalf("Failed to load grid: %v", err)
	}

	search := pathfind.NewSearch(g)
	t0 := time.Now()
	p, ok := search.FindPath(start, end)
	elapsed := time.Since(t0)

	opts := renderOptions{}
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		opts.color = true
		if w, _, err := term.GetSize(fd); err == nil {
			opts.maxWidth = w
		}
	}

	sx, sy := g.WorldToGrid(start)
	ex, ey := g.WorldToGrid(end)
	if !*noMap {
		render(os.Stdout, g, p.Cells, grid.Coord{X: sx, Y: sy}, grid.Coord{X: ex, Y: ey}, opts)
	}

	if !ok {
		fmt.Printf("No path from (%d,%d) to (%d,%d), %s\n", sx, sy, ex, ey, elapsed.Round(time.Microsecond))
		os.Exit(2)
	}
	fmt.Printf("Path (%d,%d) -> (%d,%d): cost %d, %d cells, %d expanded, %s\n",
		sx, sy, p.Goal.X, p.Goal.Y, p.Cost, len(p.Cells), p.Expanded, elapsed.Round(time.Microsecond))
}

func parseXZ(s string, y float32) (mgl32.Vec3, error) {
	var x, z float32
	if _, err := fmt.Sscanf(s, "%f,%f", &x, &z); err != nil {
		return mgl32.Vec3{}, errors.Wrap(err, "expected x,z")
	}
	return mgl32.Vec3{x, y, z}, nil
}

package pathfind

import (
	"context"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"grid_router/pkg/grid"
)

// ErrNoPath is returned by Engine.Route when no traversable route exists.
var ErrNoPath = errors.New("no path found")

// ErrOutOfBounds is returned when a cell mutation targets a cell outside the grid.
var ErrOutOfBounds = errors.New("cell out of bounds")

// Router is the interface for path queries.
type Router interface {
	Route(ctx context.Context, start, end mgl32.Vec3) (*Path, error)
}

// Stats summarizes the grid an Engine serves.
type Stats struct {
	Width         int
	Height        int
	CellSize      float32
	WalkableCells int
	Regions       int
}

// Engine implements Router for concurrent callers. A single mutex serializes
// searches and topology changes, since both write to the shared nodes.
type Engine struct {
	mu     sync.Mutex
	search *Search
}

// NewEngine creates an engine serving g.
func NewEngine(g *grid.Grid) *Engine {
	return &Engine{search: NewSearch(g)}
}

// Route computes the shortest path between two world positions.
func (e *Engine) Route(ctx context.Context, start, end mgl32.Vec3) (*Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.search.FindPath(start, end)
	if !ok {
		return nil, ErrNoPath
	}
	return &p, nil
}

// SetWalkable sets the walkability of cell (x, y).
func (e *Engine) SetWalkable(x, y int, walkable bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.search.grid.SetWalkable(x, y, walkable) {
		return errors.Wrapf(ErrOutOfBounds, "(%d,%d)", x, y)
	}
	return nil
}

// ToggleWalkable flips cell (x, y) and returns its new walkability.
func (e *Engine) ToggleWalkable(x, y int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.search.grid
	if !g.ToggleWalkable(x, y) {
		return false, errors.Wrapf(ErrOutOfBounds, "(%d,%d)", x, y)
	}
	return g.Node(x, y).Walkable(), nil
}

// Rebuild re-queries every cell of the current grid.
func (e *Engine) Rebuild(blocked grid.ObstacleQuery, penalty grid.PenaltyQuery) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.search.grid.Build(blocked); err != nil {
		return err
	}
	e.search.grid.ApplyPenalties(penalty)
	return nil
}

// Replace swaps in a new grid, e.g. after the configuration changed.
func (e *Engine) Replace(g *grid.Grid) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.search = NewSearch(g)
}

// Stats reports the current grid dimensions and connectivity.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.search.grid
	return Stats{
		Width:         g.Width(),
		Height:        g.Height(),
		CellSize:      g.CellSize(),
		WalkableCells: g.WalkableCount(),
		Regions:       g.RegionCount(),
	}
}

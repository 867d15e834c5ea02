package grid

import (
	"iter"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned for non-positive dimensions or cell size.
var ErrInvalidConfig = errors.New("grid: invalid configuration")

// ObstacleQuery reports whether the cell centred at pos is blocked.
type ObstacleQuery func(pos mgl32.Vec3) bool

// PenaltyQuery returns the movement penalty for the cell centred at pos.
type PenaltyQuery func(pos mgl32.Vec3) int

// Config describes the world region a Grid discretizes.
// The grid lies on the world XZ plane: grid x maps to world X, grid y to world Z.
type Config struct {
	Width    int
	Height   int
	CellSize float32
	Origin   mgl32.Vec3 // outer corner of cell (0,0)
}

// Validate checks dimensions and cell size.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "dimensions %dx%d", c.Width, c.Height)
	}
	cs := float64(c.CellSize)
	if c.CellSize <= 0 || math.IsNaN(cs) || math.IsInf(cs, 0) {
		return errors.Wrapf(ErrInvalidConfig, "cell size %v", c.CellSize)
	}
	return nil
}

// Grid owns a row-major array of Width*Height nodes.
type Grid struct {
	cfg      Config
	nodes    []Node
	walkable int

	regions *regions // nil when stale
}

// neighborOffsets lists the 8 surrounding cells in enumeration order.
var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// New allocates a grid with every cell walkable.
func New(cfg Config) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Grid{cfg: cfg}
	if err := g.Build(nil); err != nil {
		return nil, err
	}
	return g, nil
}

// Build recreates every node, calling blocked once per cell centre.
// All prior node state is discarded. A nil query leaves every cell walkable.
func (g *Grid) Build(blocked ObstacleQuery) error {
	if err := g.cfg.Validate(); err != nil {
		return err
	}
	w, h := g.cfg.Width, g.cfg.Height
	nodes := make([]Node, w*h)
	walkable := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pos := g.GridToWorld(x, y)
			ok := blocked == nil || !blocked(pos)
			nodes[y*w+x] = Node{
				X:             x,
				Y:             y,
				walkable:      ok,
				WorldPosition: pos,
				GCost:         Unvisited,
			}
			if ok {
				walkable++
			}
		}
	}
	g.nodes = nodes
	g.walkable = walkable
	g.regions = nil
	return nil
}

// ApplyPenalties sets every cell's movement penalty from q.
func (g *Grid) ApplyPenalties(q PenaltyQuery) {
	if q == nil {
		return
	}
	for i := range g.nodes {
		g.nodes[i].MovementPenalty = clampPenalty(q(g.nodes[i].WorldPosition))
	}
}

func (g *Grid) Width() int         { return g.cfg.Width }
func (g *Grid) Height() int        { return g.cfg.Height }
func (g *Grid) CellSize() float32  { return g.cfg.CellSize }
func (g *Grid) Origin() mgl32.Vec3 { return g.cfg.Origin }
func (g *Grid) Config() Config     { return g.cfg }
func (g *Grid) Len() int           { return len(g.nodes) }
func (g *Grid) WalkableCount() int { return g.walkable }
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.cfg.Width && y < g.cfg.Height
}

// WorldToGrid maps pos to the containing cell, clamped to the grid bounds.
func (g *Grid) WorldToGrid(pos mgl32.Vec3) (x, y int) {
	rel := pos.Sub(g.cfg.Origin)
	x = clampCell(float64(rel.X())/float64(g.cfg.CellSize), g.cfg.Width)
	y = clampCell(float64(rel.Z())/float64(g.cfg.CellSize), g.cfg.Height)
	return x, y
}

// clampCell floors v and clamps it to [0, n-1] before converting, so values
// beyond the int range still land on the nearest edge. NaN maps to 0.
func clampCell(v float64, n int) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(min(max(math.Floor(v), 0), float64(n-1)))
}

// GridToWorld returns the centre of cell (x, y).
func (g *Grid) GridToWorld(x, y int) mgl32.Vec3 {
	cs := g.cfg.CellSize
	return g.cfg.Origin.Add(mgl32.Vec3{
		(float32(x) + 0.5) * cs,
		0,
		(float32(y) + 0.5) * cs,
	})
}

// Node returns the node at (x, y), or nil if out of bounds.
func (g *Grid) Node(x, y int) *Node {
	if !g.InBounds(x, y) {
		return nil
	}
	return &g.nodes[y*g.cfg.Width+x]
}

// NodeAt returns the node containing pos, clamped to the grid.
func (g *Grid) NodeAt(pos mgl32.Vec3) *Node {
	return g.Node(g.WorldToGrid(pos))
}

// Nodes yields every node in row-major order.
func (g *Grid) Nodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for i := range g.nodes {
			if !yield(&g.nodes[i]) {
				return
			}
		}
	}
}

// walkableAt treats out-of-bounds cells as blocked.
func (g *Grid) walkableAt(x, y int) bool {
	n := g.Node(x, y)
	return n != nil && n.walkable
}

// Neighbors yields the in-bounds cells around n. A diagonal step is omitted
// when both orthogonal cells it passes between are blocked.
func (g *Grid) Neighbors(n *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, d := range neighborOffsets {
			dx, dy := d[0], d[1]
			nb := g.Node(n.X+dx, n.Y+dy)
			if nb == nil {
				continue
			}
			if dx != 0 && dy != 0 && !g.walkableAt(n.X+dx, n.Y) && !g.walkableAt(n.X, n.Y+dy) {
				continue
			}
			if !yield(nb) {
				return
			}
		}
	}
}

// SetWalkable updates a single cell. It returns false if (x, y) is out of bounds.
func (g *Grid) SetWalkable(x, y int, walkable bool) bool {
	n := g.Node(x, y)
	if n == nil {
		return false
	}
	if n.walkable == walkable {
		return true
	}
	n.walkable = walkable
	if walkable {
		g.walkable++
	} else {
		g.walkable--
	}
	g.regions = nil
	return true
}

// ToggleWalkable flips a single cell. It returns false if (x, y) is out of bounds.
func (g *Grid) ToggleWalkable(x, y int) bool {
	n := g.Node(x, y)
	if n == nil {
		return false
	}
	return g.SetWalkable(x, y, !n.walkable)
}

// SetPenalty sets the movement penalty of a cell, clamped to [0, MaxPenalty].
func (g *Grid) SetPenalty(x, y, penalty int) bool {
	n := g.Node(x, y)
	if n == nil {
		return false
	}
	n.MovementPenalty = clampPenalty(penalty)
	return true
}

func clampPenalty(p int) int { return min(max(p, 0), MaxPenalty) }

// ResetSearchState clears the scratch fields of every node.
func (g *Grid) ResetSearchState() {
	for i := range g.nodes {
		n := &g.nodes[i]
		n.GCost = Unvisited
		n.HCost = 0
		n.Parent = nil
	}
}

package pathfind

import (
	"github.com/go-gl/mathgl/mgl32"

	"grid_router/pkg/grid"
	"grid_router/pkg/heap"
)

// Path is the result of a successful search.
type Path struct {
	Waypoints []mgl32.Vec3 // cell centres from start to goal, inclusive
	Cells     []grid.Coord
	Cost      int        // total G cost of the goal, penalties included
	Goal      grid.Coord // may differ from the requested goal if it was blocked
	Expanded  int        // nodes closed during the search
}

// Search runs A* over a Grid. It owns its open and closed sets and reuses
// them between queries. The scratch fields it writes live on the grid's nodes,
// so only one Search may run against a given Grid at a time.
type Search struct {
	grid   *grid.Grid
	open   *heap.IndexedMinHeap[*grid.Node, grid.Coord]
	closed map[grid.Coord]struct{}
}

// NewSearch creates a search bound to g.
func NewSearch(g *grid.Grid) *Search {
	return &Search{
		grid:   g,
		open:   heap.New(grid.Less, (*grid.Node).Key),
		closed: make(map[grid.Coord]struct{}, 256),
	}
}

// Grid returns the grid the search runs against.
func (s *Search) Grid() *grid.Grid { return s.grid }

// FindPath searches between two world positions. Endpoints outside the grid
// are clamped to the nearest edge cell. The boolean is false when no path
// exists; that is an ordinary outcome, not an error.
func (s *Search) FindPath(startWorld, endWorld mgl32.Vec3) (Path, bool) {
	return s.FindPathNodes(s.grid.NodeAt(startWorld), s.grid.NodeAt(endWorld))
}

// FindPathNodes searches between two nodes of the grid. A non-walkable goal
// is replaced by the nearest walkable cell.
func (s *Search) FindPathNodes(start, end *grid.Node) (Path, bool) {
	if start == nil || end == nil {
		return Path{}, false
	}
	goal := end
	if !goal.Walkable() {
		if goal = nearestWalkable(s.grid, end); goal == nil {
			return Path{}, false
		}
	}

	// Unreachable goals would otherwise exhaust the whole region.
	if start.Walkable() && !s.grid.SameRegion(start, goal) {
		return Path{}, false
	}

	s.grid.ResetSearchState()
	s.open.Clear()
	clear(s.closed)

	start.GCost = 0
	start.HCost = Heuristic(start, goal)
	s.open.Insert(start)

	for s.open.Len() > 0 {
		current, err := s.open.ExtractMin()
		if err != nil {
			break
		}
		if current == goal {
			return s.reconstruct(start, goal), true
		}
		s.closed[current.Key()] = struct{}{}

		for nb := range s.grid.Neighbors(current) {
			if !nb.Walkable() {
				continue
			}
			if _, done := s.closed[nb.Key()]; done {
				continue
			}
			tentative := current.GCost + MoveCost(current, nb) + nb.MovementPenalty
			if tentative >= nb.GCost {
				continue
			}
			nb.Parent = current
			nb.GCost = tentative
			nb.HCost = Heuristic(nb, goal)
			if s.open.Contains(nb) {
				s.open.Reprioritize(nb)
			} else {
				s.open.Insert(nb)
			}
		}
	}
	return Path{}, false
}

// reconstruct walks parent links from goal back to start.
func (s *Search) reconstruct(start, goal *grid.Node) Path {
	var cells []*grid.Node
	for n := goal; n != nil; n = n.Parent {
		cells = append(cells, n)
		if n == start {
			break
		}
	}

	p := Path{
		Waypoints: make([]mgl32.Vec3, len(cells)),
		Cells:     make([]grid.Coord, len(cells)),
		Cost:      goal.GCost,
		Goal:      goal.Key(),
		Expanded:  len(s.closed),
	}
	for i, n := range cells {
		j := len(cells) - 1 - i
		p.Waypoints[j] = n.WorldPosition
		p.Cells[j] = n.Key()
	}
	return p
}

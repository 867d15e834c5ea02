package pathfind

import "grid_router/pkg/grid"

// Integer step costs; 14 approximates 10*sqrt(2).
const (
	StraightCost = 10
	DiagonalCost = 14
)

// Heuristic is the octile distance between a and b. It is admissible and
// consistent for 8-connected movement with the step costs above.
func Heuristic(a, b *grid.Node) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	return StraightCost*abs(dx-dy) + DiagonalCost*min(dx, dy)
}

// MoveCost is the cost of a single step between adjacent cells, excluding
// the destination's movement penalty.
func MoveCost(a, b *grid.Node) int {
	if a.X != b.X && a.Y != b.Y {
		return DiagonalCost
	}
	return StraightCost
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

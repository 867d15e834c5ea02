package pathfind

import "grid_router/pkg/grid"

// nearestWalkable scans square rings of growing radius around n and returns
// the first walkable cell. Each ring is scanned row by row, low y first, then
// low x, so the substitute is deterministic. Returns nil if the grid has no
// walkable cell within max(width, height).
func nearestWalkable(g *grid.Grid, n *grid.Node) *grid.Node {
	maxRadius := max(g.Width(), g.Height())
	for r := 1; r <= maxRadius; r++ {
		for dy := -r; dy <= r; dy++ {
			edgeRow := dy == -r || dy == r
			for dx := -r; dx <= r; dx++ {
				if !edgeRow && dx != -r && dx != r {
					continue // interior cells belong to smaller rings
				}
				c := g.Node(n.X+dx, n.Y+dy)
				if c != nil && c.Walkable() {
					return c
				}
			}
		}
	}
	return nil
}

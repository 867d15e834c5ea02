package grid

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Unvisited is the GCost sentinel for a node no search has reached.
const Unvisited = math.MaxInt

// MaxPenalty is the largest movement penalty a cell can hold. It fits the
// uint32 penalty field of the binary format.
const MaxPenalty = math.MaxInt32

// Coord is the identity of a node. Maps and sets of nodes are keyed by Coord.
type Coord struct {
	X, Y int
}

// Node is a single cell of the navigation grid.
type Node struct {
	X, Y            int
	walkable        bool
	MovementPenalty int        // added to the cost of entering this cell
	WorldPosition   mgl32.Vec3 // cell centre

	// Search scratch state, reset by Grid.ResetSearchState.
	GCost  int
	HCost  int
	Parent *Node
}

// Walkable reports whether the cell can be entered. It changes only through
// Grid.SetWalkable, ToggleWalkable and Build.
func (n *Node) Walkable() bool { return n.walkable }

// Key returns the node's identity.
func (n *Node) Key() Coord { return Coord{X: n.X, Y: n.Y} }

// FCost is GCost + HCost.
func (n *Node) FCost() int { return n.GCost + n.HCost }

// Less orders nodes for the open set: lower FCost first, then lower HCost.
func Less(a, b *Node) bool {
	fa, fb := a.FCost(), b.FCost()
	if fa != fb {
		return fa < fb
	}
	return a.HCost < b.HCost
}

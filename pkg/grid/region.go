package grid

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []int32
	rank   []byte
	size   []int32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n int) *UnionFind {
	parent := make([]int32, n)
	size := make([]int32, n)
	for i := range n {
		parent[i] = int32(i)
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x int32) int32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y int32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the number of elements in x's set.
func (uf *UnionFind) Size(x int32) int32 { return uf.size[uf.Find(x)] }

const noRegion = -1

// regions labels walkable cells by connected component; blocked cells are noRegion.
type regions struct {
	label   []int32
	count   int
	largest int
}

// labelRegions connects every walkable cell to its walkable neighbors, using
// the same neighbor relation as the search (corner rule included).
func labelRegions(g *Grid) *regions {
	n := len(g.nodes)
	uf := NewUnionFind(n)
	w := g.cfg.Width

	for i := range g.nodes {
		node := &g.nodes[i]
		if !node.walkable {
			continue
		}
		for nb := range g.Neighbors(node) {
			if nb.walkable {
				uf.Union(int32(i), int32(nb.Y*w+nb.X))
			}
		}
	}

	r := &regions{label: make([]int32, n)}
	ids := make(map[int32]int32)
	for i := range g.nodes {
		if !g.nodes[i].walkable {
			r.label[i] = noRegion
			continue
		}
		root := uf.Find(int32(i))
		id, ok := ids[root]
		if !ok {
			id = int32(len(ids))
			ids[root] = id
			r.largest = max(r.largest, int(uf.Size(root)))
		}
		r.label[i] = id
	}
	r.count = len(ids)
	return r
}

func (g *Grid) ensureRegions() *regions {
	if g.regions == nil {
		g.regions = labelRegions(g)
	}
	return g.regions
}

// RegionCount returns the number of walkable connected regions.
func (g *Grid) RegionCount() int { return g.ensureRegions().count }

// LargestRegion returns the cell count of the biggest walkable region.
func (g *Grid) LargestRegion() int { return g.ensureRegions().largest }

// Region returns the region id of (x, y), or -1 for blocked or out-of-bounds cells.
// Labels are recomputed lazily after any walkability change.
func (g *Grid) Region(x, y int) int {
	if !g.InBounds(x, y) {
		return noRegion
	}
	return int(g.ensureRegions().label[y*g.cfg.Width+x])
}

// SameRegion reports whether a and b are walkable and mutually reachable.
func (g *Grid) SameRegion(a, b *Node) bool {
	ra := g.Region(a.X, a.Y)
	return ra != noRegion && ra == g.Region(b.X, b.Y)
}

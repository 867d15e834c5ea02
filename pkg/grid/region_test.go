package grid

import (
	"testing"
)

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(5)

	if !uf.Union(0, 1) {
		t.Error("Union(0,1) should return true")
	}
	if !uf.Union(2, 3) {
		t.Error("Union(2,3) should return true")
	}
	if uf.Union(0, 1) {
		t.Error("Union(0,1) again should return false")
	}

	if uf.Find(0) != uf.Find(1) {
		t.Error("0 and 1 should be in same set")
	}
	if uf.Find(0) == uf.Find(2) {
		t.Error("0 and 2 should be in different sets")
	}
	if uf.Size(3) != 2 {
		t.Errorf("Size(3) = %d, want 2", uf.Size(3))
	}

	uf.Union(1, 3)
	if uf.Find(0) != uf.Find(3) {
		t.Error("0 and 3 should be in same set after Union(1,3)")
	}
	if uf.Size(0) != 4 {
		t.Errorf("Size(0) = %d, want 4", uf.Size(0))
	}
}

func TestRegionsWall(t *testing.T) {
	// A full wall at x=2 splits a 5x3 grid into two regions.
	g := newTestGrid(t, 5, 3, Coord{2, 0}, Coord{2, 1}, Coord{2, 2})

	if got := g.RegionCount(); got != 2 {
		t.Fatalf("RegionCount = %d, want 2", got)
	}
	if got := g.LargestRegion(); got != 6 {
		t.Errorf("LargestRegion = %d, want 6", got)
	}
	if g.SameRegion(g.Node(0, 0), g.Node(4, 2)) {
		t.Error("cells on opposite sides of the wall share a region")
	}
	if !g.SameRegion(g.Node(0, 0), g.Node(1, 2)) {
		t.Error("cells on the same side do not share a region")
	}
	if g.Region(2, 1) != -1 {
		t.Errorf("Region of blocked cell = %d, want -1", g.Region(2, 1))
	}

	// Opening a gap merges the regions; labels are recomputed.
	g.SetWalkable(2, 1, true)
	if got := g.RegionCount(); got != 1 {
		t.Fatalf("RegionCount after opening gap = %d, want 1", got)
	}
	if !g.SameRegion(g.Node(0, 0), g.Node(4, 2)) {
		t.Error("gap did not connect the two sides")
	}
}

func TestRegionsFollowWalkabilityChanges(t *testing.T) {
	g, err := New(Config{Width: 3, Height: 3, CellSize: 1})
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 3; y++ {
		g.SetWalkable(1, y, false)
	}
	if g.SameRegion(g.Node(0, 0), g.Node(2, 0)) {
		t.Fatal("wall should split the grid")
	}

	g.ToggleWalkable(1, 1)
	if !g.Node(1, 1).Walkable() {
		t.Fatal("ToggleWalkable did not open (1,1)")
	}
	if !g.SameRegion(g.Node(0, 0), g.Node(2, 0)) {
		t.Error("opening (1,1) should join both sides")
	}
	if got := g.RegionCount(); got != 1 {
		t.Errorf("RegionCount = %d, want 1", got)
	}
}

func TestRegionsRespectCornerRule(t *testing.T) {
	// (0,0) and (1,1) touch only diagonally between two blocked cells.
	g := newTestGrid(t, 2, 2, Coord{1, 0}, Coord{0, 1})
	if g.SameRegion(g.Node(0, 0), g.Node(1, 1)) {
		t.Error("diagonal through a sealed corner connected two regions")
	}
	if got := g.RegionCount(); got != 2 {
		t.Errorf("RegionCount = %d, want 2", got)
	}
}

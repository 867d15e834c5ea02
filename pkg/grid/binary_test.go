package grid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

func buildTestGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := New(Config{Width: 4, Height: 3, CellSize: 0.5, Origin: mgl32.Vec3{1, 2, 3}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g.SetWalkable(1, 1, false)
	g.SetWalkable(3, 0, false)
	g.SetPenalty(2, 2, 40)
	g.Node(0, 0).GCost = 99 // scratch state must not be persisted
	return g
}

func TestBinaryRoundTrip(t *testing.T) {
	original := buildTestGrid(t)

	path := filepath.Join(t.TempDir(), "test.grid.bin")
	if err := WriteBinary(path, original); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	loaded, err := ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	if loaded.Config() != original.Config() {
		t.Errorf("Config: got %+v, want %+v", loaded.Config(), original.Config())
	}
	if loaded.WalkableCount() != original.WalkableCount() {
		t.Errorf("WalkableCount: got %d, want %d", loaded.WalkableCount(), original.WalkableCount())
	}
	for n := range original.Nodes() {
		l := loaded.Node(n.X, n.Y)
		if l.Walkable() != n.Walkable() {
			t.Errorf("Walkable(%d,%d): got %v, want %v", n.X, n.Y, l.Walkable(), n.Walkable())
		}
		if l.MovementPenalty != n.MovementPenalty {
			t.Errorf("MovementPenalty(%d,%d): got %d, want %d", n.X, n.Y, l.MovementPenalty, n.MovementPenalty)
		}
		if l.WorldPosition != n.WorldPosition {
			t.Errorf("WorldPosition(%d,%d): got %v, want %v", n.X, n.Y, l.WorldPosition, n.WorldPosition)
		}
	}
	if loaded.Node(0, 0).GCost != Unvisited {
		t.Errorf("GCost persisted: got %d", loaded.Node(0, 0).GCost)
	}

	// Temp file is gone after the atomic rename.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file still present: %v", err)
	}
}

func TestBinaryClampsPenalty(t *testing.T) {
	g, err := New(Config{Width: 2, Height: 1, CellSize: 1})
	if err != nil {
		t.Fatal(err)
	}
	// Set directly, bypassing SetPenalty's clamp.
	g.Node(1, 0).MovementPenalty = 1 << 40

	path := filepath.Join(t.TempDir(), "penalty.grid.bin")
	if err := WriteBinary(path, g); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	loaded, err := ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}
	if got := loaded.Node(1, 0).MovementPenalty; got != MaxPenalty {
		t.Errorf("MovementPenalty = %d, want %d", got, MaxPenalty)
	}
}

func TestBinaryCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.grid.bin")
	if err := WriteBinary(path, buildTestGrid(t)); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Flip a byte in the cell data, past the header.
	data[len(data)-10] ^= 0xFF
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = ReadBinary(path)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("ReadBinary err = %v, want ErrCorrupt", err)
	}
}

func TestBinaryBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(path, []byte("NOTAGRIDFILE-PADDING-PADDING-PADDING-PADDING"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBinary(path); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("ReadBinary err = %v, want ErrCorrupt", err)
	}
}

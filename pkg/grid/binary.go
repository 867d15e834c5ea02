package grid

import (
	"encoding/binary"
	"hash"
	"hash/crc32"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const (
	magicBytes = "GRIDNAV1"
	version    = uint32(1)
	maxCells   = 64 << 20
)

// ErrCorrupt is returned when a grid file fails validation.
var ErrCorrupt = errors.New("grid: corrupt file")

// fileHeader is the binary header.
type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	Width    uint32
	Height   uint32
	CellSize float32
	Origin   [3]float32
}

// WriteBinary serializes the grid topology (dimensions, walkability and
// penalties) to path. Search scratch state is not persisted.
// The file is written to path.tmp and renamed into place.
func WriteBinary(path string, g *Grid) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	cw := &crc32Writer{w: f, hash: crc32.NewIEEE()}
	if err := encode(cw, g); err != nil {
		return err
	}

	if err := binary.Write(f, binary.LittleEndian, cw.hash.Sum32()); err != nil {
		return errors.Wrap(err, "write CRC32")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrap(err, "rename")
	}
	return nil
}

func encode(w io.Writer, g *Grid) error {
	hdr := fileHeader{
		Version:  version,
		Width:    uint32(g.cfg.Width),
		Height:   uint32(g.cfg.Height),
		CellSize: g.cfg.CellSize,
		Origin:   g.cfg.Origin,
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return errors.Wrap(err, "write header")
	}

	walkable := make([]uint8, len(g.nodes))
	penalty := make([]uint32, len(g.nodes))
	for i := range g.nodes {
		if g.nodes[i].walkable {
			walkable[i] = 1
		}
		penalty[i] = uint32(clampPenalty(g.nodes[i].MovementPenalty))
	}
	if err := binary.Write(w, binary.LittleEndian, walkable); err != nil {
		return errors.Wrap(err, "write walkable")
	}
	if err := binary.Write(w, binary.LittleEndian, penalty); err != nil {
		return errors.Wrap(err, "write penalties")
	}
	return nil
}

// ReadBinary loads a grid written by WriteBinary.
func ReadBinary(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()

	cr := &crc32Reader{r: f, hash: crc32.NewIEEE()}

	var hdr fileHeader
	if err := binary.Read(cr, binary.LittleEndian, &hdr); err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, errors.Wrapf(ErrCorrupt, "invalid magic bytes %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, errors.Wrapf(ErrCorrupt, "unsupported version %d", hdr.Version)
	}
	n := uint64(hdr.Width) * uint64(hdr.Height)
	if n > maxCells {
		return nil, errors.Wrapf(ErrCorrupt, "%d cells exceeds limit %d", n, maxCells)
	}

	cfg := Config{
		Width:    int(hdr.Width),
		Height:   int(hdr.Height),
		CellSize: hdr.CellSize,
		Origin:   mgl32.Vec3(hdr.Origin),
	}
	g, err := New(cfg)
	if err != nil {
		return nil, err
	}

	walkable := make([]uint8, n)
	penalty := make([]uint32, n)
	if err := binary.Read(cr, binary.LittleEndian, walkable); err != nil {
		return nil, errors.Wrap(err, "read walkable")
	}
	if err := binary.Read(cr, binary.LittleEndian, penalty); err != nil {
		return nil, errors.Wrap(err, "read penalties")
	}

	expected := cr.hash.Sum32()
	var stored uint32
	if err := binary.Read(f, binary.LittleEndian, &stored); err != nil {
		return nil, errors.Wrap(err, "read CRC32")
	}
	if stored != expected {
		return nil, errors.Wrapf(ErrCorrupt, "CRC32 mismatch: stored=%08x computed=%08x", stored, expected)
	}

	for i := range g.nodes {
		if walkable[i] == 0 {
			g.SetWalkable(g.nodes[i].X, g.nodes[i].Y, false)
		}
		g.nodes[i].MovementPenalty = int(min(penalty[i], MaxPenalty))
	}
	return g, nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash hash.Hash32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash hash.Hash32
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}

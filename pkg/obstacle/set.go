// Package obstacle holds the world-space shapes that block or slow movement
// on a navigation grid. Shapes live on the XZ plane and are indexed with an
// R-tree so per-cell queries during a grid build stay cheap.
package obstacle

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
	"github.com/tidwall/rtree"
)

// ErrInvalidShape is returned for degenerate rectangles and polygons.
var ErrInvalidShape = errors.New("obstacle: invalid shape")

// shape is an indexed obstacle. A nil poly means the bound itself is the shape.
type shape struct {
	bound orb.Bound
	poly  orb.Polygon
}

func (s shape) contains(p orb.Point) bool {
	if s.poly == nil {
		return s.bound.Contains(p)
	}
	return planar.PolygonContains(s.poly, p)
}

type zone struct {
	bound   orb.Bound
	penalty int
}

// Set is a collection of blocking shapes and penalty zones.
// The zero value is an empty set ready to use. A Set is not safe for
// concurrent mutation, but concurrent queries are fine once it is built.
type Set struct {
	shapes rtree.RTreeG[shape]
	zones  rtree.RTreeG[zone]
}

// AddRect blocks the axis-aligned rectangle spanning min and max (X, Z).
func (s *Set) AddRect(min, max orb.Point) error {
	if min[0] > max[0] || min[1] > max[1] {
		return errors.Wrapf(ErrInvalidShape, "rect min %v exceeds max %v", min, max)
	}
	b := orb.Bound{Min: min, Max: max}
	s.shapes.Insert(b.Min, b.Max, shape{bound: b})
	return nil
}

// AddPolygon blocks the area inside p. Holes in p stay walkable.
func (s *Set) AddPolygon(p orb.Polygon) error {
	if len(p) == 0 || len(p[0]) < 3 {
		return errors.Wrap(ErrInvalidShape, "polygon needs an outer ring of at least 3 points")
	}
	if !p[0].Closed() {
		p = closeRings(p)
	}
	b := p.Bound()
	s.shapes.Insert(b.Min, b.Max, shape{bound: b, poly: p})
	return nil
}

// AddLine blocks a strip of the given width centred on each segment of ls.
// Zero-length segments are skipped.
func (s *Set) AddLine(ls orb.LineString, width float64) error {
	if len(ls) < 2 || width <= 0 {
		return errors.Wrapf(ErrInvalidShape, "line of %d points, width %v", len(ls), width)
	}
	half := width / 2
	for i := 0; i+1 < len(ls); i++ {
		a, b := ls[i], ls[i+1]
		dx, dz := b[0]-a[0], b[1]-a[1]
		l := math.Hypot(dx, dz)
		if l == 0 {
			continue
		}
		// Unit normal scaled to the half width.
		nx, nz := -dz/l*half, dx/l*half
		quad := orb.Polygon{{
			{a[0] + nx, a[1] + nz},
			{b[0] + nx, b[1] + nz},
			{b[0] - nx, b[1] - nz},
			{a[0] - nx, a[1] - nz},
			{a[0] + nx, a[1] + nz},
		}}
		bound := quad.Bound()
		s.shapes.Insert(bound.Min, bound.Max, shape{bound: bound, poly: quad})
	}
	return nil
}

// AddPenalty adds a movement penalty zone. Overlapping zones do not stack;
// a cell takes the highest penalty covering it.
func (s *Set) AddPenalty(min, max orb.Point, penalty int) error {
	if min[0] > max[0] || min[1] > max[1] {
		return errors.Wrapf(ErrInvalidShape, "penalty zone min %v exceeds max %v", min, max)
	}
	if penalty < 0 {
		return errors.Wrapf(ErrInvalidShape, "negative penalty %d", penalty)
	}
	b := orb.Bound{Min: min, Max: max}
	s.zones.Insert(b.Min, b.Max, zone{bound: b, penalty: penalty})
	return nil
}

// Len returns the number of blocking shapes.
func (s *Set) Len() int { return s.shapes.Len() }

// Zones returns the number of penalty zones.
func (s *Set) Zones() int { return s.zones.Len() }

// Blocked reports whether pos lies inside any blocking shape.
// Its signature matches grid.ObstacleQuery.
func (s *Set) Blocked(pos mgl32.Vec3) bool {
	p := planePoint(pos)
	hit := false
	s.shapes.Search(p, p, func(_, _ [2]float64, sh shape) bool {
		hit = sh.contains(p)
		return !hit
	})
	return hit
}

// Penalty returns the highest penalty of the zones covering pos, or 0.
// Its signature matches grid.PenaltyQuery.
func (s *Set) Penalty(pos mgl32.Vec3) int {
	p := planePoint(pos)
	best := 0
	s.zones.Search(p, p, func(_, _ [2]float64, z zone) bool {
		if z.penalty > best && z.bound.Contains(p) {
			best = z.penalty
		}
		return true
	})
	return best
}

func planePoint(pos mgl32.Vec3) orb.Point {
	return orb.Point{float64(pos.X()), float64(pos.Z())}
}

func closeRings(p orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, r := range p {
		if len(r) > 0 && !r.Closed() {
			r = append(r[:len(r):len(r)], r[0])
		}
		out[i] = r
	}
	return out
}

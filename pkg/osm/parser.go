// Package osm extracts obstacle footprints (buildings, water, barriers) from
// OpenStreetMap extracts and projects them into the grid's local frame.
package osm

import (
	"context"
	"io"
	"log"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"

	"grid_router/pkg/geo"
	"grid_router/pkg/obstacle"
)

// DefaultTags lists the tag filters used when none are configured.
var DefaultTags = []string{"building", "natural=water", "barrier"}

// BarrierWidth is the width in meters given to open ways such as fences.
const BarrierWidth = 1.0

// linearKeys name tags whose ways are lines even when closed, such as a
// fence around a field.
var linearKeys = map[string]bool{"barrier": true}

// Footprint is one obstacle way projected to local X/Z meters.
type Footprint struct {
	WayID  osm.WayID
	Tag    string // the filter that matched
	Points orb.LineString
	Closed bool // first and last node are the same
}

// ParseResult holds the footprints found in an OSM extract.
type ParseResult struct {
	Footprints   []Footprint
	MissingNodes int // way nodes with no coordinates in the extract
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	Projection geo.Projection
	Tags       []string // "key" or "key=value"; empty means DefaultTags
}

func (o ParseOptions) tags() []string {
	if len(o.Tags) == 0 {
		return DefaultTags
	}
	return o.Tags
}

// matchTag returns the first filter the tags satisfy.
// A bare key matches any value other than "no".
func matchTag(tags osm.Tags, filters []string) (string, bool) {
	for _, f := range filters {
		key, value, hasValue := strings.Cut(f, "=")
		v := tags.Find(key)
		if v == "" {
			continue
		}
		if hasValue {
			if v == value {
				return f, true
			}
			continue
		}
		if v != "no" {
			return f, true
		}
	}
	return "", false
}

// wayInfo holds a matched way collected before node coordinates are known.
type wayInfo struct {
	ID      osm.WayID
	Tag     string
	NodeIDs []osm.NodeID
}

type collector struct {
	filters    []string
	ways       []wayInfo
	referenced map[osm.NodeID]struct{}
	lat, lon   map[osm.NodeID]float64
}

func newCollector(filters []string) *collector {
	return &collector{
		filters:    filters,
		referenced: make(map[osm.NodeID]struct{}),
		lat:        make(map[osm.NodeID]float64),
		lon:        make(map[osm.NodeID]float64),
	}
}

func (c *collector) addWay(w *osm.Way) {
	if len(w.Nodes) < 2 {
		return
	}
	tag, ok := matchTag(w.Tags, c.filters)
	if !ok {
		return
	}
	ids := make([]osm.NodeID, len(w.Nodes))
	for i, wn := range w.Nodes {
		ids[i] = wn.ID
		c.referenced[wn.ID] = struct{}{}
	}
	c.ways = append(c.ways, wayInfo{ID: w.ID, Tag: tag, NodeIDs: ids})
}

func (c *collector) addNode(n *osm.Node, onlyReferenced bool) {
	if onlyReferenced {
		if _, needed := c.referenced[n.ID]; !needed {
			return
		}
	}
	c.lat[n.ID] = n.Lat
	c.lon[n.ID] = n.Lon
}

func (c *collector) result(proj geo.Projection) *ParseResult {
	res := &ParseResult{}
	for _, w := range c.ways {
		pts := make(orb.LineString, 0, len(w.NodeIDs))
		for _, id := range w.NodeIDs {
			lat, ok := c.lat[id]
			if !ok {
				res.MissingNodes++
				continue
			}
			x, z := proj.ToLocal(lat, c.lon[id])
			pts = append(pts, orb.Point{x, z})
		}
		if len(pts) < 2 {
			continue
		}
		closed := len(w.NodeIDs) > 3 && w.NodeIDs[0] == w.NodeIDs[len(w.NodeIDs)-1] && len(pts) > 3
		res.Footprints = append(res.Footprints, Footprint{WayID: w.ID, Tag: w.Tag, Points: pts, Closed: closed})
	}
	if res.MissingNodes > 0 {
		log.Printf("Warning: %d way nodes had no coordinates", res.MissingNodes)
	}
	log.Printf("Built %d footprints", len(res.Footprints))
	return res
}

// Parse reads an OSM PBF file. The reader is consumed twice (ways, then the
// nodes they reference), so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opt ParseOptions) (*ParseResult, error) {
	c := newCollector(opt.tags())

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		if w, ok := scanner.Object().(*osm.Way); ok {
			c.addWay(w)
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, errors.Wrap(err, "pass 1 (ways)")
	}
	scanner.Close()

	log.Printf("Pass 1 complete: %d ways, %d referenced nodes", len(c.ways), len(c.referenced))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seek for pass 2")
	}

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		if n, ok := scanner.Object().(*osm.Node); ok {
			c.addNode(n, true)
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, errors.Wrap(err, "pass 2 (nodes)")
	}
	scanner.Close()

	log.Printf("Pass 2 complete: %d node coordinates collected", len(c.lat))

	return c.result(opt.Projection), nil
}

// ParseXML reads an OSM XML document in a single pass. Every node
// coordinate is kept, so it suits small extracts.
func ParseXML(ctx context.Context, r io.Reader, opt ParseOptions) (*ParseResult, error) {
	c := newCollector(opt.tags())

	scanner := osmxml.New(ctx, r)
	defer scanner.Close()
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			c.addNode(o, false)
		case *osm.Way:
			c.addWay(o)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan xml")
	}

	log.Printf("Scan complete: %d ways, %d nodes", len(c.ways), len(c.lat))

	return c.result(opt.Projection), nil
}

// ParseFile opens path and dispatches on its extension: ".pbf" files are
// read as PBF, anything else as XML.
func ParseFile(ctx context.Context, path string, opt ParseOptions) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open osm file")
	}
	defer f.Close()

	if strings.HasSuffix(path, ".pbf") {
		return Parse(ctx, f, opt)
	}
	return ParseXML(ctx, f, opt)
}

// AddTo inserts every footprint into s: closed area ways as polygons, other
// ways as strips BarrierWidth wide. It returns the number of footprints added.
func (r *ParseResult) AddTo(s *obstacle.Set) (int, error) {
	added := 0
	for _, fp := range r.Footprints {
		var err error
		key, _, _ := strings.Cut(fp.Tag, "=")
		if fp.Closed && !linearKeys[key] {
			err = s.AddPolygon(orb.Polygon{orb.Ring(fp.Points)})
		} else {
			err = s.AddLine(fp.Points, BarrierWidth)
		}
		if err != nil {
			return added, errors.Wrapf(err, "way %d", fp.WayID)
		}
		added++
	}
	return added, nil
}

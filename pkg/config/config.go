// Package config loads the YAML file describing a navigation grid, its
// obstacles and the server that exposes it.
package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"grid_router/pkg/geo"
	"grid_router/pkg/grid"
	"grid_router/pkg/obstacle"
	osmparser "grid_router/pkg/osm"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the whole grid.yaml document.
type Config struct {
	Server    ServerConfig   `yaml:"server"`
	Grid      GridConfig     `yaml:"grid"`
	Obstacles ObstacleConfig `yaml:"obstacles"`
	Penalties []PenaltyZone  `yaml:"penalties"`
	OSM       OSMConfig      `yaml:"osm"`
}

// ServerConfig configures the HTTP server started by cmd/server.
type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	CORSOrigin    string        `yaml:"cors_origin"`
	MaxConcurrent int           `yaml:"max_concurrent"` // 0 means 2 x NumCPU
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
}

// GridConfig is the grid section; Origin is the outer corner of cell (0,0).
type GridConfig struct {
	Width    int        `yaml:"width"`
	Height   int        `yaml:"height"`
	CellSize float32    `yaml:"cell_size"`
	Origin   [3]float32 `yaml:"origin"`
}

// Rect is an axis-aligned area in world X/Z.
type Rect struct {
	Min [2]float64 `yaml:"min"`
	Max [2]float64 `yaml:"max"`
}

// ObstacleConfig lists blocking shapes in world X/Z. Each polygon is a
// single outer ring of at least 3 points.
type ObstacleConfig struct {
	Rects    []Rect         `yaml:"rects"`
	Polygons [][][2]float64 `yaml:"polygons"`
}

// PenaltyZone adds Penalty to every cell centred inside Min..Max.
type PenaltyZone struct {
	Min     [2]float64 `yaml:"min"`
	Max     [2]float64 `yaml:"max"`
	Penalty int        `yaml:"penalty"`
}

// OSMConfig names an OpenStreetMap extract whose footprints become obstacles.
// RefLat/RefLon is the geographic point placed at world X=0, Z=0.
type OSMConfig struct {
	File   string   `yaml:"file"`
	RefLat float64  `yaml:"ref_lat"`
	RefLon float64  `yaml:"ref_lon"`
	Tags   []string `yaml:"tags"`
}

// Defaults returns the configuration used for any field the file omits.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Grid: GridConfig{Width: 64, Height: 64, CellSize: 1},
		OSM:  OSMConfig{Tags: append([]string(nil), osmparser.DefaultTags...)},
	}
}

// Load reads and validates the file at path. A relative osm.file is
// resolved against the directory holding the config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: load %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config: %s", path)
	}
	if cfg.OSM.File != "" && !filepath.IsAbs(cfg.OSM.File) {
		cfg.OSM.File = filepath.Join(filepath.Dir(path), cfg.OSM.File)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the grid, obstacle and server sections.
func (c *Config) Validate() error {
	if err := c.GridConfig().Validate(); err != nil {
		// Keeps both ErrInvalid and grid.ErrInvalidConfig in the chain.
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Server.MaxConcurrent < 0 {
		return errors.Wrapf(ErrInvalid, "server.max_concurrent %d", c.Server.MaxConcurrent)
	}
	for i, r := range c.Obstacles.Rects {
		if r.Min[0] > r.Max[0] || r.Min[1] > r.Max[1] {
			return errors.Wrapf(ErrInvalid, "obstacles.rects[%d]: min %v exceeds max %v", i, r.Min, r.Max)
		}
	}
	for i, p := range c.Obstacles.Polygons {
		if len(p) < 3 {
			return errors.Wrapf(ErrInvalid, "obstacles.polygons[%d]: %d points, need 3", i, len(p))
		}
	}
	for i, z := range c.Penalties {
		if z.Penalty < 0 {
			return errors.Wrapf(ErrInvalid, "penalties[%d]: negative penalty %d", i, z.Penalty)
		}
	}
	if c.OSM.RefLat < -90 || c.OSM.RefLat > 90 || c.OSM.RefLon < -180 || c.OSM.RefLon > 180 {
		return errors.Wrapf(ErrInvalid, "osm reference (%v, %v)", c.OSM.RefLat, c.OSM.RefLon)
	}
	return nil
}

// GridConfig converts the grid section.
func (c *Config) GridConfig() grid.Config {
	o := c.Grid.Origin
	return grid.Config{
		Width:    c.Grid.Width,
		Height:   c.Grid.Height,
		CellSize: c.Grid.CellSize,
		Origin:   mgl32.Vec3{o[0], o[1], o[2]},
	}
}

// ObstacleSet collects the configured rectangles, polygons and penalty
// zones, plus the OSM footprints when osm.file is set.
func (c *Config) ObstacleSet(ctx context.Context) (*obstacle.Set, error) {
	set := &obstacle.Set{}
	for i, r := range c.Obstacles.Rects {
		if err := set.AddRect(orb.Point(r.Min), orb.Point(r.Max)); err != nil {
			return nil, errors.Wrapf(err, "obstacles.rects[%d]", i)
		}
	}
	for i, pts := range c.Obstacles.Polygons {
		ring := make(orb.Ring, len(pts))
		for j, p := range pts {
			ring[j] = orb.Point(p)
		}
		if err := set.AddPolygon(orb.Polygon{ring}); err != nil {
			return nil, errors.Wrapf(err, "obstacles.polygons[%d]", i)
		}
	}
	for i, z := range c.Penalties {
		if err := set.AddPenalty(orb.Point(z.Min), orb.Point(z.Max), z.Penalty); err != nil {
			return nil, errors.Wrapf(err, "penalties[%d]", i)
		}
	}

	if c.OSM.File != "" {
		log.Printf("Importing OSM footprints from %s...", c.OSM.File)
		res, err := osmparser.ParseFile(ctx, c.OSM.File, osmparser.ParseOptions{
			Projection: geo.NewProjection(c.OSM.RefLat, c.OSM.RefLon),
			Tags:       c.OSM.Tags,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "osm %s", c.OSM.File)
		}
		n, err := res.AddTo(set)
		if err != nil {
			return nil, err
		}
		log.Printf("Added %d OSM obstacles", n)
	}
	return set, nil
}

// BuildGrid creates a grid from the configuration and marks obstacles and
// penalties on it.
func (c *Config) BuildGrid(ctx context.Context) (*grid.Grid, error) {
	set, err := c.ObstacleSet(ctx)
	if err != nil {
		return nil, err
	}
	g, err := grid.New(c.GridConfig())
	if err != nil {
		return nil, err
	}
	if err := g.Build(set.Blocked); err != nil {
		return nil, err
	}
	g.ApplyPenalties(set.Penalty)
	return g, nil
}

package api

import (
	"context"
	"encoding/json"
	"math"
	"mime"
	"net/http"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"grid_router/pkg/pathfind"
)

// Grid is what the handlers need from the navigation backend.
// *pathfind.Engine implements it.
type Grid interface {
	pathfind.Router
	SetWalkable(x, y int, walkable bool) error
	ToggleWalkable(x, y int) (bool, error)
	Stats() pathfind.Stats
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	grid Grid
}

// NewHandlers creates handlers serving g.
func NewHandlers(g Grid) *Handlers {
	return &Handlers{grid: g}
}

// HandlePath handles POST /api/v1/path.
func (h *Handlers) HandlePath(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req PathRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	start, err := toVec3(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	end, err := toVec3(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "end")
		return
	}

	p, err := h.grid.Route(r.Context(), start, end)
	if err != nil {
		if errors.Is(err, pathfind.ErrNoPath) {
			writeError(w, http.StatusNotFound, "no_path_found", "")
			return
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	resp := PathResponse{
		Cost:      p.Cost,
		Expanded:  p.Expanded,
		Goal:      CellJSON{X: p.Goal.X, Y: p.Goal.Y},
		Waypoints: make([]Vec3JSON, len(p.Waypoints)),
		Cells:     make([]CellJSON, len(p.Cells)),
	}
	for i, wp := range p.Waypoints {
		resp.Waypoints[i] = Vec3JSON{X: float64(wp.X()), Y: float64(wp.Y()), Z: float64(wp.Z())}
	}
	for i, c := range p.Cells {
		resp.Cells[i] = CellJSON{X: c.X, Y: c.Y}
	}

	writeJSON(w, resp)
}

// HandleCells handles POST /api/v1/cells.
func (h *Handlers) HandleCells(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req CellRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 256)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var (
		walkable bool
		err      error
	)
	if req.Walkable != nil {
		walkable = *req.Walkable
		err = h.grid.SetWalkable(req.X, req.Y, walkable)
	} else {
		walkable, err = h.grid.ToggleWalkable(req.X, req.Y)
	}
	if err != nil {
		if errors.Is(err, pathfind.ErrOutOfBounds) {
			writeError(w, http.StatusBadRequest, "invalid_cell", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	writeJSON(w, CellResponse{X: req.X, Y: req.Y, Walkable: walkable})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	s := h.grid.Stats()
	writeJSON(w, StatsResponse{
		Width:         s.Width,
		Height:        s.Height,
		CellSize:      s.CellSize,
		WalkableCells: s.WalkableCells,
		Regions:       s.Regions,
	})
}

func isJSON(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "application/json"
}

// toVec3 rejects components that are not finite float32 values.
func toVec3(v Vec3JSON) (mgl32.Vec3, error) {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) || math.Abs(c) > math.MaxFloat32 {
			return mgl32.Vec3{}, errors.New("coordinates must be finite float32 values")
		}
	}
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}

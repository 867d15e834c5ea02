package api

// PathRequest is the JSON body for POST /api/v1/path.
type PathRequest struct {
	Start Vec3JSON `json:"start"`
	End   Vec3JSON `json:"end"`
}

// Vec3JSON is a world position.
type Vec3JSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// CellJSON is a grid coordinate.
type CellJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PathResponse is the JSON response for a successful path query.
type PathResponse struct {
	Cost      int        `json:"cost"`
	Expanded  int        `json:"expanded"`
	Goal      CellJSON   `json:"goal"`
	Waypoints []Vec3JSON `json:"waypoints"`
	Cells     []CellJSON `json:"cells"`
}

// CellRequest is the JSON body for POST /api/v1/cells.
// A missing Walkable toggles the cell.
type CellRequest struct {
	X        int   `json:"x"`
	Y        int   `json:"y"`
	Walkable *bool `json:"walkable,omitempty"`
}

// CellResponse reports a cell's walkability after a mutation.
type CellResponse struct {
	X        int  `json:"x"`
	Y        int  `json:"y"`
	Walkable bool `json:"walkable"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	CellSize      float32 `json:"cell_size"`
	WalkableCells int     `json:"walkable_cells"`
	Regions       int     `json:"regions"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

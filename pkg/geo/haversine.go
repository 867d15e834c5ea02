package geo

import "math"

const earthRadiusMeters = 6_371_000.0

// degToMeters converts degree-scaled equirectangular distances to meters.
const degToMeters = math.Pi / 180 * earthRadiusMeters

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Projection maps geographic coordinates onto a local planar frame in meters,
// centred on a reference point: X grows east, Z grows north.
// It is an equirectangular projection, accurate to well under 0.1% across a
// few kilometres, which is the scale of a navigation grid.
type Projection struct {
	RefLat, RefLon float64
	cosLat         float64
}

// NewProjection creates a projection centred on (refLat, refLon).
func NewProjection(refLat, refLon float64) Projection {
	return Projection{RefLat: refLat, RefLon: refLon, cosLat: math.Cos(refLat * math.Pi / 180)}
}

// ToLocal returns the planar offset of (lat, lon) from the reference point.
func (p Projection) ToLocal(lat, lon float64) (x, z float64) {
	x = (lon - p.RefLon) * p.cosLat * degToMeters
	z = (lat - p.RefLat) * degToMeters
	return x, z
}

// ToGeo is the inverse of ToLocal.
func (p Projection) ToGeo(x, z float64) (lat, lon float64) {
	lat = p.RefLat + z/degToMeters
	lon = p.RefLon + x/(p.cosLat*degToMeters)
	return lat, lon
}

package domain

import (
	"math"

	"github.com/golang/geo/s2"
)

// Delta returns the great-circle angle in degrees between two points given as
// latitude/longitude in degrees. The result is in [0, 180] and is stable for
// coincident and antipodal points.
func Delta(lat1, lon1, lat2, lon2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lon1)
	b := s2.LatLngFromDegrees(lat2, lon2)
	return a.Distance(b).Degrees()
}

// originDelta is the distance from an origin to a station. Arrivals and
// candidates both go through here so equal inputs give bit-identical results.
func originDelta(o Origin, s Station) float64 {
	return Delta(o.Latitude, o.Longitude, s.Latitude, s.Longitude)
}

func validCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}

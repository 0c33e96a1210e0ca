// Package geospatial holds the spherical helpers behind nearest-place search.
// Points are orb points, so (longitude, latitude).
package geospatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Distance returns the great-circle distance in meters between a and b.
func Distance(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b)
}

// Around returns the smallest box holding every point within radius meters
// of p.
func Around(p orb.Point, radius float64) orb.Bound {
	return geo.NewBoundAroundPoint(p, radius)
}

// Closest returns the index of the candidate nearest to p and its distance.
// Ties keep the lowest index. It returns -1 for no candidates.
func Closest(p orb.Point, candidates []orb.Point) (int, float64) {
	best, bestDist := -1, 0.0
	for i, c := range candidates {
		d := Distance(p, c)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// PlaceSource records where a Place came from.
type PlaceSource string

const (
	SourceLocal PlaceSource = "local" // bundled gazetteer
	SourceAPI   PlaceSource = "api"   // remote geocoding service
)

// Place is a named, resolved location.
type Place struct {
	Name       string      `json:"name"`
	Region     string      `json:"region,omitempty"`
	Country    string      `json:"country,omitempty"`
	Coordinate Coordinate  `json:"coordinate"`
	Source     PlaceSource `json:"source"`
}

// GeocodeCandidate is a raw remote geocoding hit, already transposed to lat/lng.
type GeocodeCandidate struct {
	Name       string
	Region     string
	Country    string
	Coordinate Coordinate
}

// LocationResult is the outcome of resolving a device position.
type LocationResult struct {
	Place    Place  `json:"place"`
	Fallback bool   `json:"fallback"`
	Notice   string `json:"notice,omitempty"`
	Nearest  *Place `json:"nearest,omitempty"` // closest gazetteer landmark
}

// RouteSummary is one candidate path between two points.
type RouteSummary struct {
	Rank     int            `json:"rank"`        // provider index, 0 = primary
	Path     orb.LineString `json:"coordinates"` // (lng, lat) pairs
	Distance float64        `json:"distance"`    // meters
	Duration float64        `json:"duration"`    // seconds
}

// RouteSet is every route returned by one directions fetch, in provider order.
type RouteSet struct {
	ID           string         `json:"id"`
	Origin       Coordinate     `json:"origin"`
	Destination  Coordinate     `json:"destination"`
	Alternatives bool           `json:"alternatives"`
	Routes       []RouteSummary `json:"routes"`
	ComputedAt   time.Time      `json:"computed_at"`
}

// Primary returns the provider's default route.
func (rs RouteSet) Primary() (RouteSummary, bool) {
	if len(rs.Routes) == 0 {
		return RouteSummary{}, false
	}
	return rs.Routes[0], true
}

// RouteComputedEvent is published after a successful directions fetch.
type RouteComputedEvent struct {
	ID           string     `json:"id"`
	Origin       Coordinate `json:"origin"`
	Destination  Coordinate `json:"destination"`
	Alternatives bool       `json:"alternatives"`
	RouteCount   int        `json:"route_count"`
	Distance     float64    `json:"distance"`
	Duration     float64    `json:"duration"`
	ComputedAt   time.Time  `json:"computed_at"`
}

// LocationFallbackEvent is published when a device position outside the
// service area is replaced by the area center.
type LocationFallbackEvent struct {
	Reported Coordinate `json:"reported"`
	Used     Coordinate `json:"used"`
	At       time.Time  `json:"at"`
}

// Suggestions is one update of a live place-search session.
type Suggestions struct {
	Seq       uint64  `json:"seq"`
	Query     string  `json:"query"`
	Places    []Place `json:"places"`
	Searching bool    `json:"searching"`
}

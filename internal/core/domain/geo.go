package domain

import (
	"math"

	"github.com/paulmach/orb"
)

// Coordinate is a geographic position (WGS 84) in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether c is a finite coordinate within the WGS 84 ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Point returns c as an orb point (lng, lat).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// CoordinateFromPoint converts an orb point (lng, lat) into a Coordinate.
func CoordinateFromPoint(p orb.Point) Coordinate {
	return Coordinate{Lat: p.Lat(), Lng: p.Lon()}
}

// ServiceArea is the fixed bounding box the service operates in.
type ServiceArea struct {
	Name        string     `json:"name"`
	Region      string     `json:"region"`
	Country     string     `json:"country"`
	CountryCode string     `json:"country_code"`
	North       float64    `json:"north"`
	South       float64    `json:"south"`
	East        float64    `json:"east"`
	West        float64    `json:"west"`
	Center      Coordinate `json:"center"`
	DefaultZoom int        `json:"default_zoom"`
}

// Contains reports whether c lies inside the area. Edges are inclusive.
func (a ServiceArea) Contains(c Coordinate) bool {
	return c.Lat >= a.South && c.Lat <= a.North &&
		c.Lng >= a.West && c.Lng <= a.East
}

// Bound returns the area as an orb bound.
func (a ServiceArea) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{a.West, a.South},
		Max: orb.Point{a.East, a.North},
	}
}

// Corners returns the four corners in NW, NE, SE, SW order.
func (a ServiceArea) Corners() [4]Coordinate {
	return [4]Coordinate{
		{Lat: a.North, Lng: a.West},
		{Lat: a.North, Lng: a.East},
		{Lat: a.South, Lng: a.East},
		{Lat: a.South, Lng: a.West},
	}
}

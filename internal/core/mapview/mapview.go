// Package mapview prepares what an interactive map client needs to draw a
// trip: the viewport, the city boundary, markers and styled route lines.
package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/akureroute/internal/core/domain"
)

// Framing defaults.
const (
	FitMaxZoom   = 15
	FitPadding   = 50
	PointZoom    = 14
	RouteWeight  = 5
	RouteOpacity = 0.7
)

// Palette colours routes by rank, wrapping after the last entry.
var Palette = []string{"#3388ff", "#ff3333", "#33cc33", "#9933ff", "#ff9900"}

// View is a viewport. When Bounds is set the client fits it, bounded by
// MaxZoom and Padding pixels; otherwise it centers on Center at Zoom.
type View struct {
	Center  domain.Coordinate   `json:"center"`
	Zoom    int                 `json:"zoom"`
	Bounds  []domain.Coordinate `json:"bounds,omitempty"` // [south-west, north-east]
	MaxZoom int                 `json:"max_zoom,omitempty"`
	Padding int                 `json:"padding,omitempty"`
}

// Frame picks the viewport for the current selection. Routes win over
// endpoints; a route bound that misses the service area entirely falls back
// to the area itself.
func Frame(area domain.ServiceArea, start, end *domain.Coordinate, routes []domain.RouteSummary) View {
	if b, ok := routesBound(routes); ok {
		if !b.Intersects(area.Bound()) {
			b = area.Bound()
		}
		return fit(area, b)
	}

	switch {
	case start != nil && end != nil:
		b := orb.Bound{Min: start.Point(), Max: start.Point()}.Extend(end.Point())
		return fit(area, b)
	case start != nil:
		return View{Center: *start, Zoom: PointZoom}
	case end != nil:
		return View{Center: *end, Zoom: PointZoom}
	}

	return View{Center: area.Center, Zoom: area.DefaultZoom}
}

func fit(area domain.ServiceArea, b orb.Bound) View {
	return View{
		Center: domain.CoordinateFromPoint(b.Center()),
		Zoom:   area.DefaultZoom,
		Bounds: []domain.Coordinate{
			domain.CoordinateFromPoint(b.Min),
			domain.CoordinateFromPoint(b.Max),
		},
		MaxZoom: FitMaxZoom,
		Padding: FitPadding,
	}
}

func routesBound(routes []domain.RouteSummary) (orb.Bound, bool) {
	var b orb.Bound
	found := false
	for _, r := range routes {
		if len(r.Path) == 0 {
			continue
		}
		if !found {
			b = r.Path.Bound()
			found = true
			continue
		}
		b = b.Union(r.Path.Bound())
	}
	return b, found
}

// Boundary is the service area as a closed polygon ring, NW → NE → SE → SW → NW.
func Boundary(area domain.ServiceArea) orb.Polygon {
	c := area.Corners()
	ring := orb.Ring{c[0].Point(), c[1].Point(), c[2].Point(), c[3].Point(), c[0].Point()}
	return orb.Polygon{ring}
}

// RouteColor returns the palette colour for a route rank.
func RouteColor(rank int) string {
	if rank < 0 {
		rank = -rank
	}
	return Palette[rank%len(Palette)]
}

// FeatureCollection renders the boundary, the selected endpoints and every
// route as GeoJSON. Routes keep set order, so the primary is drawn first.
func FeatureCollection(area domain.ServiceArea, start, end *domain.Place, routes []domain.RouteSummary) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	boundary := geojson.NewFeature(Boundary(area))
	boundary.Properties["kind"] = "boundary"
	boundary.Properties["name"] = area.Name
	fc.Append(boundary)

	for _, m := range []struct {
		role  string
		place *domain.Place
	}{{"start", start}, {"end", end}} {
		if m.place == nil {
			continue
		}
		f := geojson.NewFeature(m.place.Coordinate.Point())
		f.Properties["kind"] = "marker"
		f.Properties["role"] = m.role
		f.Properties["name"] = m.place.Name
		fc.Append(f)
	}

	for i, r := range routes {
		if len(r.Path) == 0 {
			continue
		}
		f := geojson.NewFeature(r.Path)
		f.Properties["kind"] = "route"
		f.Properties["rank"] = r.Rank
		f.Properties["primary"] = i == 0
		f.Properties["color"] = RouteColor(r.Rank)
		f.Properties["weight"] = RouteWeight
		f.Properties["opacity"] = RouteOpacity
		f.Properties["distance"] = r.Distance
		f.Properties["duration"] = r.Duration
		f.Properties["distance_text"] = FormatDistance(r.Distance)
		f.Properties["duration_text"] = FormatDuration(r.Duration)
		fc.Append(f)
	}

	return fc
}

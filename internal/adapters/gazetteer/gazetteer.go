// Package gazetteer holds the bundled list of well-known Akure places and a
// spatial index over it.
package gazetteer

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
	"gopkg.in/yaml.v3"

	"github.com/samirrijal/akureroute/internal/core/domain"
	"github.com/samirrijal/akureroute/internal/core/ports"
	"github.com/samirrijal/akureroute/internal/pkg/geospatial"
)

//go:embed places.yaml
var bundled []byte

// initialSearchRadius is the first box tried by Nearest, in meters.
const initialSearchRadius = 1000.0

type fileFormat struct {
	Region  string      `yaml:"region"`
	Country string      `yaml:"country"`
	Places  []placeYAML `yaml:"places"`
}

type placeYAML struct {
	Name    string  `yaml:"name"`
	Region  string  `yaml:"region"`
	Country string  `yaml:"country"`
	Lat     float64 `yaml:"lat"`
	Lng     float64 `yaml:"lng"`
}

// Gazetteer implements ports.Gazetteer. It is immutable after construction
// and safe for concurrent use.
type Gazetteer struct {
	places []domain.Place
	index  rtree.RTreeG[int]
}

// Bundled returns the gazetteer compiled into the binary.
func Bundled() (*Gazetteer, error) {
	return Parse(bundled)
}

// BundledPlaces returns the compiled-in places, e.g. for seeding a database.
func BundledPlaces() ([]domain.Place, error) {
	g, err := Bundled()
	if err != nil {
		return nil, err
	}
	return g.All(), nil
}

// Load builds the gazetteer from repo when it holds places, and from the
// bundled table otherwise. A nil repo means no database is configured.
func Load(ctx context.Context, repo ports.PlaceRepository) (*Gazetteer, error) {
	if repo == nil {
		return Bundled()
	}
	places, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	if len(places) == 0 {
		slog.WarnContext(ctx, "places table is empty, using bundled gazetteer")
		return Bundled()
	}
	return New(places)
}

// Parse reads a gazetteer YAML document.
func Parse(data []byte) (*Gazetteer, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse gazetteer: %w", err)
	}

	places := make([]domain.Place, 0, len(f.Places))
	for _, p := range f.Places {
		region, country := p.Region, p.Country
		if region == "" {
			region = f.Region
		}
		if country == "" {
			country = f.Country
		}
		places = append(places, domain.Place{
			Name:       p.Name,
			Region:     region,
			Country:    country,
			Coordinate: domain.Coordinate{Lat: p.Lat, Lng: p.Lng},
			Source:     domain.SourceLocal,
		})
	}
	return New(places)
}

// New indexes places. Order is preserved; every entry is re-tagged as local.
func New(places []domain.Place) (*Gazetteer, error) {
	g := &Gazetteer{places: make([]domain.Place, 0, len(places))}
	for i, p := range places {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("gazetteer entry %d: empty name", i)
		}
		if !p.Coordinate.Valid() {
			return nil, fmt.Errorf("gazetteer entry %q: invalid coordinate %v", p.Name, p.Coordinate)
		}
		p.Source = domain.SourceLocal
		g.places = append(g.places, p)

		pt := [2]float64{p.Coordinate.Lng, p.Coordinate.Lat}
		g.index.Insert(pt, pt, len(g.places)-1)
	}
	return g, nil
}

// All returns a copy of every place in gazetteer order.
func (g *Gazetteer) All() []domain.Place {
	out := make([]domain.Place, len(g.places))
	copy(out, g.places)
	return out
}

// Len returns the number of places.
func (g *Gazetteer) Len() int {
	return len(g.places)
}

// Nearest returns the place closest to c and its great-circle distance in
// meters. Ties go to the earlier entry.
func (g *Gazetteer) Nearest(c domain.Coordinate) (domain.Place, float64, bool) {
	if len(g.places) == 0 || !c.Valid() {
		return domain.Place{}, 0, false
	}

	// Grow the box until it catches something, then search once more with
	// the best distance as radius so nothing outside the box can be closer.
	for radius := initialSearchRadius; radius <= 64*initialSearchRadius; radius *= 2 {
		idx, dist := g.searchWithin(c, radius)
		if idx < 0 {
			continue
		}
		if dist > radius {
			idx, dist = g.searchWithin(c, dist)
		}
		return g.places[idx], dist, true
	}

	idx, dist := g.scan(c)
	return g.places[idx], dist, true
}

func (g *Gazetteer) searchWithin(c domain.Coordinate, radius float64) (int, float64) {
	at := c.Point()
	box := geospatial.Around(at, radius)

	best, bestDist := -1, math.Inf(1)
	g.index.Search([2]float64(box.Min), [2]float64(box.Max),
		func(_, _ [2]float64, i int) bool {
			d := geospatial.Distance(at, g.places[i].Coordinate.Point())
			if d < bestDist || (d == bestDist && i < best) {
				best, bestDist = i, d
			}
			return true
		})
	return best, bestDist
}

func (g *Gazetteer) scan(c domain.Coordinate) (int, float64) {
	points := make([]orb.Point, len(g.places))
	for i, p := range g.places {
		points[i] = p.Coordinate.Point()
	}
	return geospatial.Closest(c.Point(), points)
}

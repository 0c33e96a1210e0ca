package ports

import (
	"context"

	"github.com/samirrijal/akureroute/internal/core/domain"
)

// Gazetteer is the bundled, read-only list of well-known places.
type Gazetteer interface {
	// All returns every place in gazetteer order. Callers may not mutate it.
	All() []domain.Place
	// Nearest returns the closest place to c and its distance in meters.
	Nearest(c domain.Coordinate) (domain.Place, float64, bool)
}

// PlaceRepository persists gazetteer places.
type PlaceRepository interface {
	UpsertBatch(ctx context.Context, places []domain.Place) error
	List(ctx context.Context) ([]domain.Place, error)
}

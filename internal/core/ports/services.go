package ports

import (
	"context"

	"github.com/samirrijal/akureroute/internal/core/domain"
)

// Geocoder resolves free text to candidate places via a remote service.
type Geocoder interface {
	Search(ctx context.Context, query string, size int) ([]domain.GeocodeCandidate, error)
}

// DirectionsRequest asks for driving routes between two points.
type DirectionsRequest struct {
	Origin       domain.Coordinate
	Destination  domain.Coordinate
	Alternatives int     // extra routes requested, 0 for primary only
	WeightFactor float64 // how much longer an alternative may be
}

// RawRoute is one route entry as the provider returned it. Nil fields were
// absent from the payload.
type RawRoute struct {
	Geometry *string
	Summary  *RawSummary
}

// RawSummary carries the provider's route totals.
type RawSummary struct {
	Distance *float64
	Duration *float64
}

// DirectionsProvider fetches raw driving routes.
type DirectionsProvider interface {
	Directions(ctx context.Context, req DirectionsRequest) ([]RawRoute, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishRouteComputed(ctx context.Context, event *domain.RouteComputedEvent) error
	PublishLocationFallback(ctx context.Context, event *domain.LocationFallbackEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeRouteComputed(ctx context.Context, handler func(ctx context.Context, event *domain.RouteComputedEvent) error) error
	SubscribeLocationFallback(ctx context.Context, handler func(ctx context.Context, event *domain.LocationFallbackEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

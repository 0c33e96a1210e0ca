package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/akureroute/internal/adapters/gazetteer"
	"github.com/samirrijal/akureroute/internal/core/domain"
	"github.com/samirrijal/akureroute/internal/core/ports"
)

var akure = domain.ServiceArea{
	Name:        "Akure",
	Region:      "Ondo State",
	Country:     "Nigeria",
	CountryCode: "NG",
	North:       7.32,
	South:       7.2,
	East:        5.32,
	West:        5.12,
	Center:      domain.Coordinate{Lat: 7.250771, Lng: 5.2103},
	DefaultZoom: 13,
}

func place(name string, lat, lng float64) domain.Place {
	return domain.Place{
		Name:       name,
		Region:     "Akure",
		Country:    "Nigeria",
		Coordinate: domain.Coordinate{Lat: lat, Lng: lng},
		Source:     domain.SourceLocal,
	}
}

func mustGazetteer(places ...domain.Place) *gazetteer.Gazetteer {
	g, err := gazetteer.New(places)
	if err != nil {
		panic(err)
	}
	return g
}

// --- Mock Geocoder ---

type mockGeocoder struct {
	searchFn func(ctx context.Context, text string, size int) ([]domain.GeocodeCandidate, error)

	mu    sync.Mutex
	calls []string
}

func (m *mockGeocoder) Search(ctx context.Context, text string, size int) ([]domain.GeocodeCandidate, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, text, size)
	}
	return nil, nil
}

func (m *mockGeocoder) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// --- Mock DirectionsProvider ---

type mockDirections struct {
	directionsFn func(ctx context.Context, req ports.DirectionsRequest) ([]ports.RawRoute, error)
	calls        int
}

func (m *mockDirections) Directions(ctx context.Context, req ports.DirectionsRequest) ([]ports.RawRoute, error) {
	m.calls++
	if m.directionsFn != nil {
		return m.directionsFn(ctx, req)
	}
	return nil, nil
}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	routeFn    func(ctx context.Context, event *domain.RouteComputedEvent) error
	fallbackFn func(ctx context.Context, event *domain.LocationFallbackEvent) error

	routes    []domain.RouteComputedEvent
	fallbacks []domain.LocationFallbackEvent
}

func (m *mockPublisher) PublishRouteComputed(ctx context.Context, event *domain.RouteComputedEvent) error {
	m.routes = append(m.routes, *event)
	if m.routeFn != nil {
		return m.routeFn(ctx, event)
	}
	return nil
}

func (m *mockPublisher) PublishLocationFallback(ctx context.Context, event *domain.LocationFallbackEvent) error {
	m.fallbacks = append(m.fallbacks, *event)
	if m.fallbackFn != nil {
		return m.fallbackFn(ctx, event)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/akureroute/internal/core/domain"
	"github.com/samirrijal/akureroute/internal/core/ports"
	"github.com/samirrijal/akureroute/internal/pkg/metrics"
	"github.com/samirrijal/akureroute/internal/pkg/polyline"
	"github.com/samirrijal/akureroute/internal/pkg/telemetry"
)

// RouteOptions tunes directions requests.
type RouteOptions struct {
	Alternatives int     // target alternative count when alternatives are wanted
	WeightFactor float64 // max cost ratio of an alternative to the primary
	Precision    int     // polyline precision of returned geometries
	CacheTTL     int     // seconds
}

// DefaultRouteOptions mirrors the configuration defaults.
func DefaultRouteOptions() RouteOptions {
	return RouteOptions{
		Alternatives: 3,
		WeightFactor: 1.6,
		Precision:    polyline.DefaultPrecision,
		CacheTTL:     300,
	}
}

// RouteService fetches driving routes between two points in the service area.
type RouteService struct {
	area       domain.ServiceArea
	directions ports.DirectionsProvider
	cache      ports.CacheService
	publisher  ports.EventPublisher
	opts       RouteOptions
}

// NewRouteService creates a new RouteService. cache and publisher may be nil.
func NewRouteService(
	area domain.ServiceArea,
	directions ports.DirectionsProvider,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	opts RouteOptions,
) *RouteService {
	return &RouteService{
		area:       area,
		directions: directions,
		cache:      cache,
		publisher:  publisher,
		opts:       opts,
	}
}

// FetchRoutes returns the provider's routes from origin to destination in
// provider order. Both points must lie inside the service area; nothing is
// sent upstream otherwise.
func (s *RouteService) FetchRoutes(ctx context.Context, origin, destination domain.Coordinate, alternatives bool) (set domain.RouteSet, err error) {
	if err := s.checkEndpoint("origin", origin); err != nil {
		return domain.RouteSet{}, err
	}
	if err := s.checkEndpoint("destination", destination); err != nil {
		return domain.RouteSet{}, err
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanFetchRoutes)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.Bool("alternatives", alternatives))

	cacheKey := fmt.Sprintf("routes:%.5f,%.5f:%.5f,%.5f:%t",
		origin.Lat, origin.Lng, destination.Lat, destination.Lng, alternatives)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached domain.RouteSet
			if err := json.Unmarshal(data, &cached); err == nil && len(cached.Routes) > 0 {
				metrics.CacheHits.WithLabelValues("directions").Inc()
				return cached, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("directions").Inc()
	}

	req := ports.DirectionsRequest{Origin: origin, Destination: destination}
	if alternatives {
		req.Alternatives = s.opts.Alternatives
		req.WeightFactor = s.opts.WeightFactor
	}

	raw, err := s.directions.Directions(ctx, req)
	if err != nil {
		return domain.RouteSet{}, fmt.Errorf("fetch directions: %w", err)
	}

	routes, err := s.decode(ctx, raw)
	if err != nil {
		return domain.RouteSet{}, err
	}

	set = domain.RouteSet{
		ID:           uuid.NewString(),
		Origin:       origin,
		Destination:  destination,
		Alternatives: alternatives,
		Routes:       routes,
		ComputedAt:   time.Now().UTC(),
	}
	span.SetAttributes(attribute.Int("routes", len(routes)))
	metrics.RoutesComputed.WithLabelValues(strconv.FormatBool(alternatives)).Inc()

	if s.cache != nil {
		if data, err := json.Marshal(set); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.opts.CacheTTL)
		}
	}
	s.publishComputed(ctx, set)

	return set, nil
}

func (s *RouteService) checkEndpoint(name string, c domain.Coordinate) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s %v is not a valid coordinate", domain.ErrValidation, name, c)
	}
	if !s.area.Contains(c) {
		return fmt.Errorf("%w: %s %v is outside %s", domain.ErrValidation, name, c, s.area.Name)
	}
	return nil
}

// decode validates the raw payload and turns each geometry into a path.
// Entries whose geometry does not decode, decodes to nothing, or holds an
// impossible coordinate are dropped; the remaining ones keep their provider index as rank.
func (s *RouteService) decode(ctx context.Context, raw []ports.RawRoute) ([]domain.RouteSummary, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: malformed response: no routes", domain.ErrUpstream)
	}
	for i, r := range raw {
		if r.Geometry == nil {
			return nil, fmt.Errorf("%w: malformed response: route %d has no geometry", domain.ErrUpstream, i)
		}
		if r.Summary == nil {
			return nil, fmt.Errorf("%w: malformed response: route %d has no summary", domain.ErrUpstream, i)
		}
	}

	routes := make([]domain.RouteSummary, 0, len(raw))
	var lastErr error
	for i, r := range raw {
		path, err := polyline.Decode(*r.Geometry, s.opts.Precision)
		if err == nil && len(path) == 0 {
			err = errors.New("empty geometry")
		}
		if err == nil {
			err = checkPath(path)
		}
		if err != nil {
			lastErr = err
			metrics.RouteDecodeFailures.Inc()
			slog.WarnContext(ctx, "dropping undecodable route", "rank", i, "error", err)
			continue
		}

		routes = append(routes, domain.RouteSummary{
			Rank:     i,
			Path:     path,
			Distance: nonNegative(r.Summary.Distance),
			Duration: nonNegative(r.Summary.Duration),
		})
	}

	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: none of %d route geometries could be decoded: %v", domain.ErrDecode, len(raw), lastErr)
	}
	return routes, nil
}

// checkPath rejects paths with points no coordinate can have.
func checkPath(path orb.LineString) error {
	for i, p := range path {
		if c := domain.CoordinateFromPoint(p); !c.Valid() {
			return fmt.Errorf("point %d %v is not a valid coordinate", i, c)
		}
	}
	return nil
}

// nonNegative treats an absent or nonsensical total as zero.
func nonNegative(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || *v < 0 {
		return 0
	}
	return *v
}

func (s *RouteService) publishComputed(ctx context.Context, set domain.RouteSet) {
	if s.publisher == nil {
		return
	}
	primary, _ := set.Primary()
	event := &domain.RouteComputedEvent{
		ID:           set.ID,
		Origin:       set.Origin,
		Destination:  set.Destination,
		Alternatives: set.Alternatives,
		RouteCount:   len(set.Routes),
		Distance:     primary.Distance,
		Duration:     primary.Duration,
		ComputedAt:   set.ComputedAt,
	}
	if err := s.publisher.PublishRouteComputed(ctx, event); err != nil {
		slog.WarnContext(ctx, "publish route computed failed", "route_set", set.ID, "error", err)
	}
}

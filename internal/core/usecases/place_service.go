package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/akureroute/internal/core/domain"
	"github.com/samirrijal/akureroute/internal/core/ports"
	"github.com/samirrijal/akureroute/internal/pkg/metrics"
	"github.com/samirrijal/akureroute/internal/pkg/telemetry"
)

// Names used for synthesized places.
const (
	CurrentLocationName = "My Current Location"
	cityCenterSuffix    = " City Center"
)

// PlaceOptions tunes the resolver.
type PlaceOptions struct {
	LocalLimit     int  // N: local matches per query
	MaxResults     int  // M: merged list cap, M >= N
	MinRemoteChars int  // shorter queries never hit the geocoder
	RemoteSize     int  // candidates requested per geocode
	PopularLimit   int  // default size of the popular panel
	CacheTTL       int  // seconds
	RejectOutside  bool // current location outside the area is an error instead of a fallback
}

// DefaultPlaceOptions mirrors the configuration defaults.
func DefaultPlaceOptions() PlaceOptions {
	return PlaceOptions{
		LocalLimit:     5,
		MaxResults:     10,
		MinRemoteChars: 3,
		RemoteSize:     5,
		PopularLimit:   8,
		CacheTTL:       600,
	}
}

// PlaceService turns free text and device positions into Places.
type PlaceService struct {
	area      domain.ServiceArea
	gazetteer ports.Gazetteer
	geocoder  ports.Geocoder
	cache     ports.CacheService
	publisher ports.EventPublisher
	opts      PlaceOptions
}

// NewPlaceService creates a new PlaceService. cache and publisher may be nil.
func NewPlaceService(
	area domain.ServiceArea,
	gazetteer ports.Gazetteer,
	geocoder ports.Geocoder,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	opts PlaceOptions,
) *PlaceService {
	return &PlaceService{
		area:      area,
		gazetteer: gazetteer,
		geocoder:  geocoder,
		cache:     cache,
		publisher: publisher,
		opts:      opts,
	}
}

// Area returns the service area the resolver is bound to.
func (s *PlaceService) Area() domain.ServiceArea {
	return s.area
}

// Local returns gazetteer entries whose name or region contains query,
// case-insensitively, in gazetteer order. An empty query matches the first
// LocalLimit entries.
func (s *PlaceService) Local(query string) []domain.Place {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Place, 0, s.opts.LocalLimit)

	for _, p := range s.gazetteer.All() {
		if len(out) == s.opts.LocalLimit {
			break
		}
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Region), q) {
			out = append(out, p)
		}
	}
	return out
}

// WantsRemote reports whether query is long enough to be sent to the geocoder.
func (s *PlaceService) WantsRemote(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= s.opts.MinRemoteChars
}

// Remote geocodes query and keeps candidates inside the service area.
// Failures are logged and counted; the caller just sees no results.
func (s *PlaceService) Remote(ctx context.Context, query string) []domain.Place {
	if !s.WantsRemote(query) {
		return nil
	}
	return s.remote(ctx, strings.TrimSpace(query))
}

func (s *PlaceService) remote(ctx context.Context, query string) []domain.Place {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanRemoteSearch)
	defer span.End()

	cacheKey := "geocode:" + strings.ToLower(query)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var places []domain.Place
			if err := json.Unmarshal(data, &places); err == nil {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return places
			}
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	text := fmt.Sprintf("%s, %s, %s", query, s.area.Name, s.area.Country)
	cands, err := s.geocoder.Search(ctx, text, s.opts.RemoteSize)
	if err != nil {
		if ctx.Err() != nil {
			slog.DebugContext(ctx, "remote search abandoned", "query", query, "error", err)
			return nil
		}
		metrics.RemoteSearchFailures.Inc()
		span.RecordError(err)
		slog.WarnContext(ctx, "remote search failed, using local results only", "query", query, "error", err)
		return nil
	}

	places := make([]domain.Place, 0, len(cands))
	for _, c := range cands {
		if strings.TrimSpace(c.Name) == "" || !c.Coordinate.Valid() || !s.area.Contains(c.Coordinate) {
			continue
		}
		region, country := c.Region, c.Country
		if region == "" {
			region = s.area.Name
		}
		if country == "" {
			country = s.area.Country
		}
		places = append(places, domain.Place{
			Name:       c.Name,
			Region:     region,
			Country:    country,
			Coordinate: c.Coordinate,
			Source:     domain.SourceAPI,
		})
	}
	span.SetAttributes(attribute.Int("candidates", len(cands)), attribute.Int("kept", len(places)))

	if s.cache != nil {
		if data, err := json.Marshal(places); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.opts.CacheTTL)
		}
	}

	return places
}

// Merge combines local and remote matches for display.
func (s *PlaceService) Merge(local, remote []domain.Place) []domain.Place {
	return MergePlaces(local, remote, s.opts.MaxResults)
}

// MergePlaces keeps every local entry, then appends remote entries whose
// name does not case-insensitively repeat a local one, capped at limit.
func MergePlaces(local, remote []domain.Place, limit int) []domain.Place {
	seen := make(map[string]struct{}, len(local))
	out := make([]domain.Place, 0, len(local)+len(remote))

	for _, p := range local {
		seen[strings.ToLower(p.Name)] = struct{}{}
		out = append(out, p)
	}
	for _, p := range remote {
		if _, dup := seen[strings.ToLower(p.Name)]; dup {
			continue
		}
		out = append(out, p)
	}

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Resolve returns the merged suggestion list for query.
func (s *PlaceService) Resolve(ctx context.Context, query string) []domain.Place {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanResolvePlaces)
	defer span.End()

	return s.Merge(s.Local(query), s.Remote(ctx, query))
}

// Lookup picks a single place for a submitted query: an exact name match
// among the suggestions, else the first remote candidate.
func (s *PlaceService) Lookup(ctx context.Context, query string) (domain.Place, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return domain.Place{}, fmt.Errorf("%w: search query must not be empty", domain.ErrValidation)
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanLookupPlace)
	defer span.End()

	// One geocode per submit, also for queries below MinRemoteChars.
	remote := s.remote(ctx, q)
	for _, p := range s.Merge(s.Local(q), remote) {
		if strings.EqualFold(p.Name, q) {
			return p, nil
		}
	}
	if len(remote) > 0 {
		return remote[0], nil
	}

	return domain.Place{}, fmt.Errorf("%w: could not find %q, please try a different search term", domain.ErrNoResults, q)
}

// Locate resolves a device position. Positions outside the area fall back
// to the area center, or are rejected when RejectOutside is set.
func (s *PlaceService) Locate(ctx context.Context, c domain.Coordinate) (domain.LocationResult, error) {
	if !c.Valid() {
		return domain.LocationResult{}, fmt.Errorf("%w: invalid coordinate %v", domain.ErrValidation, c)
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanLocate)
	defer span.End()

	var res domain.LocationResult
	if s.area.Contains(c) {
		res.Place = domain.Place{
			Name:       CurrentLocationName,
			Region:     s.area.Name,
			Country:    s.area.Country,
			Coordinate: c,
			Source:     domain.SourceLocal,
		}
	} else {
		metrics.LocationFallbacks.Inc()
		span.SetAttributes(attribute.Bool("outside", true))

		if s.opts.RejectOutside {
			return domain.LocationResult{}, fmt.Errorf("%w: location %v is outside %s", domain.ErrValidation, c, s.area.Name)
		}

		res.Place = domain.Place{
			Name:       s.area.Name + cityCenterSuffix,
			Region:     s.area.Name,
			Country:    s.area.Country,
			Coordinate: s.area.Center,
			Source:     domain.SourceLocal,
		}
		res.Fallback = true
		res.Notice = fmt.Sprintf("Your location is outside %s. Using %s city center instead.", s.area.Name, s.area.Name)
		s.publishFallback(ctx, c)
	}

	if p, _, ok := s.gazetteer.Nearest(res.Place.Coordinate); ok {
		res.Nearest = &p
	}
	return res, nil
}

func (s *PlaceService) publishFallback(ctx context.Context, reported domain.Coordinate) {
	if s.publisher == nil {
		return
	}
	event := &domain.LocationFallbackEvent{
		Reported: reported,
		Used:     s.area.Center,
		At:       time.Now().UTC(),
	}
	if err := s.publisher.PublishLocationFallback(ctx, event); err != nil {
		slog.WarnContext(ctx, "publish location fallback failed", "error", err)
	}
}

// Popular returns the first limit gazetteer entries, PopularLimit when
// limit is not positive.
func (s *PlaceService) Popular(limit int) []domain.Place {
	if limit <= 0 {
		limit = s.opts.PopularLimit
	}
	all := s.gazetteer.All()
	if limit < len(all) {
		all = all[:limit]
	}
	return all
}

// Catalog pages through the gazetteer in table order and reports its size.
func (s *PlaceService) Catalog(offset, limit int) ([]domain.Place, int) {
	all := s.gazetteer.All()
	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Place{}, total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total
}

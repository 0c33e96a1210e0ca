package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/akureroute/internal/core/domain"
	"github.com/samirrijal/akureroute/internal/pkg/metrics"
)

// AuditStats summarizes the events seen since the auditor started.
type AuditStats struct {
	Routes        int       `json:"routes"`
	WithAlternate int       `json:"with_alternatives"`
	TotalDistance float64   `json:"total_distance"` // meters, primary routes only
	Fallbacks     int       `json:"fallbacks"`
	LastEventAt   time.Time `json:"last_event_at"`
}

// AuditService consumes route and location events, logging each one and
// keeping running totals.
type AuditService struct {
	mu    sync.Mutex
	stats AuditStats
}

// NewAuditService creates a new AuditService.
func NewAuditService() *AuditService {
	return &AuditService{}
}

// HandleRouteComputed records a computed route set. Events without an ID are
// rejected so the broker redelivers and eventually drops them.
func (a *AuditService) HandleRouteComputed(ctx context.Context, e *domain.RouteComputedEvent) error {
	if e == nil || e.ID == "" {
		return fmt.Errorf("%w: route event without id", domain.ErrValidation)
	}
	metrics.EventsConsumed.WithLabelValues("route_computed").Inc()

	a.mu.Lock()
	a.stats.Routes++
	if e.RouteCount > 1 {
		a.stats.WithAlternate++
	}
	a.stats.TotalDistance += e.Distance
	a.stats.LastEventAt = e.ComputedAt
	a.mu.Unlock()

	slog.InfoContext(ctx, "route computed",
		"id", e.ID,
		"origin", e.Origin,
		"destination", e.Destination,
		"routes", e.RouteCount,
		"distance_m", e.Distance,
		"duration_s", e.Duration,
	)
	return nil
}

// HandleLocationFallback records a device position replaced by the area center.
func (a *AuditService) HandleLocationFallback(ctx context.Context, e *domain.LocationFallbackEvent) error {
	if e == nil || !e.Reported.Valid() {
		return fmt.Errorf("%w: fallback event without a valid position", domain.ErrValidation)
	}
	metrics.EventsConsumed.WithLabelValues("location_fallback").Inc()

	a.mu.Lock()
	a.stats.Fallbacks++
	a.stats.LastEventAt = e.At
	a.mu.Unlock()

	slog.InfoContext(ctx, "location fallback", "reported", e.Reported, "used", e.Used)
	return nil
}

// Stats returns a snapshot of the running totals.
func (a *AuditService) Stats() AuditStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

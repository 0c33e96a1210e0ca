package http

import (
	"time"

	natsadapter "github.com/samirrijal/akureroute/internal/adapters/nats"
	"github.com/samirrijal/akureroute/internal/adapters/postgres"
	"github.com/samirrijal/akureroute/internal/adapters/valkey"
	"github.com/samirrijal/akureroute/internal/core/domain"
	"github.com/samirrijal/akureroute/internal/core/usecases"
)

// DefaultRequestTimeout bounds every /v1 handler.
const DefaultRequestTimeout = 15 * time.Second

// Dependencies holds all services needed by HTTP handlers.
// DB, Cache and Events are optional; nil means not configured.
type Dependencies struct {
	Places   *usecases.PlaceService
	Routes   *usecases.RouteService
	Area     domain.ServiceArea
	Debounce time.Duration

	RequestTimeout time.Duration
	Version        string

	DB     *postgres.DB
	Cache  *valkey.Cache
	Events *natsadapter.Publisher
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout > 0 {
		return d.RequestTimeout
	}
	return DefaultRequestTimeout
}

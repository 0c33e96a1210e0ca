package command

import (
	"github.com/samirrijal/akureroute/internal/adapters/gazetteer"
	"github.com/samirrijal/akureroute/internal/adapters/ors"
	"github.com/samirrijal/akureroute/internal/core/usecases"
	"github.com/samirrijal/akureroute/internal/pkg/config"
)

// services wires the use cases the way cmd/api does, minus cache and events.
type services struct {
	cfg    *config.Config
	places *usecases.PlaceService
	routes *usecases.RouteService
}

func newServices(cfg *config.Config) (*services, error) {
	gaz, err := gazetteer.Bundled()
	if err != nil {
		return nil, err
	}
	client := ors.New(ors.Options{
		BaseURL:     cfg.ORS.BaseURL,
		APIKey:      cfg.ORS.APIKey,
		Profile:     cfg.ORS.Profile,
		CountryCode: cfg.ServiceArea.CountryCode,
		Timeout:     cfg.ORS.TimeoutDuration(),
	})
	area := cfg.ServiceArea.Area()

	return &services{
		cfg: cfg,
		places: usecases.NewPlaceService(area, gaz, client, nil, nil, usecases.PlaceOptions{
			LocalLimit:     cfg.Resolver.LocalLimit,
			MaxResults:     cfg.Resolver.MaxResults,
			MinRemoteChars: cfg.Resolver.MinRemoteChars,
			RemoteSize:     cfg.Resolver.RemoteSize,
			PopularLimit:   cfg.Resolver.PopularLimit,
			RejectOutside:  cfg.Location.OutsidePolicy == config.OutsidePolicyReject,
		}),
		routes: usecases.NewRouteService(area, client, nil, nil, usecases.RouteOptions{
			Alternatives: cfg.Routing.Alternatives,
			WeightFactor: cfg.Routing.WeightFactor,
			Precision:    cfg.Routing.Precision,
		}),
	}, nil
}

func (o *options) services() (*services, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	return newServices(cfg)
}

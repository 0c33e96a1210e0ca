package ors

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"github.com/samirrijal/akureroute/internal/core/ports"
)

type directionsRequest struct {
	Coordinates       [][2]float64       `json:"coordinates"` // [lng, lat]
	AlternativeRoutes *alternativeRoutes `json:"alternative_routes,omitempty"`
	Format            string             `json:"format"`
}

type alternativeRoutes struct {
	TargetCount  int     `json:"target_count"`
	WeightFactor float64 `json:"weight_factor"`
}

// Pointer fields keep "absent" apart from zero values; the route service
// decides what an absent field means.
type directionsResponse struct {
	Routes []struct {
		Geometry *string `json:"geometry"`
		Summary  *struct {
			Distance *float64 `json:"distance"`
			Duration *float64 `json:"duration"`
		} `json:"summary"`
	} `json:"routes"`
}

// Directions requests driving routes and returns the raw route entries in
// provider order.
func (c *Client) Directions(ctx context.Context, dr ports.DirectionsRequest) ([]ports.RawRoute, error) {
	payload := directionsRequest{
		Coordinates: [][2]float64{
			{dr.Origin.Lng, dr.Origin.Lat},
			{dr.Destination.Lng, dr.Destination.Lat},
		},
		Format: "json",
	}
	if dr.Alternatives > 0 {
		payload.AlternativeRoutes = &alternativeRoutes{
			TargetCount:  dr.Alternatives,
			WeightFactor: dr.WeightFactor,
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode directions request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(c.baseURL + "/v2/directions/" + c.profile)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json, application/geo+json, application/gpx+xml")
	req.Header.Set("Authorization", c.apiKey)
	req.SetBody(data)

	var body directionsResponse
	if err := c.do(ctx, "directions", req, &body); err != nil {
		return nil, err
	}

	routes := make([]ports.RawRoute, 0, len(body.Routes))
	for _, r := range body.Routes {
		raw := ports.RawRoute{Geometry: r.Geometry}
		if r.Summary != nil {
			raw.Summary = &ports.RawSummary{
				Distance: r.Summary.Distance,
				Duration: r.Summary.Duration,
			}
		}
		routes = append(routes, raw)
	}
	return routes, nil
}

package ors

import (
	"context"
	"strconv"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/akureroute/internal/core/domain"
)

type geocodeResponse struct {
	Features []geocodeFeature `json:"features"`
}

type geocodeFeature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lng, lat]
	} `json:"geometry"`
	Properties struct {
		Name    string `json:"name"`
		Label   string `json:"label"`
		Region  string `json:"region"`
		Country string `json:"country"`
	} `json:"properties"`
}

// Search runs a forward geocode for text and returns up to size candidates
// with coordinates transposed to (lat, lng). Features without a usable
// point are skipped.
func (c *Client) Search(ctx context.Context, text string, size int) ([]domain.GeocodeCandidate, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Set("api_key", c.apiKey)
	args.Set("text", text)
	args.Set("size", strconv.Itoa(size))
	if c.countryCode != "" {
		args.Set("boundary.country", c.countryCode)
	}

	req.SetRequestURI(c.baseURL + "/geocode/search?" + args.String())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json, application/geo+json")

	var body geocodeResponse
	if err := c.do(ctx, "geocode", req, &body); err != nil {
		return nil, err
	}

	cands := make([]domain.GeocodeCandidate, 0, len(body.Features))
	for _, f := range body.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		name := f.Properties.Name
		if name == "" {
			name = f.Properties.Label
		}
		cands = append(cands, domain.GeocodeCandidate{
			Name:    name,
			Region:  f.Properties.Region,
			Country: f.Properties.Country,
			Coordinate: domain.Coordinate{
				Lat: f.Geometry.Coordinates[1],
				Lng: f.Geometry.Coordinates[0],
			},
		})
	}
	return cands, nil
}

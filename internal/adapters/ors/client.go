// Package ors talks to OpenRouteService for geocoding and driving directions.
package ors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"github.com/samirrijal/akureroute/internal/core/domain"
	"github.com/samirrijal/akureroute/internal/pkg/metrics"
)

const maxErrorBody = 200

// Options configures a Client.
type Options struct {
	BaseURL     string
	APIKey      string
	Profile     string // e.g. "driving-car"
	CountryCode string // ISO 3166-1 alpha-2, restricts geocoding
	Timeout     time.Duration
}

// Client implements ports.Geocoder and ports.DirectionsProvider.
type Client struct {
	http        *fasthttp.Client
	baseURL     string
	apiKey      string
	profile     string
	countryCode string
	timeout     time.Duration
}

// New creates an OpenRouteService client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Profile == "" {
		opts.Profile = "driving-car"
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "akureroute",
			MaxConnsPerHost:     64,
			MaxIdleConnDuration: 30 * time.Second,
			ReadTimeout:         opts.Timeout,
			WriteTimeout:        opts.Timeout,
		},
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		profile:     opts.Profile,
		countryCode: opts.CountryCode,
		timeout:     opts.Timeout,
	}
}

// do executes req and decodes a 2xx JSON body into out. Every failure is
// reported as domain.ErrUpstream. op labels the upstream metrics.
func (c *Client) do(ctx context.Context, op string, req *fasthttp.Request, out any) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() { metrics.ObserveUpstream(op, start, err) }()

	deadline := start.Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, status, errorMessage(resp.Body()))
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", domain.ErrUpstream, err)
	}
	return nil
}

// errorMessage extracts a readable message from an ORS error body.
func errorMessage(body []byte) string {
	var e struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && len(e.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(e.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if err := json.Unmarshal(e.Error, &flat); err == nil && flat != "" {
			return flat
		}
	}

	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}

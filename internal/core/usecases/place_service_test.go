package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/samirrijal/akureroute/internal/core/domain"
	"github.com/samirrijal/akureroute/internal/core/usecases"
)

func newPlaceService(geo *mockGeocoder, opts ...func(*usecases.PlaceOptions)) *usecases.PlaceService {
	g := mustGazetteer(
		place("Akure City Mall", 7.2429, 5.1954),
		place("Oja Oba Market", 7.2507, 5.1997),
		place("Alagbaka", 7.2608, 5.2056),
		place("Ijapo Estate", 7.2689, 5.1956),
		place("Oda Road", 7.2372, 5.1923),
		place("Ondo Road", 7.2312, 5.1789),
		place("Ado Road", 7.2712, 5.2134),
	)
	o := usecases.DefaultPlaceOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return usecases.NewPlaceService(akure, g, geo, nil, nil, o)
}

func names(places []domain.Place) []string {
	out := make([]string, len(places))
	for i, p := range places {
		out[i] = p.Name
	}
	return out
}

func TestPlaceService_Local_ExampleMall(t *testing.T) {
	g := mustGazetteer(
		place("Oja Oba Market", 7.2507, 5.1997),
		place("Example Mall", 7.2429, 5.1954),
	)
	svc := usecases.NewPlaceService(akure, g, &mockGeocoder{}, nil, nil, usecases.DefaultPlaceOptions())

	got := svc.Local("exam")
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %v", names(got))
	}
	if got[0].Name != "Example Mall" || got[0].Source != domain.SourceLocal {
		t.Errorf("expected local Example Mall, got %+v", got[0])
	}
}

func TestPlaceService_Local_EmptyQueryReturnsFirstN(t *testing.T) {
	svc := newPlaceService(&mockGeocoder{})

	got := svc.Local("  ")
	want := []string{"Akure City Mall", "Oja Oba Market", "Alagbaka", "Ijapo Estate", "Oda Road"}
	if strings.Join(names(got), "|") != strings.Join(want, "|") {
		t.Errorf("got %v, want %v", names(got), want)
	}
}

func TestPlaceService_Local_MatchesRegionAndCapsAtN(t *testing.T) {
	svc := newPlaceService(&mockGeocoder{}, func(o *usecases.PlaceOptions) { o.LocalLimit = 2 })

	// Every entry's region is Akure.
	got := svc.Local("AKURE")
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %v", names(got))
	}

	got = svc.Local("road")
	want := []string{"Oda Road", "Ondo Road"}
	if strings.Join(names(got), "|") != strings.Join(want, "|") {
		t.Errorf("got %v, want %v", names(got), want)
	}
}

func TestPlaceService_Remote_ShortQuerySkipsGeocoder(t *testing.T) {
	geo := &mockGeocoder{}
	svc := newPlaceService(geo)

	if got := svc.Remote(context.Background(), "ab"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if len(geo.Calls()) != 0 {
		t.Errorf("geocoder should not be called, got %v", geo.Calls())
	}
}

func TestPlaceService_Remote_FiltersAndDefaults(t *testing.T) {
	geo := &mockGeocoder{
		searchFn: func(ctx context.Context, text string, size int) ([]domain.GeocodeCandidate, error) {
			if text != "bank, Akure, Nigeria" {
				t.Errorf("unexpected geocode text %q", text)
			}
			if size != 5 {
				t.Errorf("expected size 5, got %d", size)
			}
			return []domain.GeocodeCandidate{
				{Name: "First Bank Oba Adesida", Coordinate: domain.Coordinate{Lat: 7.25, Lng: 5.19}},
				{Name: "First Bank Lagos", Region: "Lagos", Coordinate: domain.Coordinate{Lat: 6.45, Lng: 3.39}},
				{Name: "", Coordinate: domain.Coordinate{Lat: 7.25, Lng: 5.2}},
				{Name: "Wema Bank", Region: "Ondo", Country: "Nigeria", Coordinate: domain.Coordinate{Lat: 7.26, Lng: 5.21}},
			}, nil
		},
	}
	svc := newPlaceService(geo)

	got := svc.Remote(context.Background(), "bank")
	if len(got) != 2 {
		t.Fatalf("expected 2 in-area results, got %v", names(got))
	}
	if got[0].Region != "Akure" || got[0].Country != "Nigeria" {
		t.Errorf("missing region/country should default to the area, got %+v", got[0])
	}
	if got[1].Region != "Ondo" {
		t.Errorf("provided region should be kept, got %q", got[1].Region)
	}
	for _, p := range got {
		if p.Source != domain.SourceAPI {
			t.Errorf("expected api source, got %s", p.Source)
		}
	}
}

func TestPlaceService_Remote_UsesCache(t *testing.T) {
	geo := &mockGeocoder{
		searchFn: func(ctx context.Context, text string, size int) ([]domain.GeocodeCandidate, error) {
			return []domain.GeocodeCandidate{
				{Name: "Wema Bank", Coordinate: domain.Coordinate{Lat: 7.26, Lng: 5.21}},
			}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewPlaceService(akure, mustGazetteer(), geo, cache, nil, usecases.DefaultPlaceOptions())

	first := svc.Remote(context.Background(), "Bank")
	second := svc.Remote(context.Background(), "bank")

	if len(geo.Calls()) != 1 {
		t.Fatalf("expected one geocoder call, got %d", len(geo.Calls()))
	}
	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Errorf("cached result differs: %v vs %v", first, second)
	}
	if cache.ttls["geocode:bank"] != 600 {
		t.Errorf("expected 600s ttl, got %d", cache.ttls["geocode:bank"])
	}
}

func TestPlaceService_Resolve_RemoteFailureKeepsLocal(t *testing.T) {
	geo := &mockGeocoder{
		searchFn: func(ctx context.Context, text string, size int) ([]domain.GeocodeCandidate, error) {
			return nil, fmt.Errorf("%w: status 503", domain.ErrUpstream)
		},
	}
	svc := newPlaceService(geo)

	got := svc.Resolve(context.Background(), "road")
	want := []string{"Oda Road", "Ondo Road", "Ado Road"}
	if strings.Join(names(got), "|") != strings.Join(want, "|") {
		t.Errorf("got %v, want %v", names(got), want)
	}
}

func TestPlaceService_Resolve_MergeDedupAndCap(t *testing.T) {
	geo := &mockGeocoder{
		searchFn: func(ctx context.Context, text string, size int) ([]domain.GeocodeCandidate, error) {
			return []domain.GeocodeCandidate{
				{Name: "ODA ROAD", Coordinate: domain.Coordinate{Lat: 7.237, Lng: 5.192}},
				{Name: "Oda Road Junction", Coordinate: domain.Coordinate{Lat: 7.236, Lng: 5.191}},
				{Name: "Oda Road Market", Coordinate: domain.Coordinate{Lat: 7.235, Lng: 5.190}},
			}, nil
		},
	}
	svc := newPlaceService(geo, func(o *usecases.PlaceOptions) { o.MaxResults = 2 })

	got := svc.Resolve(context.Background(), "oda road")
	want := []string{"Oda Road", "Oda Road Junction"}
	if strings.Join(names(got), "|") != strings.Join(want, "|") {
		t.Errorf("got %v, want %v", names(got), want)
	}
	if got[0].Source != domain.SourceLocal || got[1].Source != domain.SourceAPI {
		t.Errorf("unexpected sources %s, %s", got[0].Source, got[1].Source)
	}
}

func TestMergePlaces(t *testing.T) {
	local := []domain.Place{place("A", 7.25, 5.2), place("B", 7.25, 5.2)}
	remote := []domain.Place{{Name: "b"}, {Name: "C"}, {Name: "D"}}

	got := usecases.MergePlaces(local, remote, 4)
	if strings.Join(names(got), "") != "ABCD" {
		t.Errorf("got %v", names(got))
	}

	if got := usecases.MergePlaces(local, nil, 1); len(got) != 1 || got[0].Name != "A" {
		t.Errorf("cap should keep local order, got %v", names(got))
	}
}

func TestPlaceService_Lookup(t *testing.T) {
	geo := &mockGeocoder{
		searchFn: func(ctx context.Context, text string, size int) ([]domain.GeocodeCandidate, error) {
			switch {
			case strings.HasPrefix(text, "alagbaka,"):
				return []domain.GeocodeCandidate{
					{Name: "Alagbaka GRA", Coordinate: domain.Coordinate{Lat: 7.261, Lng: 5.206}},
				}, nil
			case strings.HasPrefix(text, "fiwasaye,"):
				return []domain.GeocodeCandidate{
					{Name: "Fiwasaye Girls Grammar School", Coordinate: domain.Coordinate{Lat: 7.255, Lng: 5.201}},
				}, nil
			}
			return nil, nil
		},
	}
	svc := newPlaceService(geo)
	ctx := context.Background()

	p, err := svc.Lookup(ctx, "alagbaka")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Alagbaka" || p.Source != domain.SourceLocal {
		t.Errorf("exact match should win, got %+v", p)
	}

	before := len(geo.Calls())
	p, err = svc.Lookup(ctx, "fiwasaye")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Fiwasaye Girls Grammar School" || p.Source != domain.SourceAPI {
		t.Errorf("expected first remote candidate, got %+v", p)
	}
	if calls := geo.Calls()[before:]; len(calls) != 1 {
		t.Errorf("one lookup should geocode once, got %d calls: %q", len(calls), calls)
	}

	_, err = svc.Lookup(ctx, "atlantis")
	if !errors.Is(err, domain.ErrNoResults) {
		t.Errorf("expected ErrNoResults, got %v", err)
	}

	_, err = svc.Lookup(ctx, "   ")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestPlaceService_Locate_Inside(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewPlaceService(akure, mustGazetteer(place("Alagbaka", 7.2608, 5.2056)),
		&mockGeocoder{}, nil, pub, usecases.DefaultPlaceOptions())

	here := domain.Coordinate{Lat: 7.2610, Lng: 5.2050}
	res, err := svc.Locate(context.Background(), here)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fallback || res.Notice != "" {
		t.Errorf("inside location should not fall back: %+v", res)
	}
	if res.Place.Name != usecases.CurrentLocationName || res.Place.Coordinate != here {
		t.Errorf("unexpected place %+v", res.Place)
	}
	if res.Nearest == nil || res.Nearest.Name != "Alagbaka" {
		t.Errorf("expected nearest Alagbaka, got %+v", res.Nearest)
	}
	if len(pub.fallbacks) != 0 {
		t.Errorf("no fallback event expected, got %d", len(pub.fallbacks))
	}
}

func TestPlaceService_Locate_OutsideFallsBack(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewPlaceService(akure, mustGazetteer(), &mockGeocoder{}, nil, pub, usecases.DefaultPlaceOptions())

	lagos := domain.Coordinate{Lat: 6.5244, Lng: 3.3792}
	res, err := svc.Locate(context.Background(), lagos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Fallback {
		t.Fatal("expected fallback")
	}
	if res.Place.Name != "Akure City Center" || res.Place.Coordinate != akure.Center {
		t.Errorf("unexpected fallback place %+v", res.Place)
	}
	if res.Notice != "Your location is outside Akure. Using Akure city center instead." {
		t.Errorf("unexpected notice %q", res.Notice)
	}
	if len(pub.fallbacks) != 1 || pub.fallbacks[0].Reported != lagos || pub.fallbacks[0].Used != akure.Center {
		t.Errorf("unexpected fallback events %+v", pub.fallbacks)
	}
}

func TestPlaceService_Locate_OutsideRejected(t *testing.T) {
	svc := newPlaceService(&mockGeocoder{}, func(o *usecases.PlaceOptions) { o.RejectOutside = true })

	_, err := svc.Locate(context.Background(), domain.Coordinate{Lat: 6.5244, Lng: 3.3792})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestPlaceService_Locate_Invalid(t *testing.T) {
	svc := newPlaceService(&mockGeocoder{})

	_, err := svc.Locate(context.Background(), domain.Coordinate{Lat: 91, Lng: 0})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestPlaceService_Popular(t *testing.T) {
	svc := newPlaceService(&mockGeocoder{}, func(o *usecases.PlaceOptions) { o.PopularLimit = 3 })

	if got := svc.Popular(0); len(got) != 3 || got[0].Name != "Akure City Mall" {
		t.Errorf("default limit: got %v", names(got))
	}
	if got := svc.Popular(100); len(got) != 7 {
		t.Errorf("limit above size: got %d", len(got))
	}
}

func TestPlaceService_Catalog(t *testing.T) {
	svc := newPlaceService(&mockGeocoder{})

	page, total := svc.Catalog(2, 3)
	if total != 7 || len(page) != 3 {
		t.Fatalf("got %d of %d", len(page), total)
	}
	all := svc.Popular(100)
	if page[0].Name != all[2].Name {
		t.Errorf("page should start at offset 2, got %s", page[0].Name)
	}

	if page, _ := svc.Catalog(6, 10); len(page) != 1 {
		t.Errorf("tail page: got %d", len(page))
	}
	if page, _ := svc.Catalog(50, 10); len(page) != 0 {
		t.Errorf("offset past end: got %d", len(page))
	}
	if page, _ := svc.Catalog(-1, 0); len(page) != 7 {
		t.Errorf("no limit: got %d", len(page))
	}
}

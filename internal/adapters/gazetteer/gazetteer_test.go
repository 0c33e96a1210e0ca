package gazetteer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/akureroute/internal/adapters/gazetteer"
	"github.com/samirrijal/akureroute/internal/core/domain"
)

var akure = domain.ServiceArea{
	Name: "Akure", North: 7.32, South: 7.2, East: 5.32, West: 5.12,
	Center: domain.Coordinate{Lat: 7.250771, Lng: 5.2103},
}

func TestBundled(t *testing.T) {
	g, err := gazetteer.Bundled()
	require.NoError(t, err)
	require.Equal(t, 27, g.Len())

	all := g.All()
	assert.Equal(t, "FUTA (Federal University of Technology)", all[0].Name)
	assert.Equal(t, "Hospital Road", all[len(all)-1].Name)

	for _, p := range all {
		assert.Equal(t, domain.SourceLocal, p.Source, p.Name)
		assert.Equal(t, "Akure", p.Region, p.Name)
		assert.Equal(t, "Nigeria", p.Country, p.Name)
		assert.True(t, akure.Contains(p.Coordinate), "%s should be inside Akure", p.Name)
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	g, err := gazetteer.Bundled()
	require.NoError(t, err)

	all := g.All()
	all[0].Name = "mutated"
	assert.NotEqual(t, "mutated", g.All()[0].Name)
}

func TestParse_RegionOverride(t *testing.T) {
	g, err := gazetteer.Parse([]byte(`
region: Akure
country: Nigeria
places:
  - {name: "Example Mall", lat: 7.25, lng: 5.2}
  - {name: "Owo Junction", region: "Owo", lat: 7.19, lng: 5.58}
`))
	require.NoError(t, err)

	all := g.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Akure", all[0].Region)
	assert.Equal(t, "Owo", all[1].Region)
}

func TestNew_RejectsBadEntries(t *testing.T) {
	_, err := gazetteer.New([]domain.Place{{Name: " ", Coordinate: domain.Coordinate{Lat: 7.25, Lng: 5.2}}})
	assert.Error(t, err)

	_, err = gazetteer.New([]domain.Place{{Name: "Nowhere", Coordinate: domain.Coordinate{Lat: 95, Lng: 5.2}}})
	assert.Error(t, err)

	_, err = gazetteer.Parse([]byte("places: [this is not"))
	assert.Error(t, err)
}

func TestNearest(t *testing.T) {
	g, err := gazetteer.Bundled()
	require.NoError(t, err)

	tests := []struct {
		name string
		at   domain.Coordinate
		want string
	}{
		{"on FUTA", domain.Coordinate{Lat: 7.3032, Lng: 5.1371}, "FUTA (Federal University of Technology)"},
		{"near Alagbaka", domain.Coordinate{Lat: 7.2610, Lng: 5.2058}, "Alagbaka"},
		// Shared coordinates resolve to the first entry.
		{"mall and shoprite", domain.Coordinate{Lat: 7.2429, Lng: 5.1954}, "Akure City Mall"},
		{"north of the city", domain.Coordinate{Lat: 7.40, Lng: 5.137}, "FUTA (Federal University of Technology)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, dist, ok := g.Nearest(tt.at)
			require.True(t, ok)
			assert.Equal(t, tt.want, p.Name)
			assert.GreaterOrEqual(t, dist, 0.0)
		})
	}
}

func TestNearest_Empty(t *testing.T) {
	g, err := gazetteer.New(nil)
	require.NoError(t, err)

	_, _, ok := g.Nearest(akure.Center)
	assert.False(t, ok)
}

type fakeRepo struct {
	places []domain.Place
	err    error
}

func (f *fakeRepo) UpsertBatch(ctx context.Context, places []domain.Place) error { return nil }
func (f *fakeRepo) List(ctx context.Context) ([]domain.Place, error)             { return f.places, f.err }

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("no repository", func(t *testing.T) {
		g, err := gazetteer.Load(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 27, g.Len())
	})

	t.Run("empty table", func(t *testing.T) {
		g, err := gazetteer.Load(ctx, &fakeRepo{})
		require.NoError(t, err)
		assert.Equal(t, 27, g.Len())
	})

	t.Run("from table", func(t *testing.T) {
		repo := &fakeRepo{places: []domain.Place{
			{Name: "Igoba", Coordinate: domain.Coordinate{Lat: 7.29, Lng: 5.24}, Source: domain.SourceAPI},
		}}
		g, err := gazetteer.Load(ctx, repo)
		require.NoError(t, err)
		require.Equal(t, 1, g.Len())
		assert.Equal(t, domain.SourceLocal, g.All()[0].Source)
	})

	t.Run("repository error", func(t *testing.T) {
		_, err := gazetteer.Load(ctx, &fakeRepo{err: errors.New("connection refused")})
		assert.ErrorContains(t, err, "connection refused")
	})
}

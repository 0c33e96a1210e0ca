package polyline_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/akureroute/internal/pkg/polyline"
)

// Reference vector from the encoded polyline algorithm documentation.
const referenceEncoded = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

func TestDecode_ReferenceVector(t *testing.T) {
	path, err := polyline.Decode(referenceEncoded, polyline.DefaultPrecision)
	require.NoError(t, err)

	want := orb.LineString{
		{-120.2, 38.5},
		{-120.95, 40.7},
		{-126.453, 43.252},
	}
	require.Len(t, path, len(want))
	for i := range want {
		assert.InDelta(t, want[i].Lon(), path[i].Lon(), 1e-9, "lng of point %d", i)
		assert.InDelta(t, want[i].Lat(), path[i].Lat(), 1e-9, "lat of point %d", i)
	}
}

func TestDecode_Precision6(t *testing.T) {
	path, err := polyline.Decode(referenceEncoded, 6)
	require.NoError(t, err)
	require.NotEmpty(t, path)
	assert.InDelta(t, -12.02, path[0].Lon(), 1e-9)
	assert.InDelta(t, 3.85, path[0].Lat(), 1e-9)
}

func TestDecode_Empty(t *testing.T) {
	path, err := polyline.Decode("", polyline.DefaultPrecision)
	require.NoError(t, err)
	assert.NotNil(t, path)
	assert.Empty(t, path)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"truncated final varint", "_p~iF~ps|U_"},
		{"continuation bit on last char", "_p~iF~ps|U_ulLnnqC_mqNvxq`"},
		{"latitude without longitude", "_p~iF"},
		{"character below offset", "_p~iF ps|U"},
		{"non ascii", "_p~iF~ps|Ué"},
		{"overflowing varint", "~~~~~~~~~~~~~~~?"},
		{"thirteenth group wider than four bits", "~~~~~~~~~~~~^?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := polyline.Decode(tt.encoded, polyline.DefaultPrecision)
			require.ErrorIs(t, err, polyline.ErrMalformed)
			assert.Nil(t, path)
		})
	}
}

func TestDecode_SixtyFourBitBoundary(t *testing.T) {
	// Twelve full groups plus a four-bit thirteenth fill an int64 exactly.
	path, err := polyline.Decode("~~~~~~~~~~~~N?", 0)
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, float64(math.MinInt64), path[0].Lat())
	assert.Equal(t, 0.0, path[0].Lon())
}

func TestDecode_BadPrecision(t *testing.T) {
	_, err := polyline.Decode(referenceEncoded, -1)
	assert.ErrorIs(t, err, polyline.ErrMalformed)

	_, err = polyline.Decode(referenceEncoded, 11)
	assert.ErrorIs(t, err, polyline.ErrMalformed)
}

func TestEncode_ReferenceVector(t *testing.T) {
	got, err := polyline.Encode(orb.LineString{
		{-120.2, 38.5},
		{-120.95, 40.7},
		{-126.453, 43.252},
	}, polyline.DefaultPrecision)
	require.NoError(t, err)
	assert.Equal(t, referenceEncoded, got)
}

func TestEncode_RejectsNaN(t *testing.T) {
	_, err := polyline.Encode(orb.LineString{{math.NaN(), 7.25}}, polyline.DefaultPrecision)
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, precision := range []int{5, 6} {
		unit := 1 / math.Pow10(precision)

		for n := 0; n < 50; n++ {
			path := make(orb.LineString, 1+rng.Intn(40))
			for i := range path {
				path[i] = orb.Point{
					-180 + rng.Float64()*360,
					-90 + rng.Float64()*180,
				}
			}

			encoded, err := polyline.Encode(path, precision)
			require.NoError(t, err)

			decoded, err := polyline.Decode(encoded, precision)
			require.NoError(t, err)
			require.Len(t, decoded, len(path))

			for i := range path {
				assert.InDelta(t, path[i].Lon(), decoded[i].Lon(), unit)
				assert.InDelta(t, path[i].Lat(), decoded[i].Lat(), unit)
			}
		}
	}
}

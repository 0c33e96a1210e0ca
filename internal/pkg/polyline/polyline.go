// Package polyline implements the encoded polyline algorithm format used by
// Google Maps, OSRM and OpenRouteService.
//
// Coordinates come back as orb points, so every pair is (longitude, latitude).
package polyline

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
)

// DefaultPrecision is the number of decimal places most providers encode.
// Some (OSRM with polyline6, Valhalla) use 6.
const DefaultPrecision = 5

const (
	maxPrecision = 10
	charOffset   = 63
	groupMask    = 0x1f
	continueBit  = 0x20
	maxShift     = 60 // 13 five-bit groups fill an int64
)

// ErrMalformed reports input that is not a complete encoded polyline.
var ErrMalformed = errors.New("malformed polyline")

// Decode turns an encoded polyline into its coordinate sequence.
// An empty string is a valid, empty path.
func Decode(encoded string, precision int) (orb.LineString, error) {
	factor, err := factorFor(precision)
	if err != nil {
		return nil, err
	}

	path := orb.LineString{}
	var lat, lng int64

	for i := 0; i < len(encoded); {
		dLat, next, err := decodeValue(encoded, i)
		if err != nil {
			return nil, err
		}
		if next == len(encoded) {
			return nil, fmt.Errorf("%w: latitude at offset %d has no longitude", ErrMalformed, i)
		}
		dLng, after, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}

		lat += dLat
		lng += dLng
		path = append(path, orb.Point{float64(lng) / factor, float64(lat) / factor})
		i = after
	}

	return path, nil
}

// Encode is the inverse of Decode. Values are rounded half away from zero.
func Encode(path orb.LineString, precision int) (string, error) {
	factor, err := factorFor(precision)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var prevLat, prevLng int64

	for i, p := range path {
		if !finite(p.Lat()) || !finite(p.Lon()) {
			return "", fmt.Errorf("point %d is not finite: %v", i, p)
		}
		lat := int64(math.Round(p.Lat() * factor))
		lng := int64(math.Round(p.Lon() * factor))

		encodeValue(&b, lat-prevLat)
		encodeValue(&b, lng-prevLng)
		prevLat, prevLng = lat, lng
	}

	return b.String(), nil
}

// decodeValue reads one varint starting at start and returns the signed
// delta plus the offset just past it.
func decodeValue(s string, start int) (int64, int, error) {
	var raw uint64
	var shift uint

	for i := start; i < len(s); i++ {
		chunk := int(s[i]) - charOffset
		if chunk < 0 || chunk > 63 {
			return 0, 0, fmt.Errorf("%w: invalid character %q at offset %d", ErrMalformed, s[i], i)
		}
		// The thirteenth group has room for only 64-maxShift bits.
		if shift > maxShift || (shift == maxShift && chunk&groupMask > 0xf) {
			return 0, 0, fmt.Errorf("%w: value at offset %d overflows", ErrMalformed, start)
		}

		raw |= uint64(chunk&groupMask) << shift
		shift += 5

		if chunk&continueBit == 0 {
			return unzigzag(raw), i + 1, nil
		}
	}

	return 0, 0, fmt.Errorf("%w: truncated value at offset %d", ErrMalformed, start)
}

// unzigzag maps 0, 1, 2, 3, ... back to 0, -1, 1, -2, ...
func unzigzag(raw uint64) int64 {
	if raw&1 == 1 {
		return -int64(raw>>1) - 1
	}
	return int64(raw >> 1)
}

func encodeValue(b *strings.Builder, v int64) {
	u := uint64(v) << 1
	if v < 0 {
		u = ^u
	}
	for u >= continueBit {
		b.WriteByte(byte((continueBit | (u & groupMask)) + charOffset))
		u >>= 5
	}
	b.WriteByte(byte(u + charOffset))
}

func factorFor(precision int) (float64, error) {
	if precision < 0 || precision > maxPrecision {
		return 0, fmt.Errorf("%w: precision %d out of range [0, %d]", ErrMalformed, precision, maxPrecision)
	}
	return math.Pow10(precision), nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

package geo

import (
	"fmt"
	"math"
	"strings"
)

const polylinePrecision = 1e5

// DecodeError reports a malformed encoded polyline.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("polyline: %s at byte %d", e.Reason, e.Offset)
}

// DecodePolyline decodes a Google encoded polyline (precision 5).
// An empty input yields an empty path; a stream that ends mid-value or contains bytes
// outside the encoding alphabet fails with *DecodeError.
func DecodePolyline(encoded string) ([]Coordinate, error) {
	path := make([]Coordinate, 0, len(encoded)/4)

	var lat, lng int
	index := 0
	for index < len(encoded) {
		dLat, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		if next >= len(encoded) {
			return nil, &DecodeError{Offset: next, Reason: "missing longitude"}
		}
		dLng, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		index = next

		lat += dLat
		lng += dLng
		path = append(path, Coordinate{
			Latitude:  float64(lat) / polylinePrecision,
			Longitude: float64(lng) / polylinePrecision,
		})
	}

	return path, nil
}

// decodeValue reads one zig-zag varint starting at index.
func decodeValue(encoded string, index int) (int, int, error) {
	var result, shift int
	for {
		if index >= len(encoded) {
			return 0, index, &DecodeError{Offset: index, Reason: "unexpected end of input"}
		}
		b := int(encoded[index]) - 63
		if b < 0 || b > 0x3f {
			return 0, index, &DecodeError{Offset: index, Reason: "invalid character"}
		}
		if shift > 30 {
			return 0, index, &DecodeError{Offset: index, Reason: "value overflow"}
		}
		index++

		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}

// EncodePolyline encodes path with the Google polyline algorithm (precision 5).
func EncodePolyline(path []Coordinate) string {
	var b strings.Builder
	var prevLat, prevLng int
	for _, c := range path {
		lat := int(math.Round(c.Latitude * polylinePrecision))
		lng := int(math.Round(c.Longitude * polylinePrecision))
		encodeValue(&b, lat-prevLat)
		encodeValue(&b, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return b.String()
}

func encodeValue(b *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		b.WriteByte(byte((0x20 | (u & 0x1f)) + 63))
		u >>= 5
	}
	b.WriteByte(byte(u + 63))
}

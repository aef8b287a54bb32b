package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate is an immutable WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
)

// NewCoordinate constructs a validated Coordinate.
func NewCoordinate(latitude, longitude float64) (Coordinate, error) {
	c := Coordinate{Latitude: latitude, Longitude: longitude}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// ParseCoordinate parses "lat,lng" (whitespace tolerated).
func ParseCoordinate(input string) (Coordinate, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("invalid coordinate: %q", input)
	}

	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return Coordinate{}, fmt.Errorf("invalid lat/lng: %q", input)
	}

	return NewCoordinate(lat, lng)
}

// Validate checks the coordinate ranges.
func (c Coordinate) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 || math.IsNaN(c.Latitude) {
		return ErrInvalidLatitude
	}
	if c.Longitude < -180 || c.Longitude > 180 || math.IsNaN(c.Longitude) {
		return ErrInvalidLongitude
	}
	return nil
}

// MovedMoreThan reports whether either axis differs from other by more than thresholdDeg.
func (c Coordinate) MovedMoreThan(other Coordinate, thresholdDeg float64) bool {
	return math.Abs(c.Latitude-other.Latitude) > thresholdDeg ||
		math.Abs(c.Longitude-other.Longitude) > thresholdDeg
}

// String renders "lat,lng" with 6 decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

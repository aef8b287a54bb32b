package trip

import (
	"fmt"
	"strings"
	"time"

	"trip-tracker/internal/domain/geo"
)

// NavigationInstruction is the routing service's description of a step.
type NavigationInstruction struct {
	Maneuver     string `json:"maneuver"`
	Instructions string `json:"instructions"`
}

// Step is one maneuver-to-maneuver segment of a leg.
type Step struct {
	DistanceMeters        int                   `json:"distance_meters"`
	Duration              string                `json:"duration,omitempty"`
	StartLocation         geo.Coordinate        `json:"start_location"`
	EndLocation           geo.Coordinate        `json:"end_location"`
	NavigationInstruction NavigationInstruction `json:"navigation_instruction"`
}

// Leg is the part of a route between two consecutive stops.
type Leg struct {
	Steps           []Step `json:"steps"`
	DistanceMeters  int    `json:"distance_meters"`
	Duration        string `json:"duration"`
	EncodedPolyline string `json:"encoded_polyline,omitempty"`
}

// RouteInfo is a computed multi-leg route. It is replaced wholesale on every recomputation.
type RouteInfo struct {
	Legs            []Leg  `json:"legs"`
	DistanceMeters  int    `json:"distance_meters"`
	Duration        string `json:"duration"`
	EncodedPolyline string `json:"encoded_polyline,omitempty"`
}

// DistanceKm returns the leg length in kilometers.
func (l Leg) DistanceKm() float64 {
	return float64(l.DistanceMeters) / 1000
}

// DurationSeconds parses the leg duration, nil when absent or malformed.
func (l Leg) DurationSeconds() *float64 {
	return ParseDurationSeconds(l.Duration)
}

// DurationSeconds parses the total route duration.
func (r RouteInfo) DurationSeconds() *float64 {
	return ParseDurationSeconds(r.Duration)
}

// ParseDurationSeconds parses a provider duration such as "754s" or "1.5s".
// Plain numbers are taken as seconds.
func ParseDurationSeconds(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.ContainsAny(s, "hms") {
		s += "s"
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return nil
	}
	secs := d.Seconds()
	return &secs
}

// PolylineSegment is the drawable path of one leg.
type PolylineSegment struct {
	Coordinates []geo.Coordinate `json:"coordinates"`
	Color       string           `json:"color"`
}

// BuildPolylines decodes one segment per leg, coloured from colors.
// A leg without an encoded polyline falls back to its step end points.
// Any malformed polyline fails the whole build so a half-decoded route is never shown.
func BuildPolylines(route RouteInfo, colors []string) ([]PolylineSegment, error) {
	segments := make([]PolylineSegment, 0, len(route.Legs))
	for i, leg := range route.Legs {
		var coords []geo.Coordinate
		if leg.EncodedPolyline != "" {
			decoded, err := geo.DecodePolyline(leg.EncodedPolyline)
			if err != nil {
				return nil, fmt.Errorf("leg %d: %w", i, err)
			}
			coords = decoded
		} else {
			coords = make([]geo.Coordinate, 0, len(leg.Steps)+1)
			if len(leg.Steps) > 0 {
				coords = append(coords, leg.Steps[0].StartLocation)
			}
			for _, step := range leg.Steps {
				coords = append(coords, step.EndLocation)
			}
		}

		color := ""
		if len(colors) > 0 {
			color = colors[i%len(colors)]
		}
		segments = append(segments, PolylineSegment{Coordinates: coords, Color: color})
	}
	return segments, nil
}

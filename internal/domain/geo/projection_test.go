package geo

import (
	"math"
	"testing"
)

func TestForwardPosition(t *testing.T) {
	origin := Coordinate{Latitude: 10.7769, Longitude: 106.7009}

	tests := []struct {
		name    string
		heading float64
		check   func(t *testing.T, got Coordinate)
	}{
		{
			name:    "north increases latitude only",
			heading: 0,
			check: func(t *testing.T, got Coordinate) {
				if got.Latitude <= origin.Latitude {
					t.Errorf("expected latitude to increase, got %v", got.Latitude)
				}
				if math.Abs(got.Longitude-origin.Longitude) > 1e-9 {
					t.Errorf("expected longitude unchanged, got %v", got.Longitude)
				}
			},
		},
		{
			name:    "east increases longitude",
			heading: 90,
			check: func(t *testing.T, got Coordinate) {
				if got.Longitude <= origin.Longitude {
					t.Errorf("expected longitude to increase, got %v", got.Longitude)
				}
			},
		},
		{
			name:    "south decreases latitude",
			heading: 180,
			check: func(t *testing.T, got Coordinate) {
				if got.Latitude >= origin.Latitude {
					t.Errorf("expected latitude to decrease, got %v", got.Latitude)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForwardPosition(origin, tt.heading)
			if d := DistanceKm(origin, got); math.Abs(d-ForwardDistanceKm) > 1e-6 {
				t.Errorf("projected distance = %v km, want %v", d, ForwardDistanceKm)
			}
			tt.check(t, got)
		})
	}
}

func TestBearing(t *testing.T) {
	a := Coordinate{Latitude: 0, Longitude: 0}
	if b := Bearing(a, Coordinate{Latitude: 1, Longitude: 0}); math.Abs(b) > 1e-9 {
		t.Errorf("bearing north = %v, want 0", b)
	}
	if b := Bearing(a, Coordinate{Latitude: 0, Longitude: 1}); math.Abs(b-90) > 1e-9 {
		t.Errorf("bearing east = %v, want 90", b)
	}
}

func TestNearestIndex(t *testing.T) {
	path := []Coordinate{{Latitude: 0, Longitude: 0}, {Latitude: 0, Longitude: 1}, {Latitude: 0, Longitude: 2}}
	if i := NearestIndex(path, Coordinate{Latitude: 0.01, Longitude: 1.1}); i != 1 {
		t.Errorf("NearestIndex() = %d, want 1", i)
	}
	if i := NearestIndex(nil, Coordinate{}); i != -1 {
		t.Errorf("NearestIndex(nil) = %d, want -1", i)
	}
}

package geo

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewFix(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		lat     float64
		lng     float64
		acc     *float64
		speed   *float64
		heading *float64
		wantErr error
	}{
		{name: "valid", lat: 10, lng: 106, heading: ptr(360), wantErr: nil},
		{name: "latitude out of range", lat: 91, lng: 0, wantErr: ErrInvalidLatitude},
		{name: "longitude NaN", lat: 0, lng: math.NaN(), wantErr: ErrInvalidLongitude},
		{name: "negative accuracy", lat: 0, lng: 0, acc: ptr(-1), wantErr: ErrNegativeAccuracy},
		{name: "negative speed", lat: 0, lng: 0, speed: ptr(-3), wantErr: ErrNegativeSpeed},
		{name: "heading above 360", lat: 0, lng: 0, heading: ptr(361), wantErr: ErrInvalidHeading},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFix(tt.lat, tt.lng, tt.acc, tt.speed, tt.heading, now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewFix() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewFix_DefaultsRecordedAt(t *testing.T) {
	fix, err := NewFix(1, 2, nil, nil, nil, time.Time{})
	if err != nil {
		t.Fatalf("NewFix() error = %v", err)
	}
	if fix.RecordedAt.IsZero() {
		t.Error("RecordedAt should default to now")
	}
	if fix.Heading() != 0 {
		t.Errorf("Heading() = %v, want 0 when unreported", fix.Heading())
	}
}

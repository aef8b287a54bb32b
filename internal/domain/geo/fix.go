package geo

import (
	"errors"
	"math"
	"time"
)

// Fix is a single device position report.
type Fix struct {
	Coordinate
	AccuracyMeters *float64
	SpeedKMH       *float64
	HeadingDegrees *float64
	RecordedAt     time.Time
}

var (
	ErrNegativeAccuracy   = errors.New("accuracy_meters cannot be negative")
	ErrNegativeSpeed      = errors.New("speed_kmh cannot be negative")
	ErrInvalidHeading     = errors.New("heading_degrees must be between 0 and 360")
	ErrRecordedAtZeroTime = errors.New("recorded_at must be a valid timestamp")
)

// NewFix constructs a validated Fix. A zero recordedAt is replaced with now (UTC).
func NewFix(latitude, longitude float64, accuracyMeters, speedKMH, headingDegrees *float64, recordedAt time.Time) (Fix, error) {
	fix := Fix{
		Coordinate:     Coordinate{Latitude: latitude, Longitude: longitude},
		AccuracyMeters: accuracyMeters,
		SpeedKMH:       speedKMH,
		HeadingDegrees: headingDegrees,
		RecordedAt:     recordedAt,
	}
	if fix.RecordedAt.IsZero() {
		fix.RecordedAt = time.Now().UTC()
	}
	if err := fix.Validate(); err != nil {
		return Fix{}, err
	}
	return fix, nil
}

// Validate checks invariants of the Fix.
func (fix Fix) Validate() error {
	if err := fix.Coordinate.Validate(); err != nil {
		return err
	}

	// optional metrics
	if fix.AccuracyMeters != nil {
		if *fix.AccuracyMeters < 0 || math.IsNaN(*fix.AccuracyMeters) {
			return ErrNegativeAccuracy
		}
	}
	if fix.SpeedKMH != nil {
		if *fix.SpeedKMH < 0 || math.IsNaN(*fix.SpeedKMH) {
			return ErrNegativeSpeed
		}
	}
	if fix.HeadingDegrees != nil {
		// allow exactly 0 and 360 (some SDKs report 360.0 instead of 0.0)
		if *fix.HeadingDegrees < 0 || *fix.HeadingDegrees > 360 || math.IsNaN(*fix.HeadingDegrees) {
			return ErrInvalidHeading
		}
	}

	if fix.RecordedAt.IsZero() {
		return ErrRecordedAtZeroTime
	}
	return nil
}

// Heading returns the reported heading, or 0 when the device did not report one.
func (fix Fix) Heading() float64 {
	if fix.HeadingDegrees == nil {
		return 0
	}
	return *fix.HeadingDegrees
}

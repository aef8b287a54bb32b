package contracts

import "time"

// LocationUpdateMessage is a device position report for a trip.
// Exchange: ExchangeLocationFanout (fanout, no routing key).
type LocationUpdateMessage struct {
	TripID           string    `json:"trip_id"`
	Location         GeoPoint  `json:"location"`
	AccuracyMeters   *float64  `json:"accuracy_meters,omitempty"`
	SpeedKMH         *float64  `json:"speed_kmh,omitempty"`
	HeadingDegrees   *float64  `json:"heading_degrees,omitempty"`
	PermissionDenied bool      `json:"permission_denied,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	Envelope
}

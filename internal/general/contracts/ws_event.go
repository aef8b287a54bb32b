package contracts

import (
	"encoding/json"
	"time"
)

// WebSocket message types.
const (
	WSTypeAuth        = "auth"
	WSTypeTripView    = "trip_view"
	WSTypeLocation    = "location"
	WSTypeFocusToggle = "focus_toggle"
	WSTypeShowAll     = "show_all"
	WSTypeGesture     = "gesture"
	WSTypeError       = "error"
)

// WSEnvelope is the {type,data} frame used in both directions.
type WSEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// WSLocation is the payload of a client "location" frame.
type WSLocation struct {
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	AccuracyMeters   *float64   `json:"accuracy_meters,omitempty"`
	SpeedKMH         *float64   `json:"speed_kmh,omitempty"`
	HeadingDegrees   *float64   `json:"heading_degrees,omitempty"`
	Timestamp        *time.Time `json:"timestamp,omitempty"`
	PermissionDenied bool       `json:"permission_denied,omitempty"`
}

// WSShowAll is the payload of a client "show_all" frame.
type WSShowAll struct {
	ShowAll bool `json:"show_all"`
}

// WSError is pushed to the client when a frame cannot be handled.
type WSError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

package contracts

import "time"

// ArrivalMessage is published when a traveler reaches a stop.
// Routing key: "trip.arrival.{trip_id}" on ExchangeTripTopic.
type ArrivalMessage struct {
	TripID           string    `json:"trip_id"`
	DestinationIndex int       `json:"destination_index"`
	DisplayName      string    `json:"display_name,omitempty"`
	Location         GeoPoint  `json:"location"`
	Remaining        int       `json:"remaining"`
	ArrivedAt        time.Time `json:"arrived_at"`
	Envelope
}

// RouteUpdatedMessage is published after a route recomputation is applied.
// Routing key: "trip.route.{trip_id}" on ExchangeTripTopic.
type RouteUpdatedMessage struct {
	TripID          string    `json:"trip_id"`
	Legs            int       `json:"legs"`
	DistanceMeters  int       `json:"distance_meters"`
	Duration        string    `json:"duration"`
	EncodedPolyline string    `json:"encoded_polyline,omitempty"`
	ComputedAt      time.Time `json:"computed_at"`
	Envelope
}

package ports

import (
	"context"
	"time"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/maneuver"
	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/general/contracts"
)

// ----- External collaborators -----

// PlaceSearcher resolves free text to a single best-match place.
// It fails with trip.ErrPlaceNotFound when nothing matches.
type PlaceSearcher interface {
	SearchPlace(ctx context.Context, keyword string) (trip.PlaceDestination, error)
}

// RouteProvider computes a route visiting stops in the given order.
// The result has one leg per stop; an empty result fails with *trip.RouteError.
type RouteProvider interface {
	ComputeRoute(ctx context.Context, origin geo.Coordinate, stops []geo.Coordinate) (trip.RouteInfo, error)
}

// Geocoder turns a coordinate into a display address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, c geo.Coordinate) (string, error)
}

// LocationUpdate is one event of a location stream: a fix, or an error such
// as trip.ErrPermissionDenied.
type LocationUpdate struct {
	Fix geo.Fix
	Err error
}

// LocationStream delivers device positions per trip. The returned channel is
// closed by unsubscribe.
type LocationStream interface {
	Subscribe(ctx context.Context, tripID string) (<-chan LocationUpdate, func(), error)
}

// LocationPublisher feeds a location stream.
type LocationPublisher interface {
	Publish(ctx context.Context, tripID string, update LocationUpdate) error
}

// TripEventPublisher broadcasts trip progress to other services.
type TripEventPublisher interface {
	PublishArrival(ctx context.Context, msg contracts.ArrivalMessage) error
	PublishRouteUpdated(ctx context.Context, msg contracts.RouteUpdatedMessage) error
}

// ----- DTOs for Tracking Service -----

// CameraKind tells the client how to move the map camera.
type CameraKind string

const (
	CameraAnimate CameraKind = "animate"
	CameraFit     CameraKind = "fit"
)

// Bounds is a south-west / north-east box.
type Bounds struct {
	SouthWest geo.Coordinate `json:"south_west"`
	NorthEast geo.Coordinate `json:"north_east"`
}

// CameraCommand is the most recent camera instruction. Seq increases with every new command.
type CameraCommand struct {
	Seq     uint64          `json:"seq"`
	Kind    CameraKind      `json:"kind"`
	Center  *geo.Coordinate `json:"center,omitempty"`
	Zoom    float64         `json:"zoom,omitempty"`
	Pitch   float64         `json:"pitch"`
	Heading float64         `json:"heading"`
	Bounds  *Bounds         `json:"bounds,omitempty"`
}

// ProgressStatus is the visual state of a destination, leg or step.
type ProgressStatus string

const (
	StatusCompleted ProgressStatus = "completed"
	StatusCurrent   ProgressStatus = "current"
	StatusUpcoming  ProgressStatus = "upcoming"
)

// MarkerKind distinguishes the traveler from the stops.
type MarkerKind string

const (
	MarkerUser        MarkerKind = "user"
	MarkerDestination MarkerKind = "destination"
)

type MarkerView struct {
	ID         string         `json:"id"`
	Kind       MarkerKind     `json:"kind"`
	Index      int            `json:"index"`
	Coordinate geo.Coordinate `json:"coordinate"`
	Title      string         `json:"title"`
	Subtitle   string         `json:"subtitle,omitempty"`
	Status     ProgressStatus `json:"status,omitempty"`
	Dimmed     bool           `json:"dimmed"`
	Heading    *float64       `json:"heading,omitempty"`
}

type PolylineView struct {
	LegIndex         int              `json:"leg_index"`
	DestinationIndex int              `json:"destination_index"`
	Coordinates      []geo.Coordinate `json:"coordinates"`
	Color            string           `json:"color"`
	Status           ProgressStatus   `json:"status"`
	Dimmed           bool             `json:"dimmed"`
}

// InstructionPanel is the floating next-maneuver panel.
type InstructionPanel struct {
	Instruction maneuver.Instruction `json:"instruction"`
	Text        string               `json:"text"`
	Distance    string               `json:"distance"`
}

// MapView is the renderable map state of a trip.
type MapView struct {
	TripID                     string            `json:"trip_id"`
	Version                    uint64            `json:"version"`
	Markers                    []MarkerView      `json:"markers"`
	Polylines                  []PolylineView    `json:"polylines"`
	Camera                     *CameraCommand    `json:"camera,omitempty"`
	Panel                      *InstructionPanel `json:"panel,omitempty"`
	Focus                      trip.FocusMode    `json:"focus"`
	ShowAll                    bool              `json:"show_all"`
	Address                    string            `json:"address,omitempty"`
	CurrentDestinationDistance string            `json:"current_destination_distance,omitempty"`
	Finished                   bool              `json:"finished"`
	Notices                    []trip.Notice     `json:"notices,omitempty"`
}

type StepEntry struct {
	Index       int                  `json:"index"`
	Status      ProgressStatus       `json:"status"`
	Instruction maneuver.Instruction `json:"instruction"`
	Text        string               `json:"text"`
	Distance    string               `json:"distance"`
}

type LegEntry struct {
	DestinationIndex int            `json:"destination_index"`
	Name             string         `json:"name"`
	Address          string         `json:"address,omitempty"`
	ScheduledTime    string         `json:"scheduled_time,omitempty"`
	Status           ProgressStatus `json:"status"`
	Distance         string         `json:"distance,omitempty"`
	Duration         string         `json:"duration,omitempty"`
	Steps            []StepEntry    `json:"steps,omitempty"`
}

// RouteDetailView is the step-by-step itinerary feed.
type RouteDetailView struct {
	TripID         string     `json:"trip_id"`
	Version        uint64     `json:"version"`
	CurrentAddress string     `json:"current_address,omitempty"`
	TotalDistance  string     `json:"total_distance,omitempty"`
	TotalDuration  string     `json:"total_duration,omitempty"`
	CompletedCount int        `json:"completed_count"`
	TotalCount     int        `json:"total_count"`
	Legs           []LegEntry `json:"legs"`
}

// StartSessionInput is the validated input for POST /trips/{trip_id}/sessions.
type StartSessionInput struct {
	TripID       string
	Destinations []trip.Destination
}

// SessionResult matches the API response for starting a session.
type SessionResult struct {
	SessionID    string                  `json:"session_id"`
	TripID       string                  `json:"trip_id"`
	StartedAt    time.Time               `json:"started_at"`
	Places       []trip.PlaceDestination `json:"places"`
	Dropped      []string                `json:"dropped,omitempty"`
	Completed    []int                   `json:"completed"`
	AlreadyExist bool                    `json:"already_exists,omitempty"`
}

// PushLocationInput is a device fix (or a permission denial) for a trip.
type PushLocationInput struct {
	TripID           string
	Latitude         float64
	Longitude        float64
	AccuracyMeters   *float64
	SpeedKMH         *float64
	HeadingDegrees   *float64
	RecordedAt       time.Time
	PermissionDenied bool
}

// ----- Tracking Service Interface -----

// TrackingService exposes the tracking sessions to the transport layer.
type TrackingService interface {
	StartSession(ctx context.Context, in StartSessionInput) (SessionResult, error)
	EndSession(ctx context.Context, tripID string) error
	Map(ctx context.Context, tripID string) (MapView, error)
	MapGeoJSON(ctx context.Context, tripID string) ([]byte, error)
	RouteDetail(ctx context.Context, tripID string) (RouteDetailView, error)
	PushLocation(ctx context.Context, in PushLocationInput) error
	CycleFocus(ctx context.Context, tripID string) (trip.FocusMode, error)
	SetShowAll(ctx context.Context, tripID string, showAll bool) error
	Gesture(ctx context.Context, tripID string) (trip.FocusMode, error)
	Watch(ctx context.Context, tripID string) (<-chan struct{}, func(), error)
	RunBackgroundConsumers(ctx context.Context)
	Close()
	SessionDirectory
}

package ports

import (
	"context"
	"time"

	"trip-tracker/internal/domain/trip"
)

// SessionSummary is a one-line view of a running tracking session.
type SessionSummary struct {
	SessionID          string         `json:"session_id"`
	TripID             string         `json:"trip_id"`
	StartedAt          time.Time      `json:"started_at"`
	Destinations       int            `json:"destinations"`
	Completed          int            `json:"completed"`
	Finished           bool           `json:"finished"`
	CurrentDestination string         `json:"current_destination,omitempty"`
	Location           *GeoPoint      `json:"location,omitempty"`
	LastFixAt          *time.Time     `json:"last_fix_at,omitempty"`
	Address            string         `json:"address,omitempty"`
	Focus              trip.FocusMode `json:"focus"`
	Lock               trip.LockState `json:"lock"`
	PermissionDenied   bool           `json:"permission_denied"`
}

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SessionDirectory lists the sessions of this process.
type SessionDirectory interface {
	Sessions(ctx context.Context) []SessionSummary
}

// ----- DTOs for Admin Service -----

type SystemOverviewResult struct {
	Timestamp time.Time       `json:"timestamp"`
	Metrics   OverviewMetrics `json:"metrics"`
}

type OverviewMetrics struct {
	ActiveSessions        int `json:"active_sessions"`
	FinishedSessions      int `json:"finished_sessions"`
	DestinationsTotal     int `json:"destinations_total"`
	DestinationsCompleted int `json:"destinations_completed"`
	RoutesUpdating        int `json:"routes_updating"`
	ArrivalsProcessing    int `json:"arrivals_processing"`
	PermissionDenied      int `json:"permission_denied"`
	AwaitingFirstFix      int `json:"awaiting_first_fix"`
}

type ActiveSessionsResult struct {
	Sessions   []SessionSummary `json:"sessions"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}

type HistoryPoint struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters *float64  `json:"accuracy_meters,omitempty"`
	SpeedKMH       *float64  `json:"speed_kmh,omitempty"`
	HeadingDegrees *float64  `json:"heading_degrees,omitempty"`
	RecordedAt     time.Time `json:"recorded_at"`
}

type LocationHistoryResult struct {
	TripID string         `json:"trip_id"`
	Points []HistoryPoint `json:"points"`
}

// ----- Admin Service Interface -----

type AdminService interface {
	GetSystemOverview(ctx context.Context) (SystemOverviewResult, error)
	GetActiveSessions(ctx context.Context, page, pageSize string) (ActiveSessionsResult, error)
	GetLocationHistory(ctx context.Context, tripID, limit string) (LocationHistoryResult, error)
}

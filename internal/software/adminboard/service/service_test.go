package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/ports"
)

type fakeDirectory []ports.SessionSummary

func (f fakeDirectory) Sessions(context.Context) []ports.SessionSummary { return f }

type fakeHistory struct {
	fixes []geo.Fix
	err   error
	limit int
}

func (f *fakeHistory) Archive(context.Context, string, geo.Fix) error { return nil }

func (f *fakeHistory) Recent(_ context.Context, _ string, limit int) ([]geo.Fix, error) {
	f.limit = limit
	return f.fixes, f.err
}

func directory() fakeDirectory {
	here := &ports.GeoPoint{Latitude: 1, Longitude: 2}
	return fakeDirectory{
		{TripID: "a", Destinations: 3, Completed: 1, Lock: trip.LockRouteUpdating, Location: here},
		{TripID: "b", Destinations: 2, Completed: 2, Finished: true, Lock: trip.LockIdle, Location: here},
		{TripID: "c", Destinations: 1, Lock: trip.LockIdle},
		{TripID: "d", Destinations: 4, Completed: 3, Lock: trip.LockProcessingArrival, PermissionDenied: true},
	}
}

func TestGetSystemOverview(t *testing.T) {
	svc := NewAdminService(directory(), nil)

	res, err := svc.GetSystemOverview(context.Background())
	if err != nil {
		t.Fatalf("GetSystemOverview() error = %v", err)
	}
	want := ports.OverviewMetrics{
		ActiveSessions:        3,
		FinishedSessions:      1,
		DestinationsTotal:     10,
		DestinationsCompleted: 6,
		RoutesUpdating:        1,
		ArrivalsProcessing:    1,
		PermissionDenied:      1,
		AwaitingFirstFix:      1,
	}
	if res.Metrics != want {
		t.Errorf("metrics = %+v, want %+v", res.Metrics, want)
	}
	if res.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestGetActiveSessions(t *testing.T) {
	var many fakeDirectory
	for i := range 25 {
		many = append(many, ports.SessionSummary{TripID: fmt.Sprintf("t%02d", i)})
	}

	tests := []struct {
		name      string
		dir       fakeDirectory
		page      string
		size      string
		wantPage  int
		wantSize  int
		wantTotal int
		wantFirst string
		wantLen   int
	}{
		{"defaults skip finished", directory(), "", "", 1, 10, 3, "a", 3},
		{"second page", many, "2", "10", 2, 10, 25, "t10", 10},
		{"last partial page", many, "3", "10", 3, 10, 25, "t20", 5},
		{"past the end", many, "9", "10", 9, 10, 25, "", 0},
		{"garbage falls back", many, "x", "-1", 1, 10, 25, "t00", 10},
		{"size capped", many, "1", "1000", 1, 100, 25, "t00", 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewAdminService(tt.dir, nil).GetActiveSessions(context.Background(), tt.page, tt.size)
			if err != nil {
				t.Fatalf("GetActiveSessions() error = %v", err)
			}
			if res.Page != tt.wantPage || res.PageSize != tt.wantSize || res.TotalCount != tt.wantTotal {
				t.Errorf("page=%d size=%d total=%d", res.Page, res.PageSize, res.TotalCount)
			}
			if len(res.Sessions) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(res.Sessions), tt.wantLen)
			}
			if tt.wantLen > 0 && res.Sessions[0].TripID != tt.wantFirst {
				t.Errorf("first = %s, want %s", res.Sessions[0].TripID, tt.wantFirst)
			}
		})
	}
}

func TestGetLocationHistory(t *testing.T) {
	speed := 42.0
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	history := &fakeHistory{fixes: []geo.Fix{{
		Coordinate: geo.Coordinate{Latitude: 1, Longitude: 2},
		SpeedKMH:   &speed,
		RecordedAt: at,
	}}}
	svc := NewAdminService(directory(), history)

	res, err := svc.GetLocationHistory(context.Background(), "a", "")
	if err != nil {
		t.Fatalf("GetLocationHistory() error = %v", err)
	}
	if history.limit != defaultHistoryLimit {
		t.Errorf("limit = %d, want default", history.limit)
	}
	if len(res.Points) != 1 || *res.Points[0].SpeedKMH != 42 || !res.Points[0].RecordedAt.Equal(at) {
		t.Errorf("points = %+v", res.Points)
	}

	if _, err := svc.GetLocationHistory(context.Background(), "a", "100000"); err != nil || history.limit != maxHistoryLimit {
		t.Errorf("limit = %d (%v), want cap", history.limit, err)
	}
	if _, err := svc.GetLocationHistory(context.Background(), " ", "5"); !errors.Is(err, ErrMissingTripID) {
		t.Errorf("blank trip error = %v", err)
	}
	if _, err := NewAdminService(directory(), nil).GetLocationHistory(context.Background(), "a", "5"); !errors.Is(err, ErrHistoryDisabled) {
		t.Errorf("no history error = %v", err)
	}

	history.err = errors.New("db down")
	if _, err := svc.GetLocationHistory(context.Background(), "a", "5"); err == nil {
		t.Error("expected repository error")
	}
}

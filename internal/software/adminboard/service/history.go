package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"trip-tracker/internal/ports"
)

var (
	ErrHistoryDisabled = errors.New("location history is not archived")
	ErrMissingTripID   = errors.New("trip_id is required")
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// GetLocationHistory returns the most recent archived fixes of a trip, newest first.
func (service *adminService) GetLocationHistory(ctx context.Context, tripID, limit string) (ports.LocationHistoryResult, error) {
	tripID = strings.TrimSpace(tripID)
	if tripID == "" {
		return ports.LocationHistoryResult{}, ErrMissingTripID
	}
	if service.history == nil {
		return ports.LocationHistoryResult{}, ErrHistoryDisabled
	}

	n, err := strconv.Atoi(limit)
	if err != nil || n < 1 {
		n = defaultHistoryLimit
	}
	n = min(n, maxHistoryLimit)

	fixes, err := service.history.Recent(ctx, tripID, n)
	if err != nil {
		return ports.LocationHistoryResult{}, fmt.Errorf("load location history: %w", err)
	}

	res := ports.LocationHistoryResult{TripID: tripID, Points: make([]ports.HistoryPoint, 0, len(fixes))}
	for _, fix := range fixes {
		res.Points = append(res.Points, ports.HistoryPoint{
			Latitude:       fix.Latitude,
			Longitude:      fix.Longitude,
			AccuracyMeters: fix.AccuracyMeters,
			SpeedKMH:       fix.SpeedKMH,
			HeadingDegrees: fix.HeadingDegrees,
			RecordedAt:     fix.RecordedAt.UTC(),
		})
	}
	return res, nil
}

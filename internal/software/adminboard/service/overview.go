package service

import (
	"context"

	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/ports"
)

// GetSystemOverview collects aggregate metrics over the running sessions.
func (service *adminService) GetSystemOverview(ctx context.Context) (ports.SystemOverviewResult, error) {
	res := ports.SystemOverviewResult{Timestamp: service.now()}

	for _, s := range service.sessions.Sessions(ctx) {
		m := &res.Metrics
		if s.Finished {
			m.FinishedSessions++
		} else {
			m.ActiveSessions++
		}
		m.DestinationsTotal += s.Destinations
		m.DestinationsCompleted += s.Completed

		switch s.Lock {
		case trip.LockRouteUpdating:
			m.RoutesUpdating++
		case trip.LockProcessingArrival:
			m.ArrivalsProcessing++
		}
		if s.PermissionDenied {
			m.PermissionDenied++
		} else if s.Location == nil {
			m.AwaitingFirstFix++
		}
	}
	return res, nil
}

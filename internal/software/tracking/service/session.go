package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/ports"
	"trip-tracker/internal/tracking"
)

// StartSession resolves the destinations of a trip and begins tracking it.
// Starting a trip that is already tracked returns the running session.
func (service *trackingService) StartSession(ctx context.Context, in ports.StartSessionInput) (ports.SessionResult, error) {
	tripID := strings.TrimSpace(in.TripID)
	if tripID == "" {
		return ports.SessionResult{}, fmt.Errorf("%w: trip_id is required", ErrInvalidInput)
	}
	if len(in.Destinations) == 0 {
		return ports.SessionResult{}, fmt.Errorf("%w: at least one destination is required", ErrInvalidInput)
	}
	if err := validDestinations(in.Destinations); err != nil {
		return ports.SessionResult{}, err
	}
	ctx = service.logger.WithTripID(ctx, tripID)

	if existing, err := service.lookup(tripID); err == nil {
		res := existing.result
		res.Completed = existing.ctrl.Snapshot().Completed
		res.AlreadyExist = true
		return res, nil
	}

	ctrl := tracking.NewController(tripID, service.cfg, tracking.Deps{
		Places:   service.deps.Places,
		Routes:   service.deps.Routes,
		Geocoder: service.deps.Geocoder,
		Stream:   service.deps.Hub,
		Store:    service.store,
		Events:   service.deps.Events,
		Logger:   service.logger,
		Clock:    service.deps.Clock,
	})

	dropped, err := ctrl.Start(ctx, in.Destinations)
	if err != nil {
		ctrl.Close()
		service.logger.Error(ctx, "session_start_failed", "Failed to start tracking session", err,
			map[string]any{"destinations": len(in.Destinations), "dropped": len(dropped)})
		return ports.SessionResult{Dropped: dropped}, err
	}

	snap := ctrl.Snapshot()
	sess := &session{
		id:   uuid.NewString(),
		ctrl: ctrl,
		result: ports.SessionResult{
			TripID:    tripID,
			StartedAt: service.deps.Clock.Now(),
			Places:    snap.Places,
			Dropped:   dropped,
			Completed: snap.Completed,
		},
	}
	sess.result.SessionID = sess.id

	service.mu.Lock()
	if existing, ok := service.sessions[tripID]; ok {
		// lost a race with a concurrent start
		service.mu.Unlock()
		ctrl.Close()
		res := existing.result
		res.AlreadyExist = true
		return res, nil
	}
	service.sessions[tripID] = sess
	service.mu.Unlock()

	service.logger.Info(ctx, "session_started", "Tracking session started",
		map[string]any{"session_id": sess.id, "places": len(snap.Places), "dropped": dropped})
	return sess.result, nil
}

// EndSession stops tracking tripID and releases its subscriptions.
func (service *trackingService) EndSession(ctx context.Context, tripID string) error {
	service.mu.Lock()
	sess, ok := service.sessions[tripID]
	delete(service.sessions, tripID)
	service.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.ctrl.Close()
	if service.deps.Hub != nil {
		service.deps.Hub.Forget(tripID)
	}
	service.logger.Info(service.logger.WithTripID(ctx, tripID), "session_ended", "Tracking session ended",
		map[string]any{"session_id": sess.id})
	return nil
}

// Close ends every session.
func (service *trackingService) Close() {
	service.mu.Lock()
	sessions := service.sessions
	service.sessions = make(map[string]*session)
	service.mu.Unlock()

	for _, sess := range sessions {
		sess.ctrl.Close()
	}
}

func validDestinations(dests []trip.Destination) error {
	for i, d := range dests {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%w: destination %d: %v", ErrInvalidInput, i, err)
		}
	}
	return nil
}

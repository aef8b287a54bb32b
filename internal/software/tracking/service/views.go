package service

import (
	"context"
	"fmt"
	"sort"

	"trip-tracker/internal/ports"
	"trip-tracker/internal/tracking"
)

// Map returns the renderable map state of tripID.
func (service *trackingService) Map(ctx context.Context, tripID string) (ports.MapView, error) {
	sess, err := service.lookup(tripID)
	if err != nil {
		return ports.MapView{}, err
	}
	return tracking.MapView(sess.ctrl.Snapshot()), nil
}

// MapGeoJSON returns the map state of tripID as a GeoJSON FeatureCollection.
func (service *trackingService) MapGeoJSON(ctx context.Context, tripID string) ([]byte, error) {
	sess, err := service.lookup(tripID)
	if err != nil {
		return nil, err
	}
	raw, err := tracking.FeatureCollection(sess.ctrl.Snapshot()).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return raw, nil
}

// RouteDetail returns the itinerary feed of tripID.
func (service *trackingService) RouteDetail(ctx context.Context, tripID string) (ports.RouteDetailView, error) {
	sess, err := service.lookup(tripID)
	if err != nil {
		return ports.RouteDetailView{}, err
	}
	return tracking.RouteDetail(sess.ctrl.Snapshot()), nil
}

// Watch signals after every state change of tripID.
func (service *trackingService) Watch(ctx context.Context, tripID string) (<-chan struct{}, func(), error) {
	sess, err := service.lookup(tripID)
	if err != nil {
		return nil, nil, err
	}
	ch, stop := sess.ctrl.Watch()
	return ch, stop, nil
}

// Sessions summarises every running session, oldest first.
func (service *trackingService) Sessions(ctx context.Context) []ports.SessionSummary {
	service.mu.Lock()
	sessions := make([]*session, 0, len(service.sessions))
	for _, sess := range service.sessions {
		sessions = append(sessions, sess)
	}
	service.mu.Unlock()

	out := make([]ports.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, summarize(sess))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].TripID < out[j].TripID
	})
	return out
}

func summarize(sess *session) ports.SessionSummary {
	snap := sess.ctrl.Snapshot()
	sum := ports.SessionSummary{
		SessionID:        sess.id,
		TripID:           snap.TripID,
		StartedAt:        sess.result.StartedAt,
		Destinations:     len(snap.Places),
		Completed:        len(snap.Completed),
		Finished:         snap.Finished(),
		Address:          snap.Address,
		Focus:            snap.Focus,
		Lock:             snap.Lock.State,
		PermissionDenied: snap.PermissionDenied,
	}
	if current, ok := snap.CurrentDestination(); ok {
		sum.CurrentDestination = current.DisplayName
	}
	if snap.Location != nil {
		at := snap.Location.RecordedAt
		sum.Location = &ports.GeoPoint{Latitude: snap.Location.Latitude, Longitude: snap.Location.Longitude}
		sum.LastFixAt = &at
	}
	return sum
}

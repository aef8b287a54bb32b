package service

import (
	"context"
	"fmt"
	"strings"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/ports"
)

// PushLocation feeds a device fix, or a permission denial, into the stream of a trip.
func (service *trackingService) PushLocation(ctx context.Context, in ports.PushLocationInput) error {
	tripID := strings.TrimSpace(in.TripID)
	if tripID == "" {
		return fmt.Errorf("%w: trip_id is required", ErrInvalidInput)
	}
	if _, err := service.lookup(tripID); err != nil {
		return err
	}

	if in.PermissionDenied {
		return service.ingest(ctx, tripID, ports.LocationUpdate{Err: trip.ErrPermissionDenied})
	}

	fix, err := geo.NewFix(in.Latitude, in.Longitude, in.AccuracyMeters, in.SpeedKMH, in.HeadingDegrees, in.RecordedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return service.ingest(ctx, tripID, ports.LocationUpdate{Fix: fix})
}

// ingest archives a fix and hands it to the session through the hub.
// Archive failures are logged; tracking goes on without history.
func (service *trackingService) ingest(ctx context.Context, tripID string, update ports.LocationUpdate) error {
	ctx = service.logger.WithTripID(ctx, tripID)
	if update.Err == nil && service.deps.History != nil {
		if err := service.deps.History.Archive(ctx, tripID, update.Fix); err != nil {
			service.logger.Error(ctx, "location_archive_failed", "Failed to archive location fix", err, nil)
		}
	}
	if err := service.deps.Hub.Publish(ctx, tripID, update); err != nil {
		return fmt.Errorf("publish location: %w", err)
	}
	return nil
}

// ingestSink adapts ingest to a ports.LocationPublisher for the queue consumer.
type ingestSink struct {
	service *trackingService
}

func (sink ingestSink) Publish(ctx context.Context, tripID string, update ports.LocationUpdate) error {
	if _, err := sink.service.lookup(tripID); err != nil {
		// fixes for trips nobody tracks here are acknowledged and dropped
		return nil
	}
	return sink.service.ingest(ctx, tripID, update)
}

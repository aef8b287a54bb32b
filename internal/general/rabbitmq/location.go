package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/general/contracts"
	"trip-tracker/internal/general/logger"
	"trip-tracker/internal/ports"
)

var ErrMissingTripID = errors.New("location update without trip_id")

// DecodeLocationUpdate turns a location fanout message into a stream update.
func DecodeLocationUpdate(body []byte) (string, ports.LocationUpdate, error) {
	var msg contracts.LocationUpdateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return "", ports.LocationUpdate{}, fmt.Errorf("decode location update: %w", err)
	}
	tripID := strings.TrimSpace(msg.TripID)
	if tripID == "" {
		return "", ports.LocationUpdate{}, ErrMissingTripID
	}
	if msg.PermissionDenied {
		return tripID, ports.LocationUpdate{Err: trip.ErrPermissionDenied}, nil
	}

	fix, err := geo.NewFix(msg.Location.Lat, msg.Location.Lng, msg.AccuracyMeters, msg.SpeedKMH, msg.HeadingDegrees, msg.Timestamp)
	if err != nil {
		return "", ports.LocationUpdate{}, fmt.Errorf("invalid location update: %w", err)
	}
	return tripID, ports.LocationUpdate{Fix: fix}, nil
}

// ConsumeLocations forwards every message on the trip location queue to sink.
// Malformed messages are logged and dropped.
func ConsumeLocations(ctx context.Context, client *Client, sink ports.LocationPublisher, log *logger.Logger) error {
	return client.Consume(ctx, contracts.QueueTripLocationUpdates, "tracking-locations", 32,
		func(ctx context.Context, d amqp.Delivery) error {
			tripID, update, err := DecodeLocationUpdate(d.Body)
			if err != nil {
				log.Error(ctx, "location_message_invalid", "Dropping invalid location message", err,
					map[string]any{"message_id": d.MessageId})
				return err
			}
			return sink.Publish(log.WithTripID(ctx, tripID), tripID, update)
		})
}

package service

import (
	"context"

	"trip-tracker/internal/domain/trip"
)

// CycleFocus advances the camera follow mode off -> center -> forward -> off.
func (service *trackingService) CycleFocus(ctx context.Context, tripID string) (trip.FocusMode, error) {
	sess, err := service.lookup(tripID)
	if err != nil {
		return "", err
	}
	mode := sess.ctrl.CycleFocus()
	service.logger.Debug(service.logger.WithTripID(ctx, tripID), "focus_cycled", "Focus mode changed",
		map[string]any{"focus": mode.String()})
	return mode, nil
}

func (service *trackingService) SetShowAll(ctx context.Context, tripID string, showAll bool) error {
	sess, err := service.lookup(tripID)
	if err != nil {
		return err
	}
	sess.ctrl.SetShowAll(showAll)
	return nil
}

// Gesture reports a manual map pan or zoom.
func (service *trackingService) Gesture(ctx context.Context, tripID string) (trip.FocusMode, error) {
	sess, err := service.lookup(tripID)
	if err != nil {
		return "", err
	}
	return sess.ctrl.ManualGesture(), nil
}

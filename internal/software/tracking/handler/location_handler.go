package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"trip-tracker/internal/ports"
)

// --- Request DTO (HTTP boundary) ---

type pushLocationRequest struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters *float64  `json:"accuracy_meters,omitempty"`
	SpeedKmh       *float64  `json:"speed_kmh,omitempty"`
	HeadingDegrees *float64  `json:"heading_degrees,omitempty"`
	RecordedAt     time.Time `json:"recorded_at,omitempty"`
	Permission     string    `json:"permission,omitempty" validate:"omitempty,oneof=granted denied"`
}

// ----- Handler: POST /trips/{trip_id}/location -----

func (handler *TrackingHTTPHandler) handlePushLocation(w http.ResponseWriter, r *http.Request) {
	ctx, tripID, ok := handler.tripContext(w, r)
	if !ok {
		return
	}

	var req pushLocationRequest
	if !handler.decodeJSON(ctx, w, r, &req) {
		return
	}
	if err := handler.validate.Struct(req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "permission must be granted or denied", err)
		return
	}

	in := ports.PushLocationInput{
		TripID:           tripID,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		AccuracyMeters:   req.AccuracyMeters,
		SpeedKMH:         req.SpeedKmh,
		HeadingDegrees:   req.HeadingDegrees,
		RecordedAt:       req.RecordedAt.UTC(),
		PermissionDenied: strings.EqualFold(req.Permission, "denied"),
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, serviceTimeout)
	defer cancel()

	if err := handler.svc.PushLocation(ctxWithTimeout, in); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	type resp struct {
		TripID   string `json:"trip_id"`
		Accepted bool   `json:"accepted"`
	}
	handler.jsonResponse(ctx, w, http.StatusAccepted, resp{TripID: tripID, Accepted: true})
}

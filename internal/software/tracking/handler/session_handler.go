package handler

import (
	"context"
	"net/http"

	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/ports"
)

type startSessionRequest struct {
	Destinations []trip.Destination `json:"destinations" validate:"required,min=1,max=25,dive"`
}

// ----- Handler: POST /trips/{trip_id}/sessions -----

func (handler *TrackingHTTPHandler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx, tripID, ok := handler.tripContext(w, r)
	if !ok {
		return
	}

	var req startSessionRequest
	if !handler.decodeJSON(ctx, w, r, &req) {
		return
	}
	if err := handler.validate.Struct(req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "destinations must hold 1 to 25 entries with a keyword", err)
		return
	}

	// place searches run once per destination
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 3*serviceTimeout)
	defer cancel()

	res, err := handler.svc.StartSession(ctxWithTimeout, ports.StartSessionInput{
		TripID:       tripID,
		Destinations: req.Destinations,
	})
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	status := http.StatusCreated
	if res.AlreadyExist {
		status = http.StatusOK
	}
	handler.jsonResponse(ctx, w, status, res)
}

// ----- Handler: DELETE /trips/{trip_id}/sessions -----

func (handler *TrackingHTTPHandler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	ctx, tripID, ok := handler.tripContext(w, r)
	if !ok {
		return
	}

	if err := handler.svc.EndSession(ctx, tripID); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

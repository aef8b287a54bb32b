package handler

import (
	"net/http"

	"trip-tracker/internal/domain/trip"
)

type focusResponse struct {
	TripID string         `json:"trip_id"`
	Focus  trip.FocusMode `json:"focus"`
}

type showAllRequest struct {
	ShowAll *bool `json:"show_all" validate:"required"`
}

// ----- Handler: POST /trips/{trip_id}/focus -----

func (handler *TrackingHTTPHandler) handleCycleFocus(w http.ResponseWriter, r *http.Request) {
	ctx, tripID, ok := handler.tripContext(w, r)
	if !ok {
		return
	}

	mode, err := handler.svc.CycleFocus(ctx, tripID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, focusResponse{TripID: tripID, Focus: mode})
}

// ----- Handler: POST /trips/{trip_id}/show-all -----

func (handler *TrackingHTTPHandler) handleShowAll(w http.ResponseWriter, r *http.Request) {
	ctx, tripID, ok := handler.tripContext(w, r)
	if !ok {
		return
	}

	var req showAllRequest
	if !handler.decodeJSON(ctx, w, r, &req) {
		return
	}
	if err := handler.validate.Struct(req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "show_all is required", err)
		return
	}

	if err := handler.svc.SetShowAll(ctx, tripID, *req.ShowAll); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	type resp struct {
		TripID  string `json:"trip_id"`
		ShowAll bool   `json:"show_all"`
	}
	handler.jsonResponse(ctx, w, http.StatusOK, resp{TripID: tripID, ShowAll: *req.ShowAll})
}

// ----- Handler: POST /trips/{trip_id}/gesture -----

func (handler *TrackingHTTPHandler) handleGesture(w http.ResponseWriter, r *http.Request) {
	ctx, tripID, ok := handler.tripContext(w, r)
	if !ok {
		return
	}

	mode, err := handler.svc.Gesture(ctx, tripID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, focusResponse{TripID: tripID, Focus: mode})
}

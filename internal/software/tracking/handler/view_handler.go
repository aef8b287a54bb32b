package handler

import (
	"net/http"
)

// ----- Handler: GET /trips/{trip_id}/map -----

func (handler *TrackingHTTPHandler) handleMap(w http.ResponseWriter, r *http.Request) {
	ctx, tripID, ok := handler.tripContext(w, r)
	if !ok {
		return
	}

	view, err := handler.svc.Map(ctx, tripID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	handler.jsonResponse(ctx, w, http.StatusOK, view)
}

// ----- Handler: GET /trips/{trip_id}/map.geojson -----

func (handler *TrackingHTTPHandler) handleMapGeoJSON(w http.ResponseWriter, r *http.Request) {
	ctx, tripID, ok := handler.tripContext(w, r)
	if !ok {
		return
	}

	raw, err := handler.svc.MapGeoJSON(ctx, tripID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// ----- Handler: GET /trips/{trip_id}/route -----

func (handler *TrackingHTTPHandler) handleRouteDetail(w http.ResponseWriter, r *http.Request) {
	ctx, tripID, ok := handler.tripContext(w, r)
	if !ok {
		return
	}

	view, err := handler.svc.RouteDetail(ctx, tripID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	handler.jsonResponse(ctx, w, http.StatusOK, view)
}

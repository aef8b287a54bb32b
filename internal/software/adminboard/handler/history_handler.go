package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"trip-tracker/internal/software/adminboard/service"
)

// --- Handler: GET /admin/trips/{trip_id}/history?limit=N ---

func (handler *AdminHTTPHandler) handleLocationHistory(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)
	tripID := r.PathValue("trip_id")

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	history, err := handler.svc.GetLocationHistory(ctxWithTimeout, tripID, r.URL.Query().Get("limit"))
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, service.ErrMissingTripID):
			handler.httpError(ctx, w, http.StatusBadRequest, "trip_id is required", err)
		case errors.Is(err, service.ErrHistoryDisabled):
			handler.httpError(ctx, w, http.StatusNotImplemented, "location history needs the postgres storage driver", err)
		case errors.As(err, &pgErr):
			handler.httpError(ctx, w, http.StatusInternalServerError, "database error", err)
		default:
			handler.httpError(ctx, w, http.StatusInternalServerError, "failed to fetch location history", err)
		}
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, history)
}

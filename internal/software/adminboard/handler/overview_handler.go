package handler

import (
	"context"
	"net/http"
	"time"
)

// --- Handler: GET /admin/overview ---

func (handler *AdminHTTPHandler) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	overview, err := handler.svc.GetSystemOverview(ctxWithTimeout)
	if err != nil {
		handler.httpError(ctx, w, http.StatusInternalServerError, "failed to fetch system overview", err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, overview)
}

// --- Handler: GET /admin/sessions/active?page=X&page_size=Y ---

func (handler *AdminHTTPHandler) handleActiveSessions(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	query := r.URL.Query()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	sessions, err := handler.svc.GetActiveSessions(ctxWithTimeout, query.Get("page"), query.Get("page_size"))
	if err != nil {
		handler.httpError(ctx, w, http.StatusInternalServerError, "failed to fetch active sessions", err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, sessions)
}

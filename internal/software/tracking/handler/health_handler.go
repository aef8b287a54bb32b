package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// ----- Handler: GET /health -----

// handleHealth returns a minimal JSON health status payload.
func (handler *TrackingHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	type resp struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}

	status, body := http.StatusOK, resp{Status: "ok"}
	if handler.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := handler.health(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, resp{Status: "degraded", Error: err.Error()}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

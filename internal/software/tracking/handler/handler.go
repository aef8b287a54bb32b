package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/domain/user"
	"trip-tracker/internal/general/jwt"
	"trip-tracker/internal/general/logger"
	"trip-tracker/internal/general/websocket"
	"trip-tracker/internal/ports"
	"trip-tracker/internal/software/tracking/service"
)

const serviceTimeout = 10 * time.Second

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// TrackingHTTPHandler adapts HTTP requests to the TrackingService.
type TrackingHTTPHandler struct {
	svc       ports.TrackingService
	logger    *logger.Logger
	auth      *jwt.Manager
	websocket *websocket.WebSocket
	validate  *validator.Validate
	health    HealthCheck
}

// NewTrackingHTTPHandler wires an HTTP handler around the TrackingService.
// health may be nil.
func NewTrackingHTTPHandler(
	svc ports.TrackingService,
	logger *logger.Logger,
	auth *jwt.Manager,
	ws *websocket.WebSocket,
	health HealthCheck,
) *TrackingHTTPHandler {
	return &TrackingHTTPHandler{
		svc:       svc,
		logger:    logger,
		auth:      auth,
		websocket: ws,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		health:    health,
	}
}

// RegisterRoutes mounts trip endpoints on the provided mux.
func (handler *TrackingHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	traveler := jwt.AuthMiddlewareFunc(handler.auth, user.RoleTraveler, user.RoleAdmin)

	mux.HandleFunc("POST /trips/{trip_id}/sessions", traveler(handler.handleStartSession))
	mux.HandleFunc("DELETE /trips/{trip_id}/sessions", traveler(handler.handleEndSession))

	mux.HandleFunc("GET /trips/{trip_id}/map", traveler(handler.handleMap))
	mux.HandleFunc("GET /trips/{trip_id}/map.geojson", traveler(handler.handleMapGeoJSON))
	mux.HandleFunc("GET /trips/{trip_id}/route", traveler(handler.handleRouteDetail))

	mux.HandleFunc("POST /trips/{trip_id}/location", traveler(handler.handlePushLocation))
	mux.HandleFunc("POST /trips/{trip_id}/focus", traveler(handler.handleCycleFocus))
	mux.HandleFunc("POST /trips/{trip_id}/show-all", traveler(handler.handleShowAll))
	mux.HandleFunc("POST /trips/{trip_id}/gesture", traveler(handler.handleGesture))

	// WebSocket authenticates with its first frame
	mux.HandleFunc("GET /ws/trips/{trip_id}", handler.websocket.ConnectTrip)

	mux.HandleFunc("GET /health", handler.handleHealth)
	mux.HandleFunc("POST /tokens", handler.handleCreateToken)
}

// ----- general helpers -----

type TokenRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	TripID string `json:"trip_id,omitempty"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Role      user.Role `json:"role"`
	TripID    string    `json:"trip_id,omitempty"`
}

// handleCreateToken generates JWT tokens for testing
func (handler *TrackingHTTPHandler) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "user_id is required", nil)
		return
	}
	role, err := user.ParseRole(req.Role)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "role must be TRAVELER or ADMIN", err)
		return
	}

	tokenString, claims, err := handler.auth.IssueUserToken(req.UserID, role, req.TripID)
	if err != nil {
		handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	response := TokenResponse{
		Token:     tokenString,
		ExpiresAt: claims.ExpiresAt.Time,
		UserID:    req.UserID,
		Role:      role,
		TripID:    claims.TripID,
	}

	handler.logger.Info(ctx, "token_generated", "JWT token generated successfully",
		map[string]any{"user_id": req.UserID, "role": role.String(), "trip_id": claims.TripID})

	handler.jsonResponse(ctx, w, http.StatusCreated, response)
}

// tripContext reads {trip_id} and tags the request context with it.
func (handler *TrackingHTTPHandler) tripContext(w http.ResponseWriter, r *http.Request) (context.Context, string, bool) {
	ctx := handler.withReqID(r.Context(), r)
	tripID := strings.TrimSpace(r.PathValue("trip_id"))
	if tripID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing trip_id in path", nil)
		return ctx, "", false
	}
	return handler.logger.WithTripID(ctx, tripID), tripID, true
}

// decodeJSON decodes a strict JSON body of at most 1 MiB into dst.
func (handler *TrackingHTTPHandler) decodeJSON(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.httpError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return false
		}
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON body", err)
		return false
	}
	return true
}

// serviceError maps a service failure to an HTTP status.
func (handler *TrackingHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	var routeErr *trip.RouteError
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, trip.ErrEmptyKeyword):
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, service.ErrSessionNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, "no tracking session for this trip", err)
	case errors.Is(err, trip.ErrNoDestinations):
		handler.httpError(ctx, w, http.StatusUnprocessableEntity, "none of the destinations could be found", err)
	case errors.As(err, &routeErr):
		handler.httpError(ctx, w, http.StatusBadGateway, "route provider failed", err)
	case errors.Is(err, context.DeadlineExceeded):
		handler.httpError(ctx, w, http.StatusGatewayTimeout, "request timed out", err)
	default:
		handler.httpError(ctx, w, http.StatusInternalServerError, "internal error", err)
	}
}

// jsonResponse takes any type of data and encode it to HTTP response.
func (handler *TrackingHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	// encode to buffer first so we can control status on failure
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// httpError sends a JSON error response with a message.
func (handler *TrackingHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	} else if status == http.StatusUnsupportedMediaType {
		action = "unsupported_media_type"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *TrackingHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

// randID generates a random 24-char hex string suitable for request IDs.
func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"trip-tracker/internal/domain/user"
	"trip-tracker/internal/general/jwt"
	"trip-tracker/internal/general/logger"
	"trip-tracker/internal/ports"
)

const (
	wsWriteTimeout   = 5 * time.Second
	wsCloseAckWindow = 2 * time.Second
	ctrlTimeout      = 5 * time.Second
	authTimeout      = 10 * time.Second
	readIdleTimeout  = 60 * time.Second
	pingInterval     = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// WebSocket serves the live trip view over /ws/trips/{trip_id}.
type WebSocket struct {
	logger     *logger.Logger
	jwtMgr     *jwt.Manager
	svc        ports.TrackingService
	writeLocks sync.Map
}

// NewWebSocket creates a WebSocket handler with JWT first-frame auth.
func NewWebSocket(logger *logger.Logger, jwtMgr *jwt.Manager, svc ports.TrackingService) *WebSocket {
	return &WebSocket{logger: logger, jwtMgr: jwtMgr, svc: svc}
}

// ConnectTrip authenticates the client, then pushes a trip_view frame on
// every state change and applies the frames the client sends.
func (ws *WebSocket) ConnectTrip(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("trip_id")
	ctx := ws.logger.WithTripID(r.Context(), tripID)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Error(ctx, "websocket_upgrade_failed", "Failed to upgrade to WebSocket", err, nil)
		return
	}
	// LIFO: forget the write lock, then close the socket
	defer conn.Close()
	defer ws.writeLocks.Delete(conn)

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(authTimeout))

	msgType, firstFrame, err := conn.ReadMessage()
	if err != nil {
		ws.logger.Error(ctx, "ws_auth_read_failed", "Failed to read auth message", err, nil)
		_ = ws.sendAuthError(conn, "authentication timeout: send the auth message first")
		return
	}
	if msgType != websocket.TextMessage {
		_ = ws.sendAuthError(conn, "auth message must be in text format")
		return
	}

	res, err := jwt.ValidateWSAuth(firstFrame, ws.jwtMgr, tripID, user.RoleTraveler, user.RoleAdmin)
	if err != nil {
		ws.logger.Error(ctx, "ws_auth_failed", "Invalid auth message or token", err, nil)
		_ = ws.sendAuthError(conn, "authentication failed: "+err.Error())
		return
	}

	changes, stopWatch, err := ws.svc.Watch(ctx, tripID)
	if err != nil {
		ws.logger.Error(ctx, "ws_watch_failed", "No tracking session for trip", err, nil)
		_ = ws.sendAuthError(conn, err.Error())
		return
	}
	defer stopWatch()

	if err := ws.sendAuthSuccess(conn, tripID, res.Claims.Subject); err != nil {
		ws.logger.Error(ctx, "ws_auth_success_failed", "Failed to send auth success message", err, nil)
		return
	}
	ws.logger.Info(ctx, "ws_connected", "Trip WebSocket connected",
		map[string]any{"user_id": res.Claims.Subject, "role": res.Claims.Role.String()})

	_ = conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
	conn.SetPongHandler(func(_ string) error {
		return conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
	})

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ws.pingLoop(connCtx, conn)
	}()
	go func() {
		defer wg.Done()
		ws.pushLoop(connCtx, conn, tripID, changes)
	}()

	ws.readLoop(connCtx, conn, tripID)
	cancel()
	wg.Wait()
}

// pingLoop keeps the connection alive until ctx ends or a ping fails.
func (ws *WebSocket) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mu := ws.lockOf(conn)
			mu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctrlTimeout))
			mu.Unlock()
			if err != nil {
				// closing unblocks the reader
				_ = conn.Close()
				ws.logger.Error(ctx, "ws_ping_failed", "Failed to send ping", err, nil)
				return
			}
		}
	}
}

// pushLoop sends the current view, then a fresh one on every change signal.
// A closed change channel means the session ended.
func (ws *WebSocket) pushLoop(ctx context.Context, conn *websocket.Conn, tripID string, changes <-chan struct{}) {
	if err := ws.pushView(ctx, conn, tripID); err != nil {
		_ = conn.Close()
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				ws.wsWriteClose(conn, websocket.CloseNormalClosure, "session ended")
				_ = conn.Close()
				return
			}
			if err := ws.pushView(ctx, conn, tripID); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

func (ws *WebSocket) readLoop(ctx context.Context, conn *websocket.Conn, tripID string) {
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.logger.Error(ctx, "ws_unexpected_close", "Trip connection closed unexpectedly", err, nil)
			} else {
				ws.logger.Info(ctx, "ws_connection_closed", "Trip connection closed", nil)
			}
			return
		}

		if err := ws.handleFrame(ctx, tripID, payload); err != nil {
			ws.logger.Error(ctx, "ws_frame_failed", "Failed to handle client frame", err, nil)
			_ = ws.sendError(conn, err.Error())
		}
	}
}

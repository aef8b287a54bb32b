package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"trip-tracker/internal/general/contracts"
)

// wsWriteClose sends a close control frame with the given code and reason.
func (ws *WebSocket) wsWriteClose(conn *websocket.Conn, code int, reason string) {
	mu := ws.lockOf(conn)
	mu.Lock()
	defer mu.Unlock()

	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(wsCloseAckWindow),
	)
}

// lockOf returns the write mutex of conn; gorilla allows one writer at a time.
func (ws *WebSocket) lockOf(conn *websocket.Conn) *sync.Mutex {
	if v, ok := ws.writeLocks.Load(conn); ok {
		return v.(*sync.Mutex)
	}
	actual, _ := ws.writeLocks.LoadOrStore(conn, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// writeJSON marshals v and writes a single TextMessage to conn.
func (ws *WebSocket) writeJSON(conn *websocket.Conn, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	mu := ws.lockOf(conn)
	mu.Lock()
	defer mu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

type authReply struct {
	Type      string `json:"type"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	TripID    string `json:"trip_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

func (ws *WebSocket) sendAuthError(conn *websocket.Conn, message string) error {
	return ws.writeJSON(conn, authReply{Type: "auth_error", Error: message})
}

func (ws *WebSocket) sendAuthSuccess(conn *websocket.Conn, tripID, userID string) error {
	return ws.writeJSON(conn, authReply{
		Type:      "auth_success",
		Success:   true,
		Message:   "Authentication successful",
		TripID:    tripID,
		UserID:    userID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (ws *WebSocket) sendError(conn *websocket.Conn, message string) error {
	return ws.writeJSON(conn, contracts.WSError{Type: contracts.WSTypeError, Message: message})
}

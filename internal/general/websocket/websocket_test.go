package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/domain/user"
	"trip-tracker/internal/general/jwt"
	"trip-tracker/internal/general/logger"
	"trip-tracker/internal/ports"
)

// fakeService implements ports.TrackingService for one trip.
type fakeService struct {
	ports.TrackingService

	mu      sync.Mutex
	calls   []string
	pushed  []ports.PushLocationInput
	changes chan struct{}
	version uint64
	unknown bool
}

func newFakeService() *fakeService {
	return &fakeService{changes: make(chan struct{}, 1)}
}

func (f *fakeService) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.version++
	f.mu.Unlock()
}

func (f *fakeService) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeService) Watch(ctx context.Context, tripID string) (<-chan struct{}, func(), error) {
	if f.unknown {
		return nil, nil, errors.New("no tracking session")
	}
	return f.changes, func() {}, nil
}

func (f *fakeService) Map(ctx context.Context, tripID string) (ports.MapView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ports.MapView{TripID: tripID, Version: f.version}, nil
}

func (f *fakeService) RouteDetail(ctx context.Context, tripID string) (ports.RouteDetailView, error) {
	return ports.RouteDetailView{TripID: tripID}, nil
}

func (f *fakeService) CycleFocus(ctx context.Context, tripID string) (trip.FocusMode, error) {
	f.record("focus")
	return trip.FocusCenter, nil
}

func (f *fakeService) SetShowAll(ctx context.Context, tripID string, showAll bool) error {
	if showAll {
		f.record("show_all")
	}
	return nil
}

func (f *fakeService) Gesture(ctx context.Context, tripID string) (trip.FocusMode, error) {
	f.record("gesture")
	return trip.FocusOff, nil
}

func (f *fakeService) PushLocation(ctx context.Context, in ports.PushLocationInput) error {
	f.mu.Lock()
	f.pushed = append(f.pushed, in)
	f.mu.Unlock()
	f.record("location")
	return nil
}

type harness struct {
	svc *fakeService
	mgr *jwt.Manager
	url string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	svc := newFakeService()
	mgr := jwt.NewManager("secret", time.Hour)
	ws := NewWebSocket(logger.Discard(), mgr, svc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/trips/{trip_id}", ws.ConnectTrip)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &harness{svc: svc, mgr: mgr, url: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/trips/"}
}

func (h *harness) dial(t *testing.T, tripID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(h.url+tripID, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (h *harness) auth(t *testing.T, conn *websocket.Conn, tripID string) {
	t.Helper()
	token, _, err := h.mgr.IssueUserToken("u-1", user.RoleTraveler, tripID)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(map[string]string{"type": "auth", "token": "Bearer " + token}); err != nil {
		t.Fatal(err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame map[string]json.RawMessage
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func frameType(frame map[string]json.RawMessage) string {
	var typ string
	_ = json.Unmarshal(frame["type"], &typ)
	return typ
}

func TestConnectTrip_PushesViewsAndAppliesFrames(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "trip-1")
	h.auth(t, conn, "trip-1")

	if got := frameType(readFrame(t, conn)); got != "auth_success" {
		t.Fatalf("first frame = %q, want auth_success", got)
	}
	view := readFrame(t, conn)
	if frameType(view) != "trip_view" {
		t.Fatalf("second frame = %q, want trip_view", frameType(view))
	}
	var data TripView
	if err := json.Unmarshal(view["data"], &data); err != nil || data.Map.TripID != "trip-1" {
		t.Fatalf("trip view = %s (%v)", view["data"], err)
	}

	frames := []string{
		`{"type":"focus_toggle"}`,
		`{"type":"show_all","data":{"show_all":true}}`,
		`{"type":"gesture"}`,
		`{"type":"location","data":{"latitude":10.5,"longitude":106.7,"heading_degrees":90}}`,
	}
	for _, f := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(h.svc.recorded()) < len(frames) {
		if time.Now().After(deadline) {
			t.Fatalf("calls = %v", h.svc.recorded())
		}
		time.Sleep(5 * time.Millisecond)
	}
	want := []string{"focus", "show_all", "gesture", "location"}
	for i, c := range h.svc.recorded() {
		if c != want[i] {
			t.Errorf("call %d = %s, want %s", i, c, want[i])
		}
	}
	h.svc.mu.Lock()
	pushed := h.svc.pushed[0]
	h.svc.mu.Unlock()
	if pushed.TripID != "trip-1" || pushed.Latitude != 10.5 || pushed.RecordedAt.IsZero() {
		t.Errorf("pushed = %+v", pushed)
	}

	h.svc.changes <- struct{}{}
	if got := frameType(readFrame(t, conn)); got != "trip_view" {
		t.Errorf("frame after change = %q, want trip_view", got)
	}
}

func TestConnectTrip_UnknownFrame(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "trip-1")
	h.auth(t, conn, "trip-1")
	readFrame(t, conn)
	readFrame(t, conn)

	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"teleport"}`))
	if got := frameType(readFrame(t, conn)); got != "error" {
		t.Errorf("frame = %q, want error", got)
	}
}

func TestConnectTrip_AuthFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
		frame func(h *harness) string
	}{
		{
			name:  "garbage",
			frame: func(h *harness) string { return `nope` },
		},
		{
			name: "token for another trip",
			frame: func(h *harness) string {
				token, _, _ := h.mgr.IssueUserToken("u-1", user.RoleTraveler, "trip-2")
				return `{"type":"auth","token":"Bearer ` + token + `"}`
			},
		},
		{
			name:  "no session",
			setup: func(h *harness) { h.svc.unknown = true },
			frame: func(h *harness) string {
				token, _, _ := h.mgr.IssueUserToken("u-1", user.RoleTraveler, "trip-1")
				return `{"type":"auth","token":"Bearer ` + token + `"}`
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.setup != nil {
				tt.setup(h)
			}
			conn := h.dial(t, "trip-1")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(tt.frame(h)))
			if got := frameType(readFrame(t, conn)); got != "auth_error" {
				t.Errorf("frame = %q, want auth_error", got)
			}
		})
	}
}

func TestHandleFrame_Errors(t *testing.T) {
	ws := NewWebSocket(logger.Discard(), jwt.NewManager("s", time.Hour), newFakeService())
	ctx := context.Background()

	if err := ws.handleFrame(ctx, "t", []byte(`{"type":"dance"}`)); !errors.Is(err, ErrUnknownFrame) {
		t.Errorf("err = %v, want ErrUnknownFrame", err)
	}
	if err := ws.handleFrame(ctx, "t", []byte(`{`)); err == nil {
		t.Error("bad json should fail")
	}
	if err := ws.handleFrame(ctx, "t", []byte(`{"type":"location","data":"x"}`)); err == nil {
		t.Error("bad location payload should fail")
	}
}

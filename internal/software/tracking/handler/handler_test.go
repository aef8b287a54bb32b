package handler

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

	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/domain/user"
	"trip-tracker/internal/general/jwt"
	"trip-tracker/internal/general/logger"
	"trip-tracker/internal/general/websocket"
	"trip-tracker/internal/ports"
	"trip-tracker/internal/software/tracking/service"
)

type fakeService struct {
	ports.TrackingService

	mu       sync.Mutex
	startErr error
	existing bool
	started  []ports.StartSessionInput
	pushed   []ports.PushLocationInput
	showAll  []bool
	missing  bool
}

func (f *fakeService) StartSession(_ context.Context, in ports.StartSessionInput) (ports.SessionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, in)
	if f.startErr != nil {
		return ports.SessionResult{}, f.startErr
	}
	return ports.SessionResult{SessionID: "s1", TripID: in.TripID, AlreadyExist: f.existing}, nil
}

func (f *fakeService) EndSession(context.Context, string) error {
	if f.missing {
		return service.ErrSessionNotFound
	}
	return nil
}

func (f *fakeService) Map(_ context.Context, tripID string) (ports.MapView, error) {
	if f.missing {
		return ports.MapView{}, service.ErrSessionNotFound
	}
	return ports.MapView{TripID: tripID, Focus: trip.FocusOff}, nil
}

func (f *fakeService) MapGeoJSON(context.Context, string) ([]byte, error) {
	return []byte(`{"type":"FeatureCollection","features":[]}`), nil
}

func (f *fakeService) PushLocation(_ context.Context, in ports.PushLocationInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, in)
	return nil
}

func (f *fakeService) SetShowAll(_ context.Context, _ string, showAll bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.showAll = append(f.showAll, showAll)
	return nil
}

func (f *fakeService) CycleFocus(context.Context, string) (trip.FocusMode, error) {
	return trip.FocusCenter, nil
}

type harness struct {
	svc  *fakeService
	auth *jwt.Manager
	mux  *http.ServeMux
}

func newHarness(t *testing.T, health HealthCheck) *harness {
	t.Helper()
	svc := &fakeService{}
	auth := jwt.NewManager("test-secret", time.Hour)
	log := logger.Discard()
	h := NewTrackingHTTPHandler(svc, log, auth, websocket.NewWebSocket(log, auth, svc), health)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return &harness{svc: svc, auth: auth, mux: mux}
}

func (h *harness) token(t *testing.T, role user.Role, tripID string) string {
	t.Helper()
	tok, _, err := h.auth.IssueUserToken("u1", role, tripID)
	if err != nil {
		t.Fatalf("IssueUserToken() error = %v", err)
	}
	return tok
}

func (h *harness) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	return rec
}

func TestStartSession(t *testing.T) {
	const body = `{"destinations":[{"keyword":"museum","scheduled_time":"10:00"},{"keyword":"park"}]}`

	tests := []struct {
		name     string
		token    func(h *harness, t *testing.T) string
		body     string
		startErr error
		existing bool
		want     int
	}{
		{"no token", func(*harness, *testing.T) string { return "" }, body, nil, false, http.StatusUnauthorized},
		{"other trip", func(h *harness, t *testing.T) string { return h.token(t, user.RoleTraveler, "t2") }, body, nil, false, http.StatusForbidden},
		{"created", func(h *harness, t *testing.T) string { return h.token(t, user.RoleTraveler, "t1") }, body, nil, false, http.StatusCreated},
		{"admin any trip", func(h *harness, t *testing.T) string { return h.token(t, user.RoleAdmin, "") }, body, nil, false, http.StatusCreated},
		{"already running", func(h *harness, t *testing.T) string { return h.token(t, user.RoleTraveler, "") }, body, nil, true, http.StatusOK},
		{"empty destinations", func(h *harness, t *testing.T) string { return h.token(t, user.RoleTraveler, "") }, `{"destinations":[]}`, nil, false, http.StatusBadRequest},
		{"missing keyword", func(h *harness, t *testing.T) string { return h.token(t, user.RoleTraveler, "") }, `{"destinations":[{"scheduled_time":"9"}]}`, nil, false, http.StatusBadRequest},
		{"unknown field", func(h *harness, t *testing.T) string { return h.token(t, user.RoleTraveler, "") }, `{"stops":[]}`, nil, false, http.StatusBadRequest},
		{"nothing resolved", func(h *harness, t *testing.T) string { return h.token(t, user.RoleTraveler, "") }, body, trip.ErrNoDestinations, false, http.StatusUnprocessableEntity},
		{"provider down", func(h *harness, t *testing.T) string { return h.token(t, user.RoleTraveler, "") }, body, &trip.RouteError{Reason: "boom"}, false, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.svc.startErr = tt.startErr
			h.svc.existing = tt.existing

			rec := h.do(http.MethodPost, "/trips/t1/sessions", tt.token(h, t), tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want == http.StatusCreated {
				if len(h.svc.started) != 1 || h.svc.started[0].TripID != "t1" || len(h.svc.started[0].Destinations) != 2 {
					t.Errorf("service got %+v", h.svc.started)
				}
				if got := h.svc.started[0].Destinations[0].ScheduledTime; got != "10:00" {
					t.Errorf("scheduled_time = %q", got)
				}
			}
		})
	}
}

func TestStartSession_RequiresJSON(t *testing.T) {
	h := newHarness(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/trips/t1/sessions", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer "+h.token(t, user.RoleTraveler, ""))
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

func TestSessionNotFound(t *testing.T) {
	h := newHarness(t, nil)
	h.svc.missing = true
	tok := h.token(t, user.RoleTraveler, "")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/trips/t1/map"},
		{http.MethodDelete, "/trips/t1/sessions"},
	} {
		rec := h.do(tc.method, tc.path, tok, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want 404", tc.method, tc.path, rec.Code)
		}
	}
}

func TestViews(t *testing.T) {
	h := newHarness(t, nil)
	tok := h.token(t, user.RoleTraveler, "t1")

	rec := h.do(http.MethodGet, "/trips/t1/map", tok, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("map status = %d", rec.Code)
	}
	var view ports.MapView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil || view.TripID != "t1" {
		t.Errorf("map body = %s (%v)", rec.Body.String(), err)
	}

	rec = h.do(http.MethodGet, "/trips/t1/map.geojson", tok, "")
	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("geojson content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "FeatureCollection") {
		t.Errorf("geojson body = %s", rec.Body.String())
	}

	rec = h.do(http.MethodDelete, "/trips/t1/sessions", tok, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("end status = %d, want 204", rec.Code)
	}
}

func TestPushLocation(t *testing.T) {
	h := newHarness(t, nil)
	tok := h.token(t, user.RoleTraveler, "t1")

	tests := []struct {
		name   string
		body   string
		want   int
		denied bool
	}{
		{"fix", `{"latitude":1.5,"longitude":2.5,"speed_kmh":30,"recorded_at":"2024-01-01T10:00:00Z"}`, http.StatusAccepted, false},
		{"denied", `{"permission":"denied"}`, http.StatusAccepted, true},
		{"bad permission", `{"permission":"maybe"}`, http.StatusBadRequest, false},
		{"bad json", `{"latitude":`, http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(h.svc.pushed)
			rec := h.do(http.MethodPost, "/trips/t1/location", tok, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want != http.StatusAccepted {
				if len(h.svc.pushed) != before {
					t.Error("rejected request reached the service")
				}
				return
			}
			got := h.svc.pushed[len(h.svc.pushed)-1]
			if got.TripID != "t1" || got.PermissionDenied != tt.denied {
				t.Errorf("pushed %+v", got)
			}
			if !tt.denied && (got.SpeedKMH == nil || *got.SpeedKMH != 30 || got.RecordedAt.Hour() != 10) {
				t.Errorf("fix fields lost: %+v", got)
			}
		})
	}
}

func TestControls(t *testing.T) {
	h := newHarness(t, nil)
	tok := h.token(t, user.RoleTraveler, "t1")

	rec := h.do(http.MethodPost, "/trips/t1/focus", tok, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"focus":"center"`) {
		t.Errorf("focus = %d %s", rec.Code, rec.Body.String())
	}

	if rec := h.do(http.MethodPost, "/trips/t1/show-all", tok, `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("show-all without value status = %d, want 400", rec.Code)
	}
	if rec := h.do(http.MethodPost, "/trips/t1/show-all", tok, `{"show_all":false}`); rec.Code != http.StatusOK {
		t.Errorf("show-all status = %d", rec.Code)
	}
	if len(h.svc.showAll) != 1 || h.svc.showAll[0] {
		t.Errorf("SetShowAll calls = %v, want [false]", h.svc.showAll)
	}
}

func TestCreateToken(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(http.MethodPost, "/tokens", "", `{"user_id":"u9","role":"traveler","trip_id":"t1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var resp TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	_, claims, err := h.auth.ParseAndValidate(resp.Token)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.Role != user.RoleTraveler || claims.TripID != "t1" || claims.Subject != "u9" {
		t.Errorf("claims = %+v", claims)
	}

	if rec := h.do(http.MethodPost, "/tokens", "", `{"user_id":"u9","role":"driver"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown role status = %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		health HealthCheck
		want   int
	}{
		{"no checks", nil, http.StatusOK},
		{"healthy", func(context.Context) error { return nil }, http.StatusOK},
		{"db down", func(context.Context) error { return errors.New("connection refused") }, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.health)
			if rec := h.do(http.MethodGet, "/health", "", ""); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

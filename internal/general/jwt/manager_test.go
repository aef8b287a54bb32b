package jwt

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trip-tracker/internal/domain/user"
)

func TestManager_IssueAndValidate(t *testing.T) {
	mgr := NewManager("secret", time.Hour)

	token, claims, err := mgr.IssueUserToken("u-1", user.RoleTraveler, "trip-1")
	if err != nil {
		t.Fatalf("IssueUserToken: %v", err)
	}
	if claims.Subject != "u-1" || claims.TripID != "trip-1" {
		t.Errorf("claims = %+v", claims)
	}

	_, parsed, err := mgr.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if parsed.Role != user.RoleTraveler || parsed.TripID != "trip-1" {
		t.Errorf("parsed = %+v", parsed)
	}

	if _, _, err := NewManager("other", time.Hour).ParseAndValidate(token); err == nil {
		t.Error("token signed with another secret must not validate")
	}
	if _, _, err := mgr.IssueUserToken("u-1", user.Role("DRIVER"), ""); err == nil {
		t.Error("unknown role must be rejected")
	}
}

func TestManager_Expired(t *testing.T) {
	mgr := NewManager("secret", -time.Minute)
	token, _, err := mgr.IssueUserToken("u-1", user.RoleAdmin, "")
	if err != nil {
		t.Fatalf("IssueUserToken: %v", err)
	}
	if _, _, err := mgr.ParseAndValidate(token); err == nil {
		t.Error("expired token must not validate")
	}
}

func TestTripAllowed(t *testing.T) {
	tests := []struct {
		name   string
		claims Claims
		trip   string
		want   error
	}{
		{name: "scoped traveler", claims: Claims{Role: user.RoleTraveler, TripID: "a"}, trip: "a"},
		{name: "other trip", claims: Claims{Role: user.RoleTraveler, TripID: "a"}, trip: "b", want: ErrTripForbidden},
		{name: "unscoped traveler", claims: Claims{Role: user.RoleTraveler}, trip: "b"},
		{name: "admin", claims: Claims{Role: user.RoleAdmin, TripID: "a"}, trip: "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := TripAllowed(&tt.claims, tt.trip); !errors.Is(err, tt.want) {
				t.Errorf("TripAllowed = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	mgr := NewManager("secret", time.Hour)
	traveler, _, _ := mgr.IssueUserToken("u-1", user.RoleTraveler, "trip-1")
	admin, _, _ := mgr.IssueUserToken("u-2", user.RoleAdmin, "")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /trips/{trip_id}/map", AuthMiddlewareFunc(mgr, user.RoleTraveler)(func(w http.ResponseWriter, r *http.Request) {
		if RequireClaims(r) == nil {
			t.Error("claims missing from context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "no token", path: "/trips/trip-1/map", want: http.StatusUnauthorized},
		{name: "garbage", path: "/trips/trip-1/map", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "ok", path: "/trips/trip-1/map", header: "Bearer " + traveler, want: http.StatusNoContent},
		{name: "wrong trip", path: "/trips/trip-2/map", header: "Bearer " + traveler, want: http.StatusForbidden},
		{name: "wrong role", path: "/trips/trip-1/map", header: "Bearer " + admin, want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestValidateWSAuth(t *testing.T) {
	mgr := NewManager("secret", time.Hour)
	token, _, _ := mgr.IssueUserToken("u-1", user.RoleTraveler, "trip-1")

	tests := []struct {
		name  string
		frame string
		trip  string
		want  error
	}{
		{name: "ok", frame: `{"type":"auth","token":"Bearer ` + token + `"}`, trip: "trip-1"},
		{name: "not json", frame: `nope`, trip: "trip-1", want: ErrBadAuthMsg},
		{name: "wrong type", frame: `{"type":"location","token":"Bearer ` + token + `"}`, trip: "trip-1", want: ErrBadAuthMsg},
		{name: "no bearer", frame: `{"type":"auth","token":"` + token + `"}`, trip: "trip-1", want: ErrBadTokenWrap},
		{name: "other trip", frame: `{"type":"auth","token":"Bearer ` + token + `"}`, trip: "trip-2", want: ErrTripForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ValidateWSAuth([]byte(tt.frame), mgr, tt.trip, user.RoleTraveler, user.RoleAdmin)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if err == nil && res.Claims.Subject != "u-1" {
				t.Errorf("subject = %s", res.Claims.Subject)
			}
		})
	}
}

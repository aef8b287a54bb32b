package cli

import (
	"strings"
	"testing"
	"time"

	"trip-tracker/internal/domain/user"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantMode string
		wantRest []string
		wantErr  bool
	}{
		{"flag", []string{"--mode=tracking-service", "--broker=false"}, ModeTracking, []string{"--broker=false"}, false},
		{"alias flag", []string{"--mode=sim", "--trip=t1"}, ModeSimulator, []string{"--trip=t1"}, false},
		{"subcommand", []string{"tracking", "--max-concurrent=5"}, ModeTracking, []string{"--max-concurrent=5"}, false},
		{"missing", []string{"--max-concurrent=5"}, "", nil, true},
		{"unknown", []string{"--mode=ride-service"}, "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, rest, err := ParseMode(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if mode != tt.wantMode {
				t.Errorf("mode = %q, want %q", mode, tt.wantMode)
			}
			if strings.Join(rest, " ") != strings.Join(tt.wantRest, " ") {
				t.Errorf("rest = %v, want %v", rest, tt.wantRest)
			}
		})
	}
}

func TestGenerateUserToken(t *testing.T) {
	token, claims, err := GenerateUserToken("secret", "traveler-1", "traveler", "t-42", time.Hour)
	if err != nil {
		t.Fatalf("GenerateUserToken() error = %v", err)
	}
	if token == "" || claims.Role != user.RoleTraveler || claims.TripID != "t-42" || claims.Subject != "traveler-1" {
		t.Errorf("token=%q claims=%+v", token, claims)
	}

	if _, _, err := GenerateUserToken("secret", "u", "DRIVER", "", time.Hour); err == nil {
		t.Error("expected an error for an unknown role")
	}
	if _, _, err := GenerateUserToken("secret", "u", "ADMIN", "", 0); err == nil {
		t.Error("expected an error for a zero ttl")
	}
}

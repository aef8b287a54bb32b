package cli

import (
	"fmt"
	"time"

	"trip-tracker/internal/domain/user"
	"trip-tracker/internal/general/jwt"
)

// GenerateUserToken mints a JWT for local testing. An empty tripID gives a
// token valid for every trip.
//
// Typical use (dev-only):
//
//	token, _, err := cli.GenerateUserToken(secret, "traveler-1", "TRAVELER", "t-42", 2*time.Hour)
//
// Keep this package dev/internal only. Do not call it from production code paths.
func GenerateUserToken(secret, userID, roleStr, tripID string, ttl time.Duration) (string, jwt.Claims, error) {
	role, err := user.ParseRole(roleStr)
	if err != nil {
		return "", jwt.Claims{}, fmt.Errorf("invalid role %q: %w", roleStr, err)
	}
	if ttl <= 0 {
		return "", jwt.Claims{}, fmt.Errorf("ttl must be positive, got %s", ttl)
	}

	mgr := jwt.NewManager(secret, ttl)

	token, claims, err := mgr.IssueUserToken(userID, role, tripID)
	if err != nil {
		return "", jwt.Claims{}, fmt.Errorf("issue token: %w", err)
	}

	return token, *claims, nil
}

package jwt

import (
	"time"

	"trip-tracker/internal/domain/user"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload. TripID scopes a traveler token to one trip;
// empty means any trip.
type Claims struct {
	Role   user.Role `json:"role"`
	TripID string    `json:"trip_id,omitempty"`
	jwtlib.RegisteredClaims
}

var _ jwtlib.Claims = (*Claims)(nil)

// NewUserClaims constructs traveler or admin claims.
func NewUserClaims(userID string, role user.Role, tripID string, ttl time.Duration) *Claims {
	now := time.Now().UTC()
	return &Claims{
		Role:   role,
		TripID: tripID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
}

package entity

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims identifies the caller. The token is the only identity source the
// API trusts; there is no password or session state behind it.
type JWTClaims struct {
	UserID uuid.UUID `json:"user_id"`

	jwt.RegisteredClaims
}

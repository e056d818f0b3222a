package utils

import (
	"errors"
	"time"

	entity "game-exchange/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenIssuer signs and verifies HS256 bearer tokens carrying a user id.
type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
	Issuer string

	now func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration, issuer string) *TokenIssuer {
	return &TokenIssuer{Secret: []byte(secret), TTL: ttl, Issuer: issuer, now: time.Now}
}

func (t *TokenIssuer) clock() time.Time {
	if t.now == nil {
		return time.Now()
	}
	return t.now()
}

func (t *TokenIssuer) GenerateToken(userID uuid.UUID) (string, error) {
	now := t.clock()
	claims := &entity.JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    t.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.Secret)
}

func (t *TokenIssuer) ValidateToken(tokenString string) (*entity.JWTClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.clock),
	}
	if t.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &entity.JWTClaims{}, func(*jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*entity.JWTClaims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionClaims is the JWT payload of a session credential. Subject carries
// the user id; nothing else is asserted, so a session stays valid across
// profile changes and the server keeps no session table.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// Sessions mints and validates stateless session credentials.
type Sessions struct {
	signingKey []byte
	issuer     string
	duration   time.Duration
}

// NewSessions creates a session issuer with a fixed validity window.
func NewSessions(signingKey []byte, issuer string, duration time.Duration) *Sessions {
	return &Sessions{
		signingKey: signingKey,
		issuer:     issuer,
		duration:   duration,
	}
}

// Duration returns the validity window, which also bounds the cookie age.
func (s *Sessions) Duration() time.Duration {
	return s.duration
}

// Mint returns a signed credential asserting the given user id. No
// server-side record is created.
func (s *Sessions) Mint(userID primitive.ObjectID) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Validate parses a credential and returns the asserted user id. Malformed
// input never panics; failures are ErrSessionExpired or ErrSessionInvalid.
func (s *Sessions) Validate(credential string) (primitive.ObjectID, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if s.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(credential, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return primitive.NilObjectID, ErrSessionExpired
		}
		return primitive.NilObjectID, ErrSessionInvalid
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return primitive.NilObjectID, ErrSessionInvalid
	}

	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, ErrSessionInvalid
	}
	return userID, nil
}

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/triplog/triplog/internal/model"
)

const rawTokenBytes = 32

// TokenStore is the persistence surface the issuer needs.
type TokenStore interface {
	Replace(ctx context.Context, token *model.ActionToken, purpose model.TokenPurpose) error
	FindLive(ctx context.Context, digest string, purpose model.TokenPurpose) (*model.ActionToken, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ActionTokens issues and resolves single-use action tokens. The stored form
// is a SHA-256 digest; a fast hash is deliberate here since the input carries
// full cryptographic entropy already, unlike a password.
type ActionTokens struct {
	store TokenStore
	now   func() time.Time
}

// NewActionTokens creates a token issuer over the given store.
func NewActionTokens(store TokenStore) *ActionTokens {
	return &ActionTokens{store: store, now: time.Now}
}

// Issue generates a fresh raw token for (user, purpose), replacing any prior
// unexpired token for the same pair, and returns the raw form. Only the
// digest is persisted; the raw token travels in the delivered link and
// nowhere else.
func (a *ActionTokens) Issue(ctx context.Context, userID primitive.ObjectID, purpose model.TokenPurpose, ttl time.Duration) (string, error) {
	buf := make([]byte, rawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	raw := hex.EncodeToString(buf)

	now := a.now()
	token := &model.ActionToken{
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	switch purpose {
	case model.PurposePasswordReset:
		token.PasswordResetToken = Digest(raw)
	default:
		token.VerificationToken = Digest(raw)
	}

	if err := a.store.Replace(ctx, token, purpose); err != nil {
		return "", err
	}
	return raw, nil
}

// Resolve looks up the live token matching the raw value. Never-issued,
// expired, and consumed tokens all come back as ErrTokenInvalid so a caller
// (or an attacker probing the endpoint) cannot tell them apart.
func (a *ActionTokens) Resolve(ctx context.Context, raw string, purpose model.TokenPurpose) (*model.ActionToken, error) {
	if raw == "" {
		return nil, ErrTokenInvalid
	}

	token, err := a.store.FindLive(ctx, Digest(raw), purpose)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if !token.Live(a.now()) {
		return nil, ErrTokenInvalid
	}
	return token, nil
}

// Redeem deletes a resolved token, ending its single use.
func (a *ActionTokens) Redeem(ctx context.Context, token *model.ActionToken) error {
	return a.store.Delete(ctx, token.ID)
}

// Digest returns the stored form of a raw action token.
func Digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

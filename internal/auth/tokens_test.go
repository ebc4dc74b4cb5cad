package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/triplog/triplog/internal/auth"
	"github.com/triplog/triplog/internal/model"
)

func TestActionTokensIssueAndResolve(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewActionTokens(newMemTokenStore())
	userID := primitive.NewObjectID()

	raw, err := tokens.Issue(ctx, userID, model.PurposeVerification, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	token, err := tokens.Resolve(ctx, raw, model.PurposeVerification)
	require.NoError(t, err)
	assert.Equal(t, userID, token.UserID)

	// only the digest is stored, never the raw token
	assert.NotEqual(t, raw, token.VerificationToken)
	assert.Equal(t, auth.Digest(raw), token.VerificationToken)
	assert.Empty(t, token.PasswordResetToken)
}

func TestActionTokensWrongPurpose(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewActionTokens(newMemTokenStore())

	raw, err := tokens.Issue(ctx, primitive.NewObjectID(), model.PurposeVerification, time.Hour)
	require.NoError(t, err)

	_, err = tokens.Resolve(ctx, raw, model.PurposePasswordReset)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestActionTokensReissueInvalidatesPrior(t *testing.T) {
	ctx := context.Background()
	storeFake := newMemTokenStore()
	tokens := auth.NewActionTokens(storeFake)
	userID := primitive.NewObjectID()

	first, err := tokens.Issue(ctx, userID, model.PurposePasswordReset, time.Hour)
	require.NoError(t, err)

	second, err := tokens.Issue(ctx, userID, model.PurposePasswordReset, time.Hour)
	require.NoError(t, err)

	// one live token per (user, purpose)
	assert.Equal(t, 1, storeFake.count())

	_, err = tokens.Resolve(ctx, first, model.PurposePasswordReset)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	_, err = tokens.Resolve(ctx, second, model.PurposePasswordReset)
	assert.NoError(t, err)
}

func TestActionTokensPurposesDoNotReplaceEachOther(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewActionTokens(newMemTokenStore())
	userID := primitive.NewObjectID()

	verify, err := tokens.Issue(ctx, userID, model.PurposeVerification, time.Hour)
	require.NoError(t, err)

	reset, err := tokens.Issue(ctx, userID, model.PurposePasswordReset, time.Hour)
	require.NoError(t, err)

	_, err = tokens.Resolve(ctx, verify, model.PurposeVerification)
	assert.NoError(t, err)

	_, err = tokens.Resolve(ctx, reset, model.PurposePasswordReset)
	assert.NoError(t, err)
}

func TestActionTokensSingleUse(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewActionTokens(newMemTokenStore())

	raw, err := tokens.Issue(ctx, primitive.NewObjectID(), model.PurposeVerification, time.Hour)
	require.NoError(t, err)

	token, err := tokens.Resolve(ctx, raw, model.PurposeVerification)
	require.NoError(t, err)
	require.NoError(t, tokens.Redeem(ctx, token))

	_, err = tokens.Resolve(ctx, raw, model.PurposeVerification)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestActionTokensExpired(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewActionTokens(newMemTokenStore())

	raw, err := tokens.Issue(ctx, primitive.NewObjectID(), model.PurposeVerification, -time.Second)
	require.NoError(t, err)

	// never consumed, but past its TTL
	_, err = tokens.Resolve(ctx, raw, model.PurposeVerification)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestActionTokensEmptyRaw(t *testing.T) {
	tokens := auth.NewActionTokens(newMemTokenStore())

	_, err := tokens.Resolve(context.Background(), "", model.PurposeVerification)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

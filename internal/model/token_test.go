package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/triplog/triplog/internal/model"
)

func TestTokenPurposeField(t *testing.T) {
	assert.Equal(t, "verificationToken", model.PurposeVerification.Field())
	assert.Equal(t, "passwordResetToken", model.PurposePasswordReset.Field())
}

func TestActionTokenLive(t *testing.T) {
	now := time.Now()
	token := &model.ActionToken{ExpiresAt: now.Add(time.Hour)}

	assert.True(t, token.Live(now))
	assert.True(t, token.Live(now.Add(59*time.Minute)))
	assert.False(t, token.Live(now.Add(time.Hour)))
	assert.False(t, token.Live(now.Add(2*time.Hour)))
}

package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenPurpose discriminates the two kinds of action tokens.
type TokenPurpose string

const (
	// PurposeVerification authorizes flipping the email verification flag.
	PurposeVerification TokenPurpose = "verification"
	// PurposePasswordReset authorizes replacing a forgotten password.
	PurposePasswordReset TokenPurpose = "passwordReset"
)

// Field returns the document field that carries the token digest for this
// purpose. The two fields are mutually exclusive on a stored document.
func (p TokenPurpose) Field() string {
	if p == PurposePasswordReset {
		return "passwordResetToken"
	}
	return "verificationToken"
}

// ActionToken is a single-use, time-limited proof backing email verification
// and password reset. Only the SHA-256 digest of the raw token is stored;
// the raw value exists transiently in the delivered link.
type ActionToken struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	UserID             primitive.ObjectID `bson:"userId"`
	VerificationToken  string             `bson:"verificationToken,omitempty"`
	PasswordResetToken string             `bson:"passwordResetToken,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt"`
	ExpiresAt          time.Time          `bson:"expiresAt"`
}

// Live reports whether the token is still within its validity window.
func (t *ActionToken) Live(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}

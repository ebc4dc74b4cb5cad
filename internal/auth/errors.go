package auth

import "errors"

// ErrNotFound is the error we return for unknown identities or emails.
var ErrNotFound = errors.New("user not found")

// ErrEmailTaken is the error for registration against an existing email.
var ErrEmailTaken = errors.New("user already exists")

// ErrInvalidCredential is the error for a password that does not match.
var ErrInvalidCredential = errors.New("invalid password")

// ErrTokenInvalid covers missing, expired, and already consumed action
// tokens. The three states are deliberately indistinguishable to the caller.
var ErrTokenInvalid = errors.New("invalid or expired token")

// ErrAlreadyVerified is the error for verification of a verified account.
var ErrAlreadyVerified = errors.New("user is already verified")

// ErrPasswordTooShort rejects secrets under the minimum length.
var ErrPasswordTooShort = errors.New("password must be at least 6 characters")

// ErrDelivery is the error when the email collaborator fails. Any token
// issued before the failure stays valid; a retry issues a fresh one.
var ErrDelivery = errors.New("email could not be sent")

// ErrUnauthorized is the error for a missing or unusable session.
var ErrUnauthorized = errors.New("not authorized, please login")

// ErrSessionExpired is the error for a session past its validity window.
var ErrSessionExpired = errors.New("session expired")

// ErrSessionInvalid is the error for malformed or badly signed sessions.
var ErrSessionInvalid = errors.New("invalid session")

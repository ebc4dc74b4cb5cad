// Package auth implements the credential lifecycle: registration, session
// issuance, email verification, and password management, plus the request
// gate that protects feature routes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/triplog/triplog/internal/mailer"
	"github.com/triplog/triplog/internal/model"
	"github.com/triplog/triplog/internal/store"
)

const minPasswordLen = 6

// UserStore is the persistence surface the service needs for accounts.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Service orchestrates the credential lifecycle. It is the only component
// with business logic; stores, token issuer, session issuer, and mail
// delivery are injected collaborators. Safe for concurrent use: no state is
// mutated after construction and no lock is held across store calls.
type Service struct {
	users    UserStore
	tokens   *ActionTokens
	sessions *Sessions
	mail     mailer.Sender
	logger   *logrus.Logger

	clientURL       string
	verificationTTL time.Duration
	resetTTL        time.Duration
}

// ServiceOptions carries the collaborators and tunables for NewService.
type ServiceOptions struct {
	Users           UserStore
	Tokens          *ActionTokens
	Sessions        *Sessions
	Mail            mailer.Sender
	Logger          *logrus.Logger
	ClientURL       string
	VerificationTTL time.Duration
	ResetTTL        time.Duration
}

// NewService wires up a lifecycle service.
func NewService(opts ServiceOptions) *Service {
	if opts.VerificationTTL <= 0 {
		opts.VerificationTTL = 24 * time.Hour
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	return &Service{
		users:           opts.Users,
		tokens:          opts.Tokens,
		sessions:        opts.Sessions,
		mail:            opts.Mail,
		logger:          opts.Logger,
		clientURL:       opts.ClientURL,
		verificationTTL: opts.VerificationTTL,
		resetTTL:        opts.ResetTTL,
	}
}

// Sessions exposes the session issuer for the middleware layer.
func (s *Service) Sessions() *Sessions {
	return s.sessions
}

// Users exposes the user store for the middleware layer.
func (s *Service) Users() UserStore {
	return s.users
}

// Register creates an account and mints a session for it. The account starts
// unverified with the default role.
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	if len(password) < minPasswordLen {
		return nil, "", ErrPasswordTooShort
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:       name,
		Email:      email,
		Password:   hash,
		Bio:        model.DefaultBio,
		Role:       model.RoleUser,
		IsVerified: false,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	session, err := s.sessions.Mint(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.WithField("user", user.ID.Hex()).Info("user registered")
	return user, session, nil
}

// Login verifies the credentials and mints a session.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	if err := ComparePasswordAndHash(password, user.Password); err != nil {
		return nil, "", ErrInvalidCredential
	}

	session, err := s.sessions.Mint(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, session, nil
}

// RequestVerification issues a verification token for the user and mails the
// confirmation link. A delivery failure does not roll the token back; the
// next request replaces it anyway.
func (s *Service) RequestVerification(ctx context.Context, user *model.User) error {
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	raw, err := s.tokens.Issue(ctx, user.ID, model.PurposeVerification, s.verificationTTL)
	if err != nil {
		return err
	}

	msg := mailer.Message{
		To:       user.Email,
		Subject:  "Email Verification - Triplog",
		Template: mailer.TemplateEmailVerification,
		Variables: map[string]any{
			"name": user.Name,
			"link": fmt.Sprintf("%s/verify-email/%s", s.clientURL, raw),
		},
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.WithError(err).WithField("user", user.ID.Hex()).Error("verification email failed")
		return ErrDelivery
	}
	return nil
}

// ConfirmVerification consumes a verification token and flips the flag,
// exactly once, false to true.
func (s *Service) ConfirmVerification(ctx context.Context, rawToken string) error {
	token, err := s.tokens.Resolve(ctx, rawToken, model.PurposeVerification)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		return ErrTokenInvalid
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	user.IsVerified = true
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if err := s.tokens.Redeem(ctx, token); err != nil {
		s.logger.WithError(err).Warn("could not delete consumed verification token")
	}

	s.logger.WithField("user", user.ID.Hex()).Info("email verified")
	return nil
}

// RequestPasswordReset issues a reset token for the account behind the email
// and mails the reset link. Unknown emails return ErrNotFound; this mirrors
// the observed behavior even though it lets a caller probe for registered
// addresses.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	raw, err := s.tokens.Issue(ctx, user.ID, model.PurposePasswordReset, s.resetTTL)
	if err != nil {
		return err
	}

	msg := mailer.Message{
		To:       user.Email,
		Subject:  "Password Reset - Triplog",
		Template: mailer.TemplateForgotPassword,
		Variables: map[string]any{
			"name": user.Name,
			"link": fmt.Sprintf("%s/reset-password/%s", s.clientURL, raw),
		},
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.WithError(err).WithField("user", user.ID.Hex()).Error("reset email failed")
		return ErrDelivery
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token and stores the new secret. The
// resolved account's email must match the supplied one; a correct token with
// the wrong email mutates nothing and keeps the token live for a later,
// correct attempt within the TTL.
func (s *Service) ConfirmPasswordReset(ctx context.Context, rawToken, email, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return ErrPasswordTooShort
	}

	token, err := s.tokens.Resolve(ctx, rawToken, model.PurposePasswordReset)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil || !strings.EqualFold(user.Email, email) {
		return ErrNotFound
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if err := s.tokens.Redeem(ctx, token); err != nil {
		s.logger.WithError(err).Warn("could not delete consumed reset token")
	}

	s.logger.WithField("user", user.ID.Hex()).Info("password reset")
	return nil
}

// ChangePassword replaces the secret after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, user *model.User, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return ErrPasswordTooShort
	}

	if err := ComparePasswordAndHash(currentPassword, user.Password); err != nil {
		return ErrInvalidCredential
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash

	return s.users.Update(ctx, user)
}

// UpdateProfile applies the editable profile fields. Role is not among them;
// it only changes through administrative tooling.
func (s *Service) UpdateProfile(ctx context.Context, user *model.User, name, photo, bio string) (*model.User, error) {
	if name != "" {
		user.Name = name
	}
	if photo != "" {
		user.Photo = photo
	}
	if bio != "" {
		user.Bio = bio
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns every account, for creator and admin views.
func (s *Service) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx)
}

// DeleteUser removes an account by id. Admin-gated at the route layer.
func (s *Service) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.logger.WithField("user", id.Hex()).Info("user deleted")
	return nil
}

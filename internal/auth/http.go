package auth

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/triplog/triplog/internal/model"
)

// Controller exposes the credential lifecycle over HTTP.
type Controller struct {
	service *Service
	gate    *Gate
	logger  *logrus.Logger
}

// NewController builds the auth controller.
func NewController(service *Service, gate *Gate, logger *logrus.Logger) *Controller {
	return &Controller{service: service, gate: gate, logger: logger}
}

// RegisterRoutes mounts the credential routes on the given router.
func (a *Controller) RegisterRoutes(r fiber.Router) {
	r.Post("/register", a.Register)
	r.Post("/login", a.Login)
	r.Get("/logout", a.Logout)
	r.Get("/login-status", a.LoginStatus)

	r.Get("/user", a.gate.Protected(), a.GetUser)
	r.Patch("/user", a.gate.Protected(), a.UpdateUser)

	r.Delete("/admin/users/:id", a.gate.Protected(), a.gate.RequireAdmin(), a.DeleteUser)
	r.Get("/users", a.gate.Protected(), a.gate.RequireCreator(), a.ListUsers)

	r.Post("/verify-email", a.gate.Protected(), a.RequestVerification)
	r.Post("/verify-user/:verificationToken", a.ConfirmVerification)

	r.Post("/forgot-password", a.ForgotPassword)
	r.Post("/reset-password/:token", a.ResetPassword)
	r.Patch("/change-password", a.gate.Protected(), a.ChangePassword)
}

// authResponse is the body for register and login: the public identity view
// plus the session credential, which also travels in the cookie.
type authResponse struct {
	model.PublicUser
	Token string `json:"token"`
}

// RegisterPayload is the registration body.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (p RegisterPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(6, 100)),
	)
}

// Register handles POST /register.
func (a *Controller) Register(c *fiber.Ctx) error {
	payload := new(RegisterPayload)
	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "All fields are required")
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	user, session, err := a.service.Register(c.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		return err
	}

	a.gate.WriteSessionCookie(c, session)
	return c.Status(fiber.StatusCreated).JSON(authResponse{
		PublicUser: user.Public(),
		Token:      session,
	})
}

// LoginPayload is the login body.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

// Login handles POST /login.
func (a *Controller) Login(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "All fields are required")
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	user, session, err := a.service.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	a.gate.WriteSessionCookie(c, session)
	return c.JSON(authResponse{
		PublicUser: user.Public(),
		Token:      session,
	})
}

// Logout handles GET /logout. Stateless, cannot fail.
func (a *Controller) Logout(c *fiber.Ctx) error {
	a.gate.ClearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "User logged out"})
}

// LoginStatus handles GET /login-status: 401 without a cookie, otherwise a
// bare boolean for whether the credential still validates.
func (a *Controller) LoginStatus(c *fiber.Ctx) error {
	credential := c.Cookies(SessionCookie)
	if credential == "" {
		return ErrUnauthorized
	}

	if _, err := a.service.Sessions().Validate(credential); err != nil {
		return c.JSON(false)
	}
	return c.JSON(true)
}

// GetUser handles GET /user.
func (a *Controller) GetUser(c *fiber.Ctx) error {
	return c.JSON(CurrentUser(c).Public())
}

// UpdateUserPayload is the profile patch body. Role is deliberately absent;
// accounts cannot promote themselves.
type UpdateUserPayload struct {
	Name  string `json:"name"`
	Photo string `json:"photo"`
	Bio   string `json:"bio"`
}

// Validate will validate the payload
func (p UpdateUserPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Length(0, 200)),
		validation.Field(&p.Bio, validation.Length(0, 2000)),
	)
}

// UpdateUser handles PATCH /user.
func (a *Controller) UpdateUser(c *fiber.Ctx) error {
	payload := new(UpdateUserPayload)
	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	user, err := a.service.UpdateProfile(c.Context(), CurrentUser(c), payload.Name, payload.Photo, payload.Bio)
	if err != nil {
		return err
	}
	return c.JSON(user.Public())
}

// DeleteUser handles DELETE /admin/users/:id.
func (a *Controller) DeleteUser(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return ErrNotFound
	}

	if err := a.service.DeleteUser(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// ListUsers handles GET /users.
func (a *Controller) ListUsers(c *fiber.Ctx) error {
	users, err := a.service.ListUsers(c.Context())
	if err != nil {
		return err
	}

	views := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		views = append(views, u.Public())
	}
	return c.JSON(views)
}

// RequestVerification handles POST /verify-email.
func (a *Controller) RequestVerification(c *fiber.Ctx) error {
	if err := a.service.RequestVerification(c.Context(), CurrentUser(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Verification email sent successfully"})
}

// ConfirmVerification handles POST /verify-user/:verificationToken.
func (a *Controller) ConfirmVerification(c *fiber.Ctx) error {
	if err := a.service.ConfirmVerification(c.Context(), c.Params("verificationToken")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User verified"})
}

// ForgotPasswordPayload is the reset request body.
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

// Validate will validate the payload
func (p ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

// ForgotPassword handles POST /forgot-password.
func (a *Controller) ForgotPassword(c *fiber.Ctx) error {
	payload := new(ForgotPasswordPayload)
	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Email is required")
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	if err := a.service.RequestPasswordReset(c.Context(), payload.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password reset email sent successfully"})
}

// ResetPasswordPayload is the reset confirmation body. The email must match
// the account the token resolves to.
type ResetPasswordPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (p ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(6, 100)),
	)
}

// ResetPassword handles POST /reset-password/:token.
func (a *Controller) ResetPassword(c *fiber.Ctx) error {
	payload := new(ResetPasswordPayload)
	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required fields")
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	if err := a.service.ConfirmPasswordReset(c.Context(), c.Params("token"), payload.Email, payload.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

// ChangePasswordPayload is the password change body.
type ChangePasswordPayload struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Validate will validate the payload
func (p ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.CurrentPassword, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(6, 100)),
	)
}

// ChangePassword handles PATCH /change-password.
func (a *Controller) ChangePassword(c *fiber.Ctx) error {
	payload := new(ChangePasswordPayload)
	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "All fields are required")
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	if err := a.service.ChangePassword(c.Context(), CurrentUser(c), payload.CurrentPassword, payload.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

// ErrorHandler maps service failures to HTTP statuses with a JSON message
// body. Nothing internal leaks: unexpected errors collapse to a generic 500.
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		var validationErr validation.Errors

		switch {
		case errors.As(err, &fiberErr):
			return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		case errors.As(err, &validationErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": validationErr.Error()})
		case errors.Is(err, ErrUnauthorized),
			errors.Is(err, ErrSessionExpired),
			errors.Is(err, ErrSessionInvalid):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": ErrUnauthorized.Error()})
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrEmailTaken),
			errors.Is(err, ErrInvalidCredential),
			errors.Is(err, ErrTokenInvalid),
			errors.Is(err, ErrAlreadyVerified),
			errors.Is(err, ErrPasswordTooShort):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrDelivery):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		default:
			logger.WithError(err).Error("unhandled request error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
		}
	}
}

package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/triplog/triplog/internal/model"
)

// SessionCookie is the cookie carrying the session credential.
const SessionCookie = "token"

const localsUserKey = "currentUser"

// CurrentUser returns the identity the gate resolved for this request, or
// nil on routes that are not behind Protected.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(localsUserKey).(*model.User)
	return user
}

// Gate validates inbound session credentials and enforces role and
// verification checks before feature logic runs.
type Gate struct {
	sessions *Sessions
	users    UserStore
	secure   bool
}

// NewGate builds the request gate. secure toggles the Secure cookie flag and
// should be on outside local development.
func NewGate(sessions *Sessions, users UserStore, secure bool) *Gate {
	return &Gate{sessions: sessions, users: users, secure: secure}
}

// WriteSessionCookie attaches the session credential to the response.
func (g *Gate) WriteSessionCookie(c *fiber.Ctx, credential string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    credential,
		Path:     "/",
		MaxAge:   int(g.sessions.Duration() / time.Second),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   g.secure,
	})
}

// ClearSessionCookie expires the session cookie. Logout cannot fail; the
// credential itself stays valid until its window closes, the client just
// stops holding it.
func (g *Gate) ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   g.secure,
	})
}

// Protected rejects requests without a usable session, loads the identity,
// and stashes it for downstream handlers.
func (g *Gate) Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		credential := c.Cookies(SessionCookie)
		if credential == "" {
			return ErrUnauthorized
		}

		userID, err := g.sessions.Validate(credential)
		if err != nil {
			return ErrUnauthorized
		}

		// The account may be gone even though the credential still
		// verifies; sessions are stateless and outlive deletions.
		user, err := g.users.FindByID(c.Context(), userID)
		if err != nil {
			return ErrUnauthorized
		}

		c.Locals(localsUserKey, user)
		return c.Next()
	}
}

// RequireAdmin allows only admin accounts past. Layer after Protected.
func (g *Gate) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "Only admins can do this!")
		}
		return c.Next()
	}
}

// RequireCreator allows creator and admin accounts past. Layer after
// Protected.
func (g *Gate) RequireCreator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsCreator() {
			return fiber.NewError(fiber.StatusForbidden, "Only creators can do this!")
		}
		return c.Next()
	}
}

// RequireVerified allows only verified accounts past. Layer after Protected.
func (g *Gate) RequireVerified() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsVerified {
			return fiber.NewError(fiber.StatusForbidden, "Please verify your email address!")
		}
		return c.Next()
	}
}

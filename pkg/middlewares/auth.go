package middleware

import (
	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/session"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the auth middleware
const (
	LocalsSession   = "session"
	LocalsSessionID = "sessionID"
)

type AuthMiddleware struct {
	store      session.Store
	cookieName string
	log        *utils.Logger
}

func NewAuthMiddleware(cfg *config.Config, store session.Store, log *utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		store:      store,
		cookieName: cfg.Session.CookieName,
		log:        log,
	}
}

// RequireSession loads the session referenced by the cookie and puts it
// in locals. Requests without a valid session are sent to the login page.
func (m *AuthMiddleware) RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(m.cookieName)
		if id == "" {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}

		sess, err := m.store.Get(c.Context(), id)
		if err != nil {
			if err != session.ErrNotFound {
				m.log.WithError(err).Warn("Session lookup failed")
			}
			c.ClearCookie(m.cookieName)
			return c.Redirect("/login", fiber.StatusSeeOther)
		}

		c.Locals(LocalsSession, sess)
		c.Locals(LocalsSessionID, id)
		return c.Next()
	}
}

// RedirectIfAuthenticated sends logged-in users straight to the
// dashboard; used on the login and signup pages.
func (m *AuthMiddleware) RedirectIfAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(m.cookieName)
		if id == "" {
			return c.Next()
		}
		if _, err := m.store.Get(c.Context(), id); err != nil {
			return c.Next()
		}
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
}

// SessionFrom returns the session stored in locals by RequireSession
func SessionFrom(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(LocalsSession).(*session.Session)
	return sess
}

// SessionIDFrom returns the cookie value for the current session
func SessionIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsSessionID).(string)
	return id
}

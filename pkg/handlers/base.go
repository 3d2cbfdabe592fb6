package handlers

import (
	"errors"

	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/backend"
	middleware "github.com/scanctum/scanctum-web/pkg/middlewares"
	"github.com/scanctum/scanctum-web/pkg/session"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// Base carries what every page handler needs to react to an expired
// token: any 401 from the backend clears the session and forces the
// browser back to the login page, whichever page triggered the call.
type Base struct {
	store      session.Store
	cookieName string
	log        *utils.Logger
}

func NewBase(cfg *config.Config, store session.Store, log *utils.Logger) Base {
	return Base{
		store:      store,
		cookieName: cfg.Session.CookieName,
		log:        log,
	}
}

// ForceLogout destroys the current session and redirects to /login
func (b *Base) ForceLogout(c *fiber.Ctx) error {
	if id := middleware.SessionIDFrom(c); id != "" {
		if err := b.store.Delete(c.Context(), id); err != nil {
			b.log.WithError(err).Warn("Failed to delete session")
		}
	}
	c.ClearCookie(b.cookieName)
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// IsUnauthorized reports whether an error is the backend's 401
func IsUnauthorized(err error) bool {
	return errors.Is(err, backend.ErrUnauthorized)
}

// BackendDetail extracts the backend-provided message for inline form
// display, or a generic fallback.
func BackendDetail(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return "The request could not be completed. Please try again."
}

package handlers

import (
	"time"

	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/interfaces"
	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/session"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler serves the login and signup pages and manages sessions
type AuthHandler struct {
	Base
	backend    interfaces.BackendServiceInterface
	sessionTTL time.Duration
}

func NewAuthHandler(backend interfaces.BackendServiceInterface, cfg *config.Config, store session.Store, log *utils.Logger) *AuthHandler {
	return &AuthHandler{
		Base:       NewBase(cfg, store, log),
		backend:    backend,
		sessionTTL: time.Duration(cfg.Session.TTLHours) * time.Hour,
	}
}

// ShowLogin renders the login form
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"Title": "Sign In",
		"Email": "",
	})
}

// Login exchanges form credentials for a backend token and starts a
// session. Failures re-render the form with the backend's message.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	if email == "" || password == "" {
		return c.Status(fiber.StatusBadRequest).Render("login", fiber.Map{
			"Title": "Sign In",
			"Error": "Email and password are required.",
			"Email": email,
		})
	}

	resp, err := h.backend.Login(c.Context(), email, password)
	if err != nil {
		h.log.WithFunc().WithField("email", email).Warn("Login failed")
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{
			"Title": "Sign In",
			"Error": BackendDetail(err),
			"Email": email,
		})
	}

	return h.startSession(c, resp)
}

// ShowSignup renders the signup form
func (h *AuthHandler) ShowSignup(c *fiber.Ctx) error {
	return c.Render("signup", fiber.Map{
		"Title":    "Create Account",
		"Email":    "",
		"FullName": "",
	})
}

// Signup creates an account and logs the new user straight in
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")
	fullName := c.FormValue("full_name")

	if email == "" || password == "" || fullName == "" {
		return c.Status(fiber.StatusBadRequest).Render("signup", fiber.Map{
			"Title":    "Create Account",
			"Error":    "All fields are required.",
			"Email":    email,
			"FullName": fullName,
		})
	}

	resp, err := h.backend.Signup(c.Context(), email, password, fullName)
	if err != nil {
		h.log.WithFunc().WithField("email", email).Warn("Signup failed")
		return c.Status(fiber.StatusBadRequest).Render("signup", fiber.Map{
			"Title":    "Create Account",
			"Error":    BackendDetail(err),
			"Email":    email,
			"FullName": fullName,
		})
	}

	return h.startSession(c, resp)
}

// Logout clears the session and returns to the login page
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.log.WithFunc().Debug("Logging out")
	return h.ForceLogout(c)
}

// startSession persists token and user together, sets the cookie and
// lands the user on the dashboard.
func (h *AuthHandler) startSession(c *fiber.Ctx, resp *models.LoginResponse) error {
	id, err := h.store.Create(c.Context(), session.Session{
		Token: resp.AccessToken,
		User:  resp.User,
	})
	if err != nil {
		h.log.WithFunc().WithError(err).Error("Failed to create session")
		return c.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{
			"Title": "Error",
			"Error": "Could not start a session. Please try again.",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    id,
		Expires:  time.Now().Add(h.sessionTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	h.log.WithFunc().WithField("user", resp.User.Email).Info("User logged in")
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

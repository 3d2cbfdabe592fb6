package handlers

import (
	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/interfaces"
	middleware "github.com/scanctum/scanctum-web/pkg/middlewares"
	"github.com/scanctum/scanctum-web/pkg/session"
	"github.com/scanctum/scanctum-web/pkg/utils"
	"github.com/scanctum/scanctum-web/pkg/version"

	"github.com/gofiber/fiber/v2"
)

// SettingsHandler serves the account and environment page
type SettingsHandler struct {
	Base
	backend interfaces.BackendServiceInterface
}

func NewSettingsHandler(backend interfaces.BackendServiceInterface, cfg *config.Config, store session.Store, log *utils.Logger) *SettingsHandler {
	return &SettingsHandler{
		Base:    NewBase(cfg, store, log),
		backend: backend,
	}
}

// DisplaySettings renders the current user, API endpoint and backend
// version compatibility.
func (h *SettingsHandler) DisplaySettings(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)

	compatible, backendVersion, err := h.backend.CheckCompatibility(c.Context())
	if err != nil {
		h.log.WithFunc().WithError(err).Warn("Backend compatibility check failed")
		backendVersion = "unreachable"
		compatible = false
	}
	if backendVersion == "" {
		backendVersion = "unknown"
	}

	return c.Render("settings", fiber.Map{
		"Title":          "Settings",
		"User":           sess.User,
		"APIBaseURL":     h.backend.BaseURL(),
		"BackendVersion": backendVersion,
		"Compatible":     compatible,
		"WebVersion":     version.StringWithCommit(),
	})
}

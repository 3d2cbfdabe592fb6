package handlers

import (
	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/interfaces"
	middleware "github.com/scanctum/scanctum-web/pkg/middlewares"
	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/session"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the landing page aggregates
type DashboardHandler struct {
	Base
	backend interfaces.BackendServiceInterface
}

func NewDashboardHandler(backend interfaces.BackendServiceInterface, cfg *config.Config, store session.Store, log *utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		Base:    NewBase(cfg, store, log),
		backend: backend,
	}
}

// DisplayDashboard renders stats cards, severity distribution and
// recent scans.
func (h *DashboardHandler) DisplayDashboard(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)

	stats, err := h.backend.DashboardStats(c.Context(), sess.Token)
	if err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).Error("Failed to fetch dashboard stats")
		stats = &models.DashboardStats{}
	}

	return c.Render("dashboard", fiber.Map{
		"Title": "Dashboard",
		"User":  sess.User,
		"Stats": stats,
	})
}

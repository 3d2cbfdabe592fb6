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

// VulnDBHandler serves the cross-scan vulnerability browser
type VulnDBHandler struct {
	Base
	backend interfaces.BackendServiceInterface
}

func NewVulnDBHandler(backend interfaces.BackendServiceInterface, cfg *config.Config, store session.Store, log *utils.Logger) *VulnDBHandler {
	return &VulnDBHandler{
		Base:    NewBase(cfg, store, log),
		backend: backend,
	}
}

// DisplayVulnDB renders findings across all scans with filters
func (h *VulnDBHandler) DisplayVulnDB(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)

	filter := models.VulnFilter{
		Severity: c.Query("severity"),
		OWASP:    c.Query("owasp"),
		Limit:    c.QueryInt("limit", 100),
	}

	vulns, err := h.backend.ListVulnerabilities(c.Context(), sess.Token, filter)
	if err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).Error("Failed to fetch vulnerabilities")
		vulns = nil
	}
	sortBySeverity(vulns)

	return c.Render("vulndb", fiber.Map{
		"Title":       "Vulnerability Database",
		"User":        sess.User,
		"Vulns":       vulns,
		"Filter":      filter,
		"OWASPLabels": models.OWASPLabels,
	})
}

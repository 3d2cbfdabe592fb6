package handlers

import (
	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/interfaces"
	middleware "github.com/scanctum/scanctum-web/pkg/middlewares"
	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/session"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CompareHandler serves the scan comparison pages
type CompareHandler struct {
	Base
	backend interfaces.BackendServiceInterface
}

func NewCompareHandler(backend interfaces.BackendServiceInterface, cfg *config.Config, store session.Store, log *utils.Logger) *CompareHandler {
	return &CompareHandler{
		Base:    NewBase(cfg, store, log),
		backend: backend,
	}
}

// ShowPicker renders the two-scan selection form. Only completed scans
// are meaningful to diff.
func (h *CompareHandler) ShowPicker(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)

	scans, err := h.backend.ListScans(c.Context(), sess.Token)
	if err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).Error("Failed to fetch scans for comparison")
		scans = nil
	}

	var completed []models.Scan
	for _, s := range scans {
		if s.Status == models.ScanStatusCompleted {
			completed = append(completed, s)
		}
	}

	return c.Render("compare", fiber.Map{
		"Title": "Compare Scans",
		"User":  sess.User,
		"Scans": completed,
	})
}

// PickScans redirects the form submission to the canonical URL
func (h *CompareHandler) PickScans(c *fiber.Ctx) error {
	scanA := c.FormValue("scan_a")
	scanB := c.FormValue("scan_b")
	if scanA == "" || scanB == "" || scanA == scanB {
		return c.Redirect("/compare", fiber.StatusSeeOther)
	}
	return c.Redirect("/compare/"+scanA+"/"+scanB, fiber.StatusSeeOther)
}

// DisplayComparison renders the new/fixed/unchanged findings diff
func (h *CompareHandler) DisplayComparison(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	scanA := c.Params("scan1")
	scanB := c.Params("scan2")

	comparison, err := h.backend.CompareScans(c.Context(), sess.Token, scanA, scanB)
	if err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).WithFields(logrus.Fields{
			"scanA": scanA,
			"scanB": scanB,
		}).Error("Failed to compare scans")
		return c.Status(fiber.StatusBadGateway).Render("error", fiber.Map{
			"Title": "Comparison Failed",
			"Error": "The comparison could not be loaded.",
		})
	}

	return c.Render("compare_result", fiber.Map{
		"Title":      "Comparison",
		"User":       sess.User,
		"Comparison": comparison,
	})
}

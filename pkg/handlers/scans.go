package handlers

import (
	"errors"
	"sort"

	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/backend"
	"github.com/scanctum/scanctum-web/pkg/interfaces"
	middleware "github.com/scanctum/scanctum-web/pkg/middlewares"
	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/session"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ScanHandler serves the scan list, detail and progress endpoints
type ScanHandler struct {
	Base
	backend interfaces.BackendServiceInterface
	hub     interfaces.ProgressHubInterface
}

func NewScanHandler(backend interfaces.BackendServiceInterface, hub interfaces.ProgressHubInterface, cfg *config.Config, store session.Store, log *utils.Logger) *ScanHandler {
	return &ScanHandler{
		Base:    NewBase(cfg, store, log),
		backend: backend,
		hub:     hub,
	}
}

// ListScans renders the scans page
func (h *ScanHandler) ListScans(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)

	scans, err := h.backend.ListScans(c.Context(), sess.Token)
	if err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		// Fetch failures degrade to an empty list, no error banner
		h.log.WithFunc().WithError(err).Error("Failed to fetch scans")
		scans = nil
	}

	return c.Render("scans", fiber.Map{
		"Title": "Scans",
		"User":  sess.User,
		"Scans": scans,
	})
}

// ShowNewScan renders the create-scan form
func (h *ScanHandler) ShowNewScan(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	return c.Render("scan_new", fiber.Map{
		"Title":     "New Scan",
		"User":      sess.User,
		"TargetURL": "",
	})
}

// CreateScan starts a scan and redirects to its detail page
func (h *ScanHandler) CreateScan(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)

	targetURL := c.FormValue("target_url")
	scanMode := c.FormValue("scan_mode")

	if err := utils.ValidateTargetURL(targetURL); err != nil {
		return c.Status(fiber.StatusBadRequest).Render("scan_new", fiber.Map{
			"Title":     "New Scan",
			"User":      sess.User,
			"Error":     err.Error(),
			"TargetURL": targetURL,
		})
	}
	if err := utils.ValidateScanMode(scanMode); err != nil {
		return c.Status(fiber.StatusBadRequest).Render("scan_new", fiber.Map{
			"Title":     "New Scan",
			"User":      sess.User,
			"Error":     err.Error(),
			"TargetURL": targetURL,
		})
	}

	scan, err := h.backend.CreateScan(c.Context(), sess.Token, models.ScanCreate{
		TargetURL: targetURL,
		ScanMode:  scanMode,
	})
	if err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).Error("Failed to create scan")
		return c.Status(fiber.StatusBadGateway).Render("scan_new", fiber.Map{
			"Title":     "New Scan",
			"User":      sess.User,
			"Error":     BackendDetail(err),
			"TargetURL": targetURL,
		})
	}

	h.log.WithFunc().WithFields(logrus.Fields{
		"scanID": scan.ID,
		"target": scan.TargetURL,
		"mode":   scan.ScanMode,
	}).Info("Scan created")

	return c.Redirect("/scans/"+scan.ID, fiber.StatusSeeOther)
}

// DisplayScanDetail renders one scan with its findings. Running scans
// get a live tracker; the page script polls the progress endpoint.
func (h *ScanHandler) DisplayScanDetail(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	id := c.Params("id")

	scan, err := h.backend.GetScan(c.Context(), sess.Token, id)
	if err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).WithField("scanID", id).Error("Failed to fetch scan")
		return c.Status(fiber.StatusNotFound).Render("error", fiber.Map{
			"Title": "Scan Not Found",
			"Error": "The requested scan could not be loaded.",
		})
	}

	results, err := h.backend.GetScanResults(c.Context(), sess.Token, id)
	if err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).WithField("scanID", id).Error("Failed to fetch scan results")
		results = nil
	}

	sortBySeverity(results)

	live := false
	if t := h.hub.Track(*scan, sess.Token); t != nil {
		snap := t.Snapshot()
		scan = &snap.Scan
		live = snap.Live
	}

	return c.Render("scan_detail", fiber.Map{
		"Title":   "Scan Detail",
		"User":    sess.User,
		"Scan":    scan,
		"Results": results,
		"Running": scan.IsRunning(),
		"Live":    live,
	})
}

// GetProgress serves the merged live/poll snapshot as JSON for the
// detail page's refresh script. Trackers in the hub are shared across
// sessions, so every read authorizes against the backend with the
// caller's own token before any cached state is served.
func (h *ScanHandler) GetProgress(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	id := c.Params("id")

	scan, err := h.backend.GetScan(c.Context(), sess.Token, id)
	if err != nil {
		if IsUnauthorized(err) {
			return HTTPError(c, fiber.StatusUnauthorized, "session expired")
		}
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			// Backends answer 403/404 for scans the caller may not see
			return HTTPError(c, apiErr.Status, apiErr.Detail)
		}
		return HTTPError(c, fiber.StatusBadGateway, "failed to fetch scan")
	}

	if snap, ok := h.hub.Snapshot(id); ok {
		return c.JSON(snap)
	}

	if t := h.hub.Track(*scan, sess.Token); t != nil {
		return c.JSON(t.Snapshot())
	}
	return c.JSON(fiber.Map{"scan": scan, "live": false, "degraded": false})
}

// CancelScan requests cancellation and returns to the detail page
func (h *ScanHandler) CancelScan(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	id := c.Params("id")

	if err := h.backend.CancelScan(c.Context(), sess.Token, id); err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).WithField("scanID", id).Error("Failed to cancel scan")
	} else {
		h.log.WithFunc().WithField("scanID", id).Info("Scan cancellation requested")
	}

	return c.Redirect("/scans/"+id, fiber.StatusSeeOther)
}

// sortBySeverity orders findings most severe first
func sortBySeverity(vulns []models.Vulnerability) {
	sort.SliceStable(vulns, func(i, j int) bool {
		return models.SeverityRank[vulns[i].Severity] < models.SeverityRank[vulns[j].Severity]
	})
}

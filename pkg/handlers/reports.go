package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/interfaces"
	middleware "github.com/scanctum/scanctum-web/pkg/middlewares"
	"github.com/scanctum/scanctum-web/pkg/session"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ReportHandler serves the report summary page and the export download
type ReportHandler struct {
	Base
	backend interfaces.BackendServiceInterface
	archive interfaces.ArchiveServiceInterface // nil when archiving is disabled
}

func NewReportHandler(backend interfaces.BackendServiceInterface, archive interfaces.ArchiveServiceInterface, cfg *config.Config, store session.Store, log *utils.Logger) *ReportHandler {
	return &ReportHandler{
		Base:    NewBase(cfg, store, log),
		backend: backend,
		archive: archive,
	}
}

// DisplayReport renders the report summary for a completed scan
func (h *ReportHandler) DisplayReport(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	id := c.Params("id")

	scan, err := h.backend.GetScan(c.Context(), sess.Token, id)
	if err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).WithField("scanID", id).Error("Failed to fetch scan for report")
		return c.Status(fiber.StatusNotFound).Render("error", fiber.Map{
			"Title": "Report Not Found",
			"Error": "The requested report could not be loaded.",
		})
	}

	results, err := h.backend.GetScanResults(c.Context(), sess.Token, id)
	if err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).WithField("scanID", id).Error("Failed to fetch results for report")
		results = nil
	}
	sortBySeverity(results)

	counts := map[string]int{}
	for _, v := range results {
		counts[v.Severity]++
	}

	return c.Render("report", fiber.Map{
		"Title":   "Report",
		"User":    sess.User,
		"Scan":    scan,
		"Results": results,
		"Counts":  counts,
	})
}

// DownloadReport streams the backend-generated export to the browser
// as scanctum-report-{id}.{pdf|json}, optionally mirroring it to the
// archive bucket.
func (h *ReportHandler) DownloadReport(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	id := c.Params("id")

	format := c.Query("format", "pdf")
	if format != "pdf" && format != "json" {
		return HTTPError(c, fiber.StatusBadRequest, "format must be pdf or json")
	}

	data, contentType, err := h.backend.GetReport(c.Context(), sess.Token, id, format)
	if err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).WithField("scanID", id).Error("Failed to fetch report")
		return c.Status(fiber.StatusBadGateway).Render("error", fiber.Map{
			"Title": "Download Failed",
			"Error": "The report could not be downloaded.",
		})
	}

	if contentType == "" {
		if format == "pdf" {
			contentType = "application/pdf"
		} else {
			contentType = "application/json"
		}
	}

	fileName := fmt.Sprintf("scanctum-report-%s.%s", id, format)

	if h.archive != nil {
		// Mirror in the background; the download must not wait on it
		go func(name string, body []byte, ct string) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := h.archive.ArchiveReport(ctx, name, body, ct); err != nil {
				h.log.WithFunc().WithError(err).WithField("file", name).Warn("Report archive failed")
			}
		}(fileName, data, contentType)
	}

	h.log.WithFunc().WithFields(logrus.Fields{
		"scanID": id,
		"format": format,
		"size":   len(data),
	}).Info("Report downloaded")

	c.Set("Content-Type", contentType)
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	return c.Send(data)
}

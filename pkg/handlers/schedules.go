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

// ScheduleHandler serves the recurring-scan management page
type ScheduleHandler struct {
	Base
	backend interfaces.BackendServiceInterface
}

func NewScheduleHandler(backend interfaces.BackendServiceInterface, cfg *config.Config, store session.Store, log *utils.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		Base:    NewBase(cfg, store, log),
		backend: backend,
	}
}

// DisplaySchedules renders the schedule list and create form
func (h *ScheduleHandler) DisplaySchedules(c *fiber.Ctx) error {
	return h.renderSchedules(c, "", fiber.StatusOK)
}

func (h *ScheduleHandler) renderSchedules(c *fiber.Ctx, formError string, status int) error {
	sess := middleware.SessionFrom(c)

	schedules, err := h.backend.ListSchedules(c.Context(), sess.Token)
	if err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).Error("Failed to fetch schedules")
		schedules = nil
	}

	return c.Status(status).Render("schedules", fiber.Map{
		"Title":     "Schedules",
		"User":      sess.User,
		"Schedules": schedules,
		"Presets":   models.CronPresets,
		"Error":     formError,
	})
}

// CreateSchedule registers a recurring scan from the form
func (h *ScheduleHandler) CreateSchedule(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)

	create := models.ScheduleCreate{
		TargetURL:      c.FormValue("target_url"),
		ScanMode:       c.FormValue("scan_mode"),
		CronExpression: c.FormValue("cron_expression"),
		Label:          c.FormValue("label"),
		IsActive:       c.FormValue("is_active") != "false",
	}

	// Presence checks only; scheduling semantics are the backend's
	if err := utils.ValidateTargetURL(create.TargetURL); err != nil {
		return h.renderSchedules(c, err.Error(), fiber.StatusBadRequest)
	}
	if err := utils.ValidateCronExpression(create.CronExpression); err != nil {
		return h.renderSchedules(c, err.Error(), fiber.StatusBadRequest)
	}
	if err := utils.ValidateScanMode(create.ScanMode); err != nil {
		return h.renderSchedules(c, err.Error(), fiber.StatusBadRequest)
	}

	if _, err := h.backend.CreateSchedule(c.Context(), sess.Token, create); err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).Error("Failed to create schedule")
		return h.renderSchedules(c, BackendDetail(err), fiber.StatusBadGateway)
	}

	h.log.WithFunc().WithField("target", create.TargetURL).Info("Schedule created")
	return c.Redirect("/schedules", fiber.StatusSeeOther)
}

// ToggleSchedule flips a schedule's active flag
func (h *ScheduleHandler) ToggleSchedule(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	id := c.Params("id")

	schedules, err := h.backend.ListSchedules(c.Context(), sess.Token)
	if err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).Error("Failed to fetch schedules for toggle")
		return c.Redirect("/schedules", fiber.StatusSeeOther)
	}

	for _, s := range schedules {
		if s.ID != id {
			continue
		}
		update := models.ScheduleCreate{
			TargetURL:      s.TargetURL,
			ScanMode:       s.ScanMode,
			CronExpression: s.CronExpression,
			Label:          s.Label,
			IsActive:       !s.IsActive,
		}
		if _, err := h.backend.UpdateSchedule(c.Context(), sess.Token, id, update); err != nil {
			if IsUnauthorized(err) {
				return h.ForceLogout(c)
			}
			h.log.WithFunc().WithError(err).WithField("scheduleID", id).Error("Failed to toggle schedule")
		}
		break
	}

	return c.Redirect("/schedules", fiber.StatusSeeOther)
}

// DeleteSchedule removes a schedule
func (h *ScheduleHandler) DeleteSchedule(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	id := c.Params("id")

	if err := h.backend.DeleteSchedule(c.Context(), sess.Token, id); err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).WithField("scheduleID", id).Error("Failed to delete schedule")
	} else {
		h.log.WithFunc().WithField("scheduleID", id).Info("Schedule deleted")
	}

	return c.Redirect("/schedules", fiber.StatusSeeOther)
}

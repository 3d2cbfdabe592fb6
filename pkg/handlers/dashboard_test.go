package handlers

import (
	"errors"
	"io"
	"testing"

	middleware "github.com/scanctum/scanctum-web/pkg/middlewares"
	"github.com/scanctum/scanctum-web/pkg/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDisplayDashboard_RendersStats(t *testing.T) {
	app, mockBackend, store, cfg, log := setupTestEnv(t)
	handler := NewDashboardHandler(mockBackend, cfg, store, log)
	authMW := middleware.NewAuthMiddleware(cfg, store, log)
	app.Get("/dashboard", authMW.RequireSession(), handler.DisplayDashboard)

	id := seedSession(t, store)
	mockBackend.On("DashboardStats", mock.Anything, "test-token").Return(&models.DashboardStats{
		TotalScans:           12,
		TotalVulnerabilities: 34,
	}, nil)

	resp, err := app.Test(getWithSession("/dashboard", cfg.Session.CookieName, id))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	mockBackend.AssertExpectations(t)
}

func TestDisplayDashboard_DegradesWhenStatsUnavailable(t *testing.T) {
	app, mockBackend, store, cfg, log := setupTestEnv(t)
	handler := NewDashboardHandler(mockBackend, cfg, store, log)
	authMW := middleware.NewAuthMiddleware(cfg, store, log)
	app.Get("/dashboard", authMW.RequireSession(), handler.DisplayDashboard)

	id := seedSession(t, store)
	mockBackend.On("DashboardStats", mock.Anything, "test-token").Return(nil, errors.New("connection refused"))

	resp, err := app.Test(getWithSession("/dashboard", cfg.Session.CookieName, id))

	// Fetch failures render the page with empty stats, not an error
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDisplaySettings_ShowsBackendVersion(t *testing.T) {
	app, mockBackend, store, cfg, log := setupTestEnv(t)
	handler := NewSettingsHandler(mockBackend, cfg, store, log)
	authMW := middleware.NewAuthMiddleware(cfg, store, log)
	app.Get("/settings", authMW.RequireSession(), handler.DisplaySettings)

	id := seedSession(t, store)
	mockBackend.On("CheckCompatibility", mock.Anything).Return(true, "1.4.0", nil)
	mockBackend.On("BaseURL").Return("http://localhost:8000/api/v1")

	resp, err := app.Test(getWithSession("/settings", cfg.Session.CookieName, id))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "1.4.0")
	assert.Contains(t, string(body), "true")
}

func TestDisplayVulnDB_PassesFilters(t *testing.T) {
	app, mockBackend, store, cfg, log := setupTestEnv(t)
	handler := NewVulnDBHandler(mockBackend, cfg, store, log)
	authMW := middleware.NewAuthMiddleware(cfg, store, log)
	app.Get("/vulndb", authMW.RequireSession(), handler.DisplayVulnDB)

	id := seedSession(t, store)
	mockBackend.On("ListVulnerabilities", mock.Anything, "test-token", models.VulnFilter{
		Severity: "high",
		OWASP:    "A03",
		Limit:    25,
	}).Return([]models.Vulnerability{
		{ID: "v1", Severity: models.SeverityHigh},
	}, nil)

	resp, err := app.Test(getWithSession("/vulndb?severity=high&owasp=A03&limit=25", cfg.Session.CookieName, id))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "high")
	mockBackend.AssertExpectations(t)
}

func TestDisplayComparison_RendersDiff(t *testing.T) {
	app, mockBackend, store, cfg, log := setupTestEnv(t)
	handler := NewCompareHandler(mockBackend, cfg, store, log)
	authMW := middleware.NewAuthMiddleware(cfg, store, log)
	app.Get("/compare/:scan1/:scan2", authMW.RequireSession(), handler.DisplayComparison)

	id := seedSession(t, store)
	mockBackend.On("CompareScans", mock.Anything, "test-token", "s1", "s2").Return(&models.Comparison{
		ScanAID: "s1",
		ScanBID: "s2",
		Summary: models.ComparisonSummary{New: 2, Fixed: 1},
	}, nil)

	resp, err := app.Test(getWithSession("/compare/s1/s2", cfg.Session.CookieName, id))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "2 new, 1 fixed")
	mockBackend.AssertExpectations(t)
}

func TestPickScans_RedirectsToCanonicalURL(t *testing.T) {
	app, mockBackend, store, cfg, log := setupTestEnv(t)
	handler := NewCompareHandler(mockBackend, cfg, store, log)
	authMW := middleware.NewAuthMiddleware(cfg, store, log)
	app.Post("/compare", authMW.RequireSession(), handler.PickScans)

	id := seedSession(t, store)

	resp, err := app.Test(postFormWithSession("/compare", "scan_a=s1&scan_b=s2", cfg.Session.CookieName, id))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/compare/s1/s2", resp.Header.Get("Location"))

	// Picking the same scan twice goes back to the picker
	resp, err = app.Test(postFormWithSession("/compare", "scan_a=s1&scan_b=s1", cfg.Session.CookieName, id))
	assert.NoError(t, err)
	assert.Equal(t, "/compare", resp.Header.Get("Location"))
}

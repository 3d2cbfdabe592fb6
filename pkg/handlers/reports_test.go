package handlers

import (
	"io"
	"testing"
	"time"

	middleware "github.com/scanctum/scanctum-web/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDownloadReport_NamesFile(t *testing.T) {
	app, mockBackend, store, cfg, log := setupTestEnv(t)
	handler := NewReportHandler(mockBackend, nil, cfg, store, log)
	authMW := middleware.NewAuthMiddleware(cfg, store, log)
	app.Get("/scans/:id/report/download", authMW.RequireSession(), handler.DownloadReport)

	id := seedSession(t, store)
	mockBackend.On("GetReport", mock.Anything, "test-token", "scan-1", "pdf").
		Return([]byte("%PDF-1.4 fake"), "application/pdf", nil)

	resp, err := app.Test(getWithSession("/scans/scan-1/report/download", cfg.Session.CookieName, id))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="scanctum-report-scan-1.pdf"`, resp.Header.Get("Content-Disposition"))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.4 fake", string(body))
}

func TestDownloadReport_JSONFormat(t *testing.T) {
	app, mockBackend, store, cfg, log := setupTestEnv(t)
	handler := NewReportHandler(mockBackend, nil, cfg, store, log)
	authMW := middleware.NewAuthMiddleware(cfg, store, log)
	app.Get("/scans/:id/report/download", authMW.RequireSession(), handler.DownloadReport)

	id := seedSession(t, store)
	mockBackend.On("GetReport", mock.Anything, "test-token", "scan-1", "json").
		Return([]byte(`{"findings":[]}`), "", nil)

	resp, err := app.Test(getWithSession("/scans/scan-1/report/download?format=json", cfg.Session.CookieName, id))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	// Content type falls back on the format when the backend omits it
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="scanctum-report-scan-1.json"`, resp.Header.Get("Content-Disposition"))
}

func TestDownloadReport_RejectsUnknownFormat(t *testing.T) {
	app, mockBackend, store, cfg, log := setupTestEnv(t)
	handler := NewReportHandler(mockBackend, nil, cfg, store, log)
	authMW := middleware.NewAuthMiddleware(cfg, store, log)
	app.Get("/scans/:id/report/download", authMW.RequireSession(), handler.DownloadReport)

	id := seedSession(t, store)

	resp, err := app.Test(getWithSession("/scans/scan-1/report/download?format=xml", cfg.Session.CookieName, id))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	mockBackend.AssertNotCalled(t, "GetReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDownloadReport_MirrorsToArchive(t *testing.T) {
	app, mockBackend, store, cfg, log := setupTestEnv(t)
	mockArchive := new(MockArchiveService)
	handler := NewReportHandler(mockBackend, mockArchive, cfg, store, log)
	authMW := middleware.NewAuthMiddleware(cfg, store, log)
	app.Get("/scans/:id/report/download", authMW.RequireSession(), handler.DownloadReport)

	id := seedSession(t, store)
	mockBackend.On("GetReport", mock.Anything, "test-token", "scan-1", "pdf").
		Return([]byte("%PDF-1.4 fake"), "application/pdf", nil)
	mockArchive.On("ArchiveReport", mock.Anything, "scanctum-report-scan-1.pdf", []byte("%PDF-1.4 fake"), "application/pdf").
		Return(nil)

	resp, err := app.Test(getWithSession("/scans/scan-1/report/download", cfg.Session.CookieName, id))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Wait for background mirror goroutine
	time.Sleep(100 * time.Millisecond)
	mockArchive.AssertExpectations(t)
}

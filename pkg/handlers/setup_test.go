package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/session"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/assert"
)

// Minimal templates so render paths work without the real views tree
var testTemplates = fstest.MapFS{
	"login.html":          {Data: []byte(`{{.Title}}|{{.Error}}|{{.Email}}`)},
	"signup.html":         {Data: []byte(`{{.Title}}|{{.Error}}|{{.Email}}`)},
	"dashboard.html":      {Data: []byte(`{{.Title}}`)},
	"scans.html":          {Data: []byte(`{{.Title}}|{{range .Scans}}{{.TargetURL}};{{end}}`)},
	"scan_new.html":       {Data: []byte(`{{.Title}}|{{.Error}}`)},
	"scan_detail.html":    {Data: []byte(`{{.Title}}|{{.Scan.ID}}|{{.Running}}|{{.Live}}`)},
	"report.html":         {Data: []byte(`{{.Title}}|{{.Scan.ID}}`)},
	"compare.html":        {Data: []byte(`{{.Title}}|{{range .Scans}}{{.ID}};{{end}}`)},
	"compare_result.html": {Data: []byte(`{{.Title}}|{{.Comparison.Summary.New}} new, {{.Comparison.Summary.Fixed}} fixed`)},
	"schedules.html":      {Data: []byte(`{{.Title}}|{{.Error}}`)},
	"vulndb.html":         {Data: []byte(`{{.Title}}|{{range .Vulns}}{{.Severity}};{{end}}`)},
	"assets.html":         {Data: []byte(`{{.Title}}`)},
	"settings.html":       {Data: []byte(`{{.Title}}|{{.BackendVersion}}|{{.Compatible}}`)},
	"error.html":          {Data: []byte(`{{.Title}}|{{.Error}}`)},
}

func setupTestEnv(t *testing.T) (*fiber.App, *MockBackendService, session.Store, *config.Config, *utils.Logger) {
	t.Helper()

	log := utils.NewLogger(utils.Config{LogLevel: "error"})
	cfg := config.Defaults()
	store := session.NewMemoryStore(24*time.Hour, log)

	engine := html.NewFileSystem(http.FS(testTemplates), ".html")
	app := fiber.New(fiber.Config{Views: engine})

	return app, new(MockBackendService), store, cfg, log
}

// seedSession creates a logged-in session and returns its cookie value
func seedSession(t *testing.T, store session.Store) string {
	t.Helper()
	id, err := store.Create(context.Background(), session.Session{
		Token: "test-token",
		User:  models.User{ID: "u1", Email: "user@example.com", FullName: "Test User"},
	})
	assert.NoError(t, err)
	return id
}

func getWithSession(path, cookieName, id string) *http.Request {
	req := httptest.NewRequest("GET", path, nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: id})
	return req
}

func postForm(path, form string) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postFormWithSession(path, form, cookieName, id string) *http.Request {
	req := postForm(path, form)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: id})
	return req
}

func sessionCookie(resp *http.Response, name string) string {
	for _, ck := range resp.Cookies() {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Defaults()
	cfg.API.URL = server.URL + "/api/v1"
	log := utils.NewLogger(utils.Config{LogLevel: "error"})
	return NewClient(cfg, log), server
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]models.Scan{{ID: "s1", TargetURL: "https://a.example.com"}})
	})

	scans, err := client.ListScans(context.Background(), "tok-123")

	assert.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Len(t, scans, 1)
	assert.Equal(t, "s1", scans[0].ID)
}

func TestClient_NoTokenNoAuthHeader(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(models.LoginResponse{AccessToken: "tok", User: models.User{Email: "a@b.c"}})
	})

	_, err := client.Login(context.Background(), "a@b.c", "pw")

	assert.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_UnauthorizedSentinel(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ListScans(context.Background(), "expired")

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_ParsesFastAPIDetail(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Email already registered"})
	})

	_, err := client.Signup(context.Background(), "a@b.c", "pw", "A B")

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Email already registered", apiErr.Detail)
}

func TestClient_ErrorFallsBackToRawBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})

	_, err := client.GetScan(context.Background(), "tok", "s1")

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream exploded", apiErr.Detail)
}

func TestClient_VulnerabilityFilters(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]models.Vulnerability{})
	})

	_, err := client.ListVulnerabilities(context.Background(), "tok", models.VulnFilter{
		Severity: "high",
		OWASP:    "A03",
		Limit:    50,
	})

	assert.NoError(t, err)
	assert.Contains(t, gotQuery, "severity=high")
	assert.Contains(t, gotQuery, "owasp=A03")
	assert.Contains(t, gotQuery, "limit=50")
}

func TestClient_GetReportReturnsContentType(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/reports/s1", r.URL.Path)
		assert.Equal(t, "pdf", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	})

	data, contentType, err := client.GetReport(context.Background(), "tok", "s1", "pdf")

	assert.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestWebSocketURL_SchemeRewrite(t *testing.T) {
	log := utils.NewLogger(utils.Config{LogLevel: "error"})

	cfg := config.Defaults()
	cfg.API.URL = "http://localhost:8000/api/v1"
	client := NewClient(cfg, log)
	assert.Equal(t, "ws://localhost:8000/api/v1/ws/scans/abc/progress", client.WebSocketURL("abc"))

	cfg = config.Defaults()
	cfg.API.URL = "https://scanctum.example.com/api/v1"
	client = NewClient(cfg, log)
	assert.Equal(t, "wss://scanctum.example.com/api/v1/ws/scans/abc/progress", client.WebSocketURL("abc"))
}

func TestHealth_HitsServerRoot(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": "1.4.0"})
	})

	version, err := client.Health(context.Background())

	assert.NoError(t, err)
	// The health endpoint lives at the origin, not under /api/v1
	assert.Equal(t, "/health", gotPath)
	assert.Equal(t, "1.4.0", version)
}

func TestCheckCompatibility(t *testing.T) {
	tests := []struct {
		name           string
		minVersion     string
		backendVersion string
		wantCompatible bool
	}{
		{"backend newer than minimum", "1.2.0", "1.4.0", true},
		{"backend equals minimum", "1.2.0", "1.2.0", true},
		{"backend older than minimum", "1.2.0", "1.1.9", false},
		{"no minimum configured", "", "1.0.0", true},
		{"non-semver backend version", "1.2.0", "dev-build", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": tt.backendVersion})
			})
			client.minVersion = tt.minVersion

			compatible, version, err := client.CheckCompatibility(context.Background())

			assert.NoError(t, err)
			assert.Equal(t, tt.wantCompatible, compatible)
			assert.Equal(t, tt.backendVersion, version)
		})
	}
}

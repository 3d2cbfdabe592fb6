package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"
)

// ErrUnauthorized marks a 401 from the backend. The auth middleware
// reacts by destroying the session, whichever handler hit it.
var ErrUnauthorized = errors.New("backend: unauthorized")

// APIError carries a non-401 error response from the backend
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d %s", e.Status, e.Detail)
}

// Client is the single point of HTTP egress towards the Scanctum API
type Client struct {
	baseURL    string
	minVersion string
	httpClient *http.Client
	log        *utils.Logger
}

// NewClient creates a backend client from config
func NewClient(cfg *config.Config, log *utils.Logger) *Client {
	timeout := time.Duration(cfg.API.TimeoutSeconds) * time.Second

	c := &Client{
		baseURL:    strings.TrimRight(cfg.API.URL, "/"),
		minVersion: cfg.API.MinVersion,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}

	log.WithFields(logrus.Fields{
		"baseURL": c.baseURL,
		"timeout": timeout,
	}).Info("Backend client initialized")

	return c
}

// BaseURL returns the configured API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WebSocketURL derives the per-scan progress stream URL from the API
// base URL (http -> ws, https -> wss)
func (c *Client) WebSocketURL(scanID string) string {
	wsBase := c.baseURL
	if strings.HasPrefix(wsBase, "https") {
		wsBase = "wss" + strings.TrimPrefix(wsBase, "https")
	} else if strings.HasPrefix(wsBase, "http") {
		wsBase = "ws" + strings.TrimPrefix(wsBase, "http")
	}
	return fmt.Sprintf("%s/ws/scans/%s/progress", wsBase, scanID)
}

// do performs one request against the backend. A non-empty token is
// attached as a bearer. out, when non-nil, receives the decoded JSON body.
func (c *Client) do(ctx context.Context, method, path, token string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
	}).Debug("Backend request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode backend response: %w", err)
		}
	}
	return nil
}

// errorFromResponse extracts the backend's error message. FastAPI puts
// it in "detail"; fall back to "error" or the raw body.
func (c *Client) errorFromResponse(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	detail := ""
	if err := json.Unmarshal(data, &payload); err == nil {
		detail = payload.Detail
		if detail == "" {
			detail = payload.Error
		}
	}
	if detail == "" {
		detail = strings.TrimSpace(string(data))
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Detail: detail}
}

// Login exchanges credentials for a token and user
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup creates an account and logs it in
func (c *Client) Signup(ctx context.Context, email, password, fullName string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/signup", "", models.SignupRequest{Email: email, Password: password, FullName: fullName}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListScans returns all scans visible to the token's user
func (c *Client) ListScans(ctx context.Context, token string) ([]models.Scan, error) {
	var out []models.Scan
	if err := c.do(ctx, http.MethodGet, "/scans", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateScan starts a new scan
func (c *Client) CreateScan(ctx context.Context, token string, create models.ScanCreate) (*models.Scan, error) {
	var out models.Scan
	if err := c.do(ctx, http.MethodPost, "/scans", token, create, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetScan fetches one scan by id
func (c *Client) GetScan(ctx context.Context, token, id string) (*models.Scan, error) {
	var out models.Scan
	if err := c.do(ctx, http.MethodGet, "/scans/"+id, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetScanResults fetches the findings of one scan
func (c *Client) GetScanResults(ctx context.Context, token, id string) ([]models.Vulnerability, error) {
	var out []models.Vulnerability
	if err := c.do(ctx, http.MethodGet, "/scans/"+id+"/results", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelScan requests cancellation of a running scan
func (c *Client) CancelScan(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodPost, "/scans/"+id+"/cancel", token, nil, nil)
}

// DashboardStats fetches the dashboard aggregates
func (c *Client) DashboardStats(ctx context.Context, token string) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAssets fetches per-target summaries
func (c *Client) ListAssets(ctx context.Context, token string) ([]models.AssetSummary, error) {
	var out []models.AssetSummary
	if err := c.do(ctx, http.MethodGet, "/assets", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListVulnerabilities queries the vulnerability database with filters
func (c *Client) ListVulnerabilities(ctx context.Context, token string, filter models.VulnFilter) ([]models.Vulnerability, error) {
	params := url.Values{}
	if filter.Severity != "" {
		params.Set("severity", filter.Severity)
	}
	if filter.OWASP != "" {
		params.Set("owasp", filter.OWASP)
	}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}

	path := "/vulnerabilities"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out []models.Vulnerability
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSchedules fetches all scheduled scans
func (c *Client) ListSchedules(ctx context.Context, token string) ([]models.Schedule, error) {
	var out []models.Schedule
	if err := c.do(ctx, http.MethodGet, "/schedules", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSchedule registers a recurring scan
func (c *Client) CreateSchedule(ctx context.Context, token string, create models.ScheduleCreate) (*models.Schedule, error) {
	var out models.Schedule
	if err := c.do(ctx, http.MethodPost, "/schedules", token, create, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSchedule modifies an existing schedule
func (c *Client) UpdateSchedule(ctx context.Context, token, id string, update models.ScheduleCreate) (*models.Schedule, error) {
	var out models.Schedule
	if err := c.do(ctx, http.MethodPut, "/schedules/"+id, token, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSchedule removes a schedule
func (c *Client) DeleteSchedule(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/schedules/"+id, token, nil, nil)
}

// CompareScans diffs the findings of two scans
func (c *Client) CompareScans(ctx context.Context, token, scanA, scanB string) (*models.Comparison, error) {
	var out models.Comparison
	if err := c.do(ctx, http.MethodGet, "/compare/"+scanA+"/"+scanB, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReport downloads a generated report. Returns the raw body and its
// content type; the handler streams it to the browser unchanged.
func (c *Client) GetReport(ctx context.Context, token, id, format string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/reports/%s?format=%s", c.baseURL, id, format), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, "", ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		return nil, "", c.errorFromResponse(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read report body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// Health probes the backend's liveness endpoint, which lives at the
// server root rather than under the API prefix. Returns the reported
// version when the backend exposes one.
func (c *Client) Health(ctx context.Context) (string, error) {
	origin, err := serverOrigin(c.baseURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/health", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("backend health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Status: resp.StatusCode, Detail: "health check failed"}
	}

	var payload struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode health response: %w", err)
	}
	return payload.Version, nil
}

// CheckCompatibility compares the backend-reported version against the
// configured minimum. Backends that report no version pass with
// compatible=true and an empty version string.
func (c *Client) CheckCompatibility(ctx context.Context) (compatible bool, backendVersion string, err error) {
	backendVersion, err = c.Health(ctx)
	if err != nil {
		return false, "", err
	}
	if c.minVersion == "" || backendVersion == "" {
		return true, backendVersion, nil
	}

	min, err := semver.NewVersion(c.minVersion)
	if err != nil {
		return false, backendVersion, fmt.Errorf("invalid minimum version %q: %w", c.minVersion, err)
	}
	actual, err := semver.NewVersion(backendVersion)
	if err != nil {
		// Backend reports something non-semver; don't block the UI over it
		c.log.WithField("version", backendVersion).Warn("Backend version is not semver, skipping compatibility check")
		return true, backendVersion, nil
	}

	return !actual.LessThan(min), backendVersion, nil
}

// serverOrigin strips the API prefix from a base URL, keeping scheme+host
func serverOrigin(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid API base URL: %w", err)
	}
	return u.Scheme + "://" + u.Host, nil
}

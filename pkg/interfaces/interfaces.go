package interfaces

import (
	"context"

	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/progress"
)

// BackendServiceInterface is the Scanctum API surface consumed by
// handlers. Implemented by backend.Client, mocked in tests.
type BackendServiceInterface interface {
	// Auth
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Signup(ctx context.Context, email, password, fullName string) (*models.LoginResponse, error)

	// Scans
	ListScans(ctx context.Context, token string) ([]models.Scan, error)
	CreateScan(ctx context.Context, token string, create models.ScanCreate) (*models.Scan, error)
	GetScan(ctx context.Context, token, id string) (*models.Scan, error)
	GetScanResults(ctx context.Context, token, id string) ([]models.Vulnerability, error)
	CancelScan(ctx context.Context, token, id string) error

	// Aggregates
	DashboardStats(ctx context.Context, token string) (*models.DashboardStats, error)
	ListAssets(ctx context.Context, token string) ([]models.AssetSummary, error)
	ListVulnerabilities(ctx context.Context, token string, filter models.VulnFilter) ([]models.Vulnerability, error)

	// Schedules
	ListSchedules(ctx context.Context, token string) ([]models.Schedule, error)
	CreateSchedule(ctx context.Context, token string, create models.ScheduleCreate) (*models.Schedule, error)
	UpdateSchedule(ctx context.Context, token, id string, update models.ScheduleCreate) (*models.Schedule, error)
	DeleteSchedule(ctx context.Context, token, id string) error

	// Comparison and reports
	CompareScans(ctx context.Context, token, scanA, scanB string) (*models.Comparison, error)
	GetReport(ctx context.Context, token, id, format string) ([]byte, string, error)

	// Misc
	CheckCompatibility(ctx context.Context) (compatible bool, backendVersion string, err error)
	BaseURL() string
	WebSocketURL(scanID string) string
}

// ArchiveServiceInterface mirrors exported reports to a bucket
type ArchiveServiceInterface interface {
	ArchiveReport(ctx context.Context, filename string, data []byte, contentType string) error
}

// ProgressHubInterface hands out per-scan live trackers
type ProgressHubInterface interface {
	Track(scan models.Scan, token string) *progress.Tracker
	Snapshot(scanID string) (progress.Snapshot, bool)
	Release(scanID string)
	Close()
}

// pkg/handlers/mocks.go
package handlers

import (
	"context"

	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/progress"

	"github.com/stretchr/testify/mock"
)

// MockBackendService implements BackendServiceInterface for testing
type MockBackendService struct {
	mock.Mock
}

func (m *MockBackendService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResponse), args.Error(1)
}

func (m *MockBackendService) Signup(ctx context.Context, email, password, fullName string) (*models.LoginResponse, error) {
	args := m.Called(ctx, email, password, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResponse), args.Error(1)
}

func (m *MockBackendService) ListScans(ctx context.Context, token string) ([]models.Scan, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Scan), args.Error(1)
}

func (m *MockBackendService) CreateScan(ctx context.Context, token string, create models.ScanCreate) (*models.Scan, error) {
	args := m.Called(ctx, token, create)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Scan), args.Error(1)
}

func (m *MockBackendService) GetScan(ctx context.Context, token, id string) (*models.Scan, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Scan), args.Error(1)
}

func (m *MockBackendService) GetScanResults(ctx context.Context, token, id string) ([]models.Vulnerability, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vulnerability), args.Error(1)
}

func (m *MockBackendService) CancelScan(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

func (m *MockBackendService) DashboardStats(ctx context.Context, token string) (*models.DashboardStats, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

func (m *MockBackendService) ListAssets(ctx context.Context, token string) ([]models.AssetSummary, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AssetSummary), args.Error(1)
}

func (m *MockBackendService) ListVulnerabilities(ctx context.Context, token string, filter models.VulnFilter) ([]models.Vulnerability, error) {
	args := m.Called(ctx, token, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vulnerability), args.Error(1)
}

func (m *MockBackendService) ListSchedules(ctx context.Context, token string) ([]models.Schedule, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Schedule), args.Error(1)
}

func (m *MockBackendService) CreateSchedule(ctx context.Context, token string, create models.ScheduleCreate) (*models.Schedule, error) {
	args := m.Called(ctx, token, create)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Schedule), args.Error(1)
}

func (m *MockBackendService) UpdateSchedule(ctx context.Context, token, id string, update models.ScheduleCreate) (*models.Schedule, error) {
	args := m.Called(ctx, token, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Schedule), args.Error(1)
}

func (m *MockBackendService) DeleteSchedule(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

func (m *MockBackendService) CompareScans(ctx context.Context, token, scanA, scanB string) (*models.Comparison, error) {
	args := m.Called(ctx, token, scanA, scanB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comparison), args.Error(1)
}

func (m *MockBackendService) GetReport(ctx context.Context, token, id, format string) ([]byte, string, error) {
	args := m.Called(ctx, token, id, format)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockBackendService) CheckCompatibility(ctx context.Context) (bool, string, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *MockBackendService) BaseURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockBackendService) WebSocketURL(scanID string) string {
	args := m.Called(scanID)
	return args.String(0)
}

// MockArchiveService implements ArchiveServiceInterface for testing
type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) ArchiveReport(ctx context.Context, filename string, data []byte, contentType string) error {
	args := m.Called(ctx, filename, data, contentType)
	return args.Error(0)
}

// MockProgressHub implements ProgressHubInterface for testing
type MockProgressHub struct {
	mock.Mock
}

func (m *MockProgressHub) Track(scan models.Scan, token string) *progress.Tracker {
	args := m.Called(scan, token)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*progress.Tracker)
}

func (m *MockProgressHub) Snapshot(scanID string) (progress.Snapshot, bool) {
	args := m.Called(scanID)
	return args.Get(0).(progress.Snapshot), args.Bool(1)
}

func (m *MockProgressHub) Release(scanID string) {
	m.Called(scanID)
}

func (m *MockProgressHub) Close() {
	m.Called()
}

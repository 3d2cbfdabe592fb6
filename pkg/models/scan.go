package models

import "time"

// Scan statuses as reported by the backend
const (
	ScanStatusPending   = "pending"
	ScanStatusCrawling  = "crawling"
	ScanStatusScanning  = "scanning"
	ScanStatusCompleted = "completed"
	ScanStatusFailed    = "failed"
	ScanStatusCancelled = "cancelled"
)

// Scan modes
const (
	ScanModeQuick = "quick"
	ScanModeFull  = "full"
)

// Scan is one assessment run against a target URL, owned by the backend.
// This front end only ever holds a transient copy.
type Scan struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id"`
	TargetURL       string                 `json:"target_url"`
	ScanMode        string                 `json:"scan_mode"`
	Status          string                 `json:"status"`
	ProgressPercent float64                `json:"progress_percent"`
	PagesFound      int                    `json:"pages_found"`
	PagesScanned    int                    `json:"pages_scanned"`
	Config          map[string]interface{} `json:"config,omitempty"`
	StartedAt       *time.Time             `json:"started_at,omitempty"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
	ErrorMessage    string                 `json:"error_message,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ScanCreate is the create-scan request payload
type ScanCreate struct {
	TargetURL string                 `json:"target_url"`
	ScanMode  string                 `json:"scan_mode"`
	Config    map[string]interface{} `json:"config,omitempty"`
}

// IsTerminal reports whether the status ends a scan's lifecycle
func IsTerminal(status string) bool {
	switch status {
	case ScanStatusCompleted, ScanStatusFailed, ScanStatusCancelled:
		return true
	}
	return false
}

// IsRunning reports whether a scan is still making progress
func (s *Scan) IsRunning() bool {
	return !IsTerminal(s.Status)
}

// ScanStatusLabels maps statuses to display labels
var ScanStatusLabels = map[string]string{
	ScanStatusPending:   "Pending",
	ScanStatusCrawling:  "Crawling",
	ScanStatusScanning:  "Scanning",
	ScanStatusCompleted: "Completed",
	ScanStatusFailed:    "Failed",
	ScanStatusCancelled: "Cancelled",
}

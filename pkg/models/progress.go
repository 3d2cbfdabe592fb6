package models

// Progress message types on the live stream
const (
	ProgressTypeProgress = "progress"
	ProgressTypeDone     = "done"
	ProgressTypePing     = "ping"
	ProgressTypeError    = "error"
)

// ProgressMessage is one frame on the per-scan progress stream.
// Consumed and discarded per message, never persisted.
type ProgressMessage struct {
	Type         string   `json:"type"`
	ScanID       string   `json:"scan_id,omitempty"`
	Status       string   `json:"status,omitempty"`
	Progress     *float64 `json:"progress,omitempty"`
	PagesFound   *int     `json:"pages_found,omitempty"`
	PagesScanned *int     `json:"pages_scanned,omitempty"`
	Error        string   `json:"error,omitempty"`
	Message      string   `json:"message,omitempty"`
}

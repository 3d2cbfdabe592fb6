package models

// AssetSummary aggregates all scans against one target URL
type AssetSummary struct {
	TargetURL      string  `json:"target_url"`
	ScanCount      int     `json:"scan_count"`
	LastScanID     string  `json:"last_scan_id"`
	LastScanStatus string  `json:"last_scan_status"`
	LastScanAt     *string `json:"last_scan_at,omitempty"`
	LastScanMode   string  `json:"last_scan_mode"`
	TotalVulns     int     `json:"total_vulns"`
	CriticalCount  int     `json:"critical_count"`
	HighCount      int     `json:"high_count"`
	MediumCount    int     `json:"medium_count"`
	LowCount       int     `json:"low_count"`
	InfoCount      int     `json:"info_count"`
}

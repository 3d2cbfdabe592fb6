package models

// SeverityCount breaks findings down by severity
type SeverityCount struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
}

// RecentScan is the trimmed scan row shown on the dashboard
type RecentScan struct {
	ID        string `json:"id"`
	TargetURL string `json:"target_url"`
	Status    string `json:"status"`
	ScanMode  string `json:"scan_mode"`
	VulnCount int    `json:"vuln_count"`
	CreatedAt string `json:"created_at"`
}

// ScansOverTimePoint is one bucket of the scans-over-time chart
type ScansOverTimePoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DashboardStats is the /dashboard/stats response
type DashboardStats struct {
	TotalScans           int                  `json:"total_scans"`
	ActiveScans          int                  `json:"active_scans"`
	TotalVulnerabilities int                  `json:"total_vulnerabilities"`
	CriticalCount        int                  `json:"critical_count"`
	SeverityDistribution SeverityCount        `json:"severity_distribution"`
	RecentScans          []RecentScan         `json:"recent_scans"`
	ScansOverTime        []ScansOverTimePoint `json:"scans_over_time"`
}

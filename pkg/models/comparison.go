package models

// ComparisonSummary counts findings by bucket
type ComparisonSummary struct {
	New       int `json:"new"`
	Fixed     int `json:"fixed"`
	Unchanged int `json:"unchanged"`
}

// Comparison is the /compare/{a}/{b} response
type Comparison struct {
	ScanAID                  string            `json:"scan_a_id"`
	ScanBID                  string            `json:"scan_b_id"`
	NewVulnerabilities       []Vulnerability   `json:"new_vulnerabilities"`
	FixedVulnerabilities     []Vulnerability   `json:"fixed_vulnerabilities"`
	UnchangedVulnerabilities []Vulnerability   `json:"unchanged_vulnerabilities"`
	Summary                  ComparisonSummary `json:"summary"`
}

package models

// Severity levels, most severe first
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// Evidence is one captured proof fragment for a finding
type Evidence struct {
	Type    string `json:"type"`
	Payload string `json:"payload,omitempty"`
	Request string `json:"request,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Vulnerability is one finding attached to a scan. Read-only here.
type Vulnerability struct {
	ID                string     `json:"id"`
	ScanID            string     `json:"scan_id"`
	Severity          string     `json:"severity"`
	VulnType          string     `json:"vuln_type"`
	OWASPCategory     string     `json:"owasp_category"`
	CWEID             string     `json:"cwe_id"`
	CVSSScore         float64    `json:"cvss_score"`
	CVSSVector        string     `json:"cvss_vector"`
	AffectedURL       string     `json:"affected_url"`
	AffectedParameter string     `json:"affected_parameter,omitempty"`
	Description       string     `json:"description"`
	Remediation       string     `json:"remediation"`
	ModuleName        string     `json:"module_name"`
	Confidence        string     `json:"confidence"`
	Evidence          []Evidence `json:"evidence,omitempty"`
}

// VulnFilter narrows the vulnerability database listing
type VulnFilter struct {
	Severity string
	OWASP    string
	Limit    int
}

// OWASPLabels maps OWASP Top 10 category codes to names
var OWASPLabels = map[string]string{
	"A01": "Broken Access Control",
	"A02": "Cryptographic Failures",
	"A03": "Injection",
	"A04": "Insecure Design",
	"A05": "Security Misconfiguration",
	"A06": "Vulnerable Components",
	"A07": "Auth Failures",
	"A08": "Integrity Failures",
	"A09": "Logging Failures",
	"A10": "SSRF",
}

// SeverityRank orders severities for sorting, lower is more severe
var SeverityRank = map[string]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
	SeverityInfo:     4,
}

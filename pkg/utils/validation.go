package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Five space-separated cron fields; presence check only, the backend
// owns the real parse
var cronPattern = regexp.MustCompile(`^\S+\s+\S+\s+\S+\s+\S+\s+\S+$`)

// ValidateTargetURL checks that a scan target is an absolute http(s) URL
func ValidateTargetURL(target string) error {
	if target == "" {
		return fmt.Errorf("target URL cannot be empty")
	}
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid target URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("target URL must use http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("target URL must include a host")
	}
	return nil
}

// ValidateScanMode accepts the backend's two scan modes
func ValidateScanMode(mode string) error {
	if mode != "quick" && mode != "full" {
		return fmt.Errorf("invalid scan mode: must be quick or full")
	}
	return nil
}

// ValidateCronExpression performs the pre-submit shape check on a cron
// expression. Scheduling semantics stay with the backend.
func ValidateCronExpression(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return fmt.Errorf("cron expression cannot be empty")
	}
	if !cronPattern.MatchString(strings.TrimSpace(expr)) {
		return fmt.Errorf("invalid cron expression: expected 5 fields")
	}
	return nil
}

package models

import "time"

// Schedule is a recurring scan definition, owned by the backend
type Schedule struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	TargetURL      string     `json:"target_url"`
	ScanMode       string     `json:"scan_mode"`
	CronExpression string     `json:"cron_expression"`
	Label          string     `json:"label,omitempty"`
	IsActive       bool       `json:"is_active"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	NextRunAt      *time.Time `json:"next_run_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ScheduleCreate is the create/update payload
type ScheduleCreate struct {
	TargetURL      string `json:"target_url"`
	ScanMode       string `json:"scan_mode"`
	CronExpression string `json:"cron_expression"`
	Label          string `json:"label,omitempty"`
	IsActive       bool   `json:"is_active"`
}

// CronPreset pairs a friendly label with a cron expression
type CronPreset struct {
	Label string
	Cron  string
}

// CronPresets are the suggestions offered on the schedules page
var CronPresets = []CronPreset{
	{Label: "Every hour", Cron: "0 * * * *"},
	{Label: "Every 6 hours", Cron: "0 */6 * * *"},
	{Label: "Daily at 02:00", Cron: "0 2 * * *"},
	{Label: "Weekly (Mon 03:00)", Cron: "0 3 * * 1"},
	{Label: "Monthly (1st)", Cron: "0 4 1 * *"},
}

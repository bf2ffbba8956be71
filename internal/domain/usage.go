package domain

import "time"

// Usage event types recorded against generation jobs.
const (
	UsageJobSubmitted = "job_submitted"
	UsageJobCompleted = "job_completed"
	UsageJobFailed    = "job_failed"
)

// UsageEvent records one billable or notable action for reporting.
type UsageEvent struct {
	ID        string
	UserID    string
	JobID     *string
	EventType string
	Success   bool
	LatencyMS int
	Country   string
	CreatedAt time.Time
}

// UsageSummary aggregates recent usage for the metrics endpoint.
type UsageSummary struct {
	TotalJobs     int
	CompletedJobs int
	FailedJobs    int
	CreditsSpent  int
	Day           string
}

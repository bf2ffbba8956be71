package repo

import (
	"context"
	"time"

	"adforge-server/internal/domain"
	"adforge-server/internal/infra"
	"adforge-server/internal/sqlinline"
)

// UsagePG implements domain.UsageRepository.
type UsagePG struct {
	sql infra.SQLExecutor
}

// NewUsageRepository creates a usage event repository.
func NewUsageRepository(sql infra.SQLExecutor) *UsagePG {
	return &UsagePG{sql: sql}
}

// RecordEvent appends one usage event. Failures are surfaced to the caller,
// who treats them as non-fatal.
func (r *UsagePG) RecordEvent(ctx context.Context, ev domain.UsageEvent) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertUsageEvent,
		ev.UserID, ev.JobID, ev.EventType, ev.Success, ev.LatencyMS, ev.Country)
	return err
}

// Summary aggregates today's usage.
func (r *UsagePG) Summary(ctx context.Context) (*domain.UsageSummary, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectUsageSummary)
	var s domain.UsageSummary
	if err := row.Scan(&s.TotalJobs, &s.CompletedJobs, &s.FailedJobs, &s.CreditsSpent); err != nil {
		return nil, err
	}
	s.Day = time.Now().UTC().Format("2006-01-02")
	return &s, nil
}

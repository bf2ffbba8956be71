package handlers

import "net/http"

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MetricsSummary exposes the aggregate usage counters.
func (a *App) MetricsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.Credits.UsageSummary(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"total_jobs":     summary.TotalJobs,
		"completed_jobs": summary.CompletedJobs,
		"failed_jobs":    summary.FailedJobs,
		"credits_spent":  summary.CreditsSpent,
		"day":            summary.Day,
	})
}

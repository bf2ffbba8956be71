package fal

import (
	"fmt"
	"strings"

	"adforge-server/internal/domain"
)

// MapStatus normalizes a fal.ai queue status into the internal enum. fal
// reports COMPLETED for both success and failure; the result fetch
// distinguishes them, so COMPLETED maps optimistically and the resolver
// downgrades on a missing payload.
func MapStatus(status string) (domain.JobStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "IN_QUEUE":
		return domain.JobStatusInQueue, nil
	case "IN_PROGRESS":
		return domain.JobStatusInProgress, nil
	case "COMPLETED":
		return domain.JobStatusCompleted, nil
	case "FAILED", "ERROR":
		return domain.JobStatusFailed, nil
	case "CANCELLED":
		return domain.JobStatusCancelled, nil
	}
	return "", fmt.Errorf("fal: unknown queue status %q", status)
}

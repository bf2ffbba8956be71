package wavespeed

import (
	"fmt"
	"strings"

	"adforge-server/internal/domain"
)

// MapStatus normalizes a WaveSpeed prediction status into the internal enum.
func MapStatus(status string) (domain.JobStatus, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "created":
		return domain.JobStatusInQueue, nil
	case "processing":
		return domain.JobStatusInProgress, nil
	case "completed":
		return domain.JobStatusCompleted, nil
	case "failed":
		return domain.JobStatusFailed, nil
	}
	return "", fmt.Errorf("wavespeed: unknown prediction status %q", status)
}

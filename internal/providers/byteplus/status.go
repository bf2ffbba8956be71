package byteplus

import (
	"fmt"
	"strings"

	"adforge-server/internal/domain"
)

// MapStatus normalizes a ModelArk task status into the internal enum.
func MapStatus(status string) (domain.JobStatus, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "queued":
		return domain.JobStatusInQueue, nil
	case "running":
		return domain.JobStatusInProgress, nil
	case "succeeded":
		return domain.JobStatusCompleted, nil
	case "failed":
		return domain.JobStatusFailed, nil
	case "cancelled":
		return domain.JobStatusCancelled, nil
	}
	return "", fmt.Errorf("byteplus: unknown task status %q", status)
}

package kie

import (
	"fmt"
	"strings"

	"adforge-server/internal/domain"
)

// MapStatus normalizes a Kie.ai task state into the internal status enum.
// It is a pure function; unknown states return an error so callers leave the
// job record untouched.
func MapStatus(state string) (domain.JobStatus, error) {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "waiting", "queuing":
		return domain.JobStatusInQueue, nil
	case "generating":
		return domain.JobStatusInProgress, nil
	case "success":
		return domain.JobStatusCompleted, nil
	case "fail":
		return domain.JobStatusFailed, nil
	}
	return "", fmt.Errorf("kie: unknown task state %q", state)
}

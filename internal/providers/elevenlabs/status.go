package elevenlabs

import (
	"fmt"
	"strings"

	"adforge-server/internal/domain"
)

// MapStatus normalizes an ElevenLabs project status into the internal enum.
func MapStatus(status string) (domain.JobStatus, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "created", "pending":
		return domain.JobStatusInQueue, nil
	case "processing", "dubbing", "converting":
		return domain.JobStatusInProgress, nil
	case "done", "dubbed":
		return domain.JobStatusCompleted, nil
	case "failed", "error":
		return domain.JobStatusFailed, nil
	}
	return "", fmt.Errorf("elevenlabs: unknown project status %q", status)
}

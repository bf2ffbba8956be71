package gemini

import "adforge-server/internal/domain"

// MapOperation translates the done/error pair of a long-running operation
// into the internal enum. Operations carry no queue position, so anything
// not yet done counts as in progress.
func MapOperation(done, failed bool) domain.JobStatus {
	switch {
	case done && failed:
		return domain.JobStatusFailed
	case done:
		return domain.JobStatusCompleted
	default:
		return domain.JobStatusInProgress
	}
}

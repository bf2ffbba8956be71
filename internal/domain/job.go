package domain

import "time"

// JobType enumerates the supported generation asset types.
type JobType string

const (
	JobTypeAvatar     JobType = "avatar_generate"
	JobTypeOutfitSwap JobType = "outfit_swap"
	JobTypeImageAd    JobType = "image_ad"
	JobTypeVideoAd    JobType = "video_ad"
	JobTypeMusic      JobType = "music_generate"
	JobTypeVoiceover  JobType = "voiceover"
	JobTypeVoiceClone JobType = "voice_clone"
	JobTypeUpscale    JobType = "image_upscale"
)

// JobTypes lists every valid job type.
var JobTypes = []JobType{
	JobTypeAvatar,
	JobTypeOutfitSwap,
	JobTypeImageAd,
	JobTypeVideoAd,
	JobTypeMusic,
	JobTypeVoiceover,
	JobTypeVoiceClone,
	JobTypeUpscale,
}

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	for _, known := range JobTypes {
		if t == known {
			return true
		}
	}
	return false
}

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusUploading  JobStatus = "UPLOADING"
	JobStatusInQueue    JobStatus = "IN_QUEUE"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusCancelled  JobStatus = "CANCELLED"
)

// IsTerminal reports whether the status is final.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a transition from s to next is allowed.
// Progression is forward-only; FAILED may re-enter IN_QUEUE on manual retry
// and any non-terminal state may be cancelled.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if next == JobStatusCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case JobStatusPending:
		return next == JobStatusUploading || next == JobStatusInQueue || next == JobStatusFailed
	case JobStatusUploading:
		return next == JobStatusInQueue || next == JobStatusFailed
	case JobStatusInQueue:
		return next == JobStatusInProgress || next == JobStatusCompleted || next == JobStatusFailed
	case JobStatusInProgress:
		return next == JobStatusCompleted || next == JobStatusFailed
	case JobStatusFailed:
		return next == JobStatusInQueue
	}
	return false
}

// TaskRef identifies a job at a specific vendor. The provider tag is carried
// explicitly next to the vendor task id instead of being encoded into a
// prefixed string.
type TaskRef struct {
	Provider ProviderID
	TaskID   string
}

// IsZero reports whether the reference has been assigned.
func (r TaskRef) IsZero() bool {
	return r.Provider == "" || r.TaskID == ""
}

// Job encapsulates the lifecycle of one generation request.
type Job struct {
	ID             string
	OwnerID        string
	Type           JobType
	Status         JobStatus
	Provider       ProviderID
	ProviderTaskID string
	InputParams    []byte
	ResultURL      string
	ThumbnailURL   string
	ErrorMessage   string
	CreditsUsed    int
	RefundedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
}

// TaskRef returns the vendor task reference recorded on the job.
func (j *Job) TaskRef() TaskRef {
	return TaskRef{Provider: j.Provider, TaskID: j.ProviderTaskID}
}

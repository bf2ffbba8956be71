package domain

import (
	"context"
	"time"
)

// JobRepository defines persistence for job records.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
	GetByTaskRef(ctx context.Context, ref TaskRef) (*Job, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]Job, error)
	// ListResolvable returns non-terminal jobs with an assigned vendor task,
	// oldest first, for the worker's poll loop.
	ListResolvable(ctx context.Context, limit int) ([]Job, error)
	ListStale(ctx context.Context, olderThan time.Time, limit int) ([]Job, error)
	// SetTaskRef records the vendor task id and moves the job to IN_QUEUE.
	SetTaskRef(ctx context.Context, jobID string, ref TaskRef) error
	// Transition advances status only when the current status equals from;
	// it reports whether a row was updated.
	Transition(ctx context.Context, jobID string, from, to JobStatus, errMsg *string) (bool, error)
	MarkCompleted(ctx context.Context, jobID, resultURL, thumbnailURL string) error
	MarkFailed(ctx context.Context, jobID, errMsg string) error
	// MarkRefunded sets the refund marker exactly once per job and reports
	// whether this call won the marker.
	MarkRefunded(ctx context.Context, jobID string) (bool, error)
	Delete(ctx context.Context, jobID, ownerID string) error
}

// CreditRepository mutates the profile balance and appends ledger entries.
type CreditRepository interface {
	// DebitIfSufficient atomically decrements the balance only when it covers
	// amount, reporting whether the debit happened.
	DebitIfSufficient(ctx context.Context, userID string, amount int, jobID string) (bool, error)
	Credit(ctx context.Context, userID string, amount int, entryType CreditEntryType, jobID *string, description string) error
	Balance(ctx context.Context, userID string) (int, error)
	History(ctx context.Context, userID string, limit int) ([]CreditEntry, error)
}

// ProfileRepository defines access methods for account profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	Upsert(ctx context.Context, profile *Profile) (*Profile, error)
	// GrantSignupBonus applies the one-time bonus, reporting whether this
	// call granted it.
	GrantSignupBonus(ctx context.Context, userID string, amount int) (bool, error)
}

// WebhookEventRepository deduplicates inbound webhook deliveries.
type WebhookEventRepository interface {
	// Record stores the delivery and reports whether it was seen for the
	// first time.
	Record(ctx context.Context, provider, eventID string, payload []byte) (bool, error)
}

// UsageRepository records per-request usage events for reporting.
type UsageRepository interface {
	RecordEvent(ctx context.Context, ev UsageEvent) error
	Summary(ctx context.Context) (*UsageSummary, error)
}

// TxStore groups the repositories and provides transactional composition for
// operations that must commit together (credit debit + job creation).
type TxStore interface {
	Jobs() JobRepository
	Credits() CreditRepository
	Profiles() ProfileRepository
	WebhookEvents() WebhookEventRepository
	Usage() UsageRepository
	// InTx runs fn against repositories bound to a single transaction.
	InTx(ctx context.Context, fn func(jobs JobRepository, credits CreditRepository) error) error
}

// Package providers defines the contract every generative AI vendor adapter
// implements and the registry the service selects adapters from.
package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"adforge-server/internal/domain"
)

// SubmitRequest carries everything an adapter needs to enqueue a generation.
type SubmitRequest struct {
	JobID       string
	Type        domain.JobType
	Params      json.RawMessage
	CallbackURL string
}

// StatusResult is the normalized outcome of a vendor status poll.
type StatusResult struct {
	Status        domain.JobStatus
	QueuePosition int
	Detail        string
}

// Result describes the media produced by a completed vendor task.
type Result struct {
	MediaURL     string
	ThumbnailURL string
	MIME         string
	Metadata     map[string]any
}

// Adapter is the per-vendor translation layer. Submit returns the vendor task
// id; PollStatus and FetchResult must not mutate anything so a transient
// vendor error leaves the job record untouched. Cancel is best-effort.
type Adapter interface {
	ID() domain.ProviderID
	Submit(ctx context.Context, req SubmitRequest) (string, error)
	PollStatus(ctx context.Context, taskID string) (StatusResult, error)
	FetchResult(ctx context.Context, taskID string) (Result, error)
	Cancel(ctx context.Context, taskID string) error
}

// Registry maps provider ids to adapters.
type Registry map[domain.ProviderID]Adapter

// Get returns the adapter for the given provider.
func (r Registry) Get(id domain.ProviderID) (Adapter, error) {
	adapter, ok := r[id]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured: %w", id, domain.ErrProviderFailure)
	}
	return adapter, nil
}

// Package service implements the application operations on top of the
// repositories and vendor adapters.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"adforge-server/internal/domain"
	"adforge-server/internal/postprocess"
	"adforge-server/internal/providers"
	"adforge-server/internal/providers/prompt"
)

// AssetProcessor turns a vendor result into stored, delivery-ready asset
// URLs. Implemented by postprocess.Processor.
type AssetProcessor interface {
	Process(ctx context.Context, job *domain.Job, res providers.Result) (postprocess.Output, error)
}

// GenerationService owns the job lifecycle: submission, status resolution,
// retry, cancellation and the stale sweep.
type GenerationService struct {
	store       domain.TxStore
	registry    providers.Registry
	processor   AssetProcessor
	enhancer    prompt.Enhancer
	webhookBase string
	jobMaxAge   time.Duration
	log         zerolog.Logger
}

type GenerationOptions struct {
	Store       domain.TxStore
	Registry    providers.Registry
	Processor   AssetProcessor
	Enhancer    prompt.Enhancer
	WebhookBase string
	JobMaxAge   time.Duration
	Logger      zerolog.Logger
}

func NewGenerationService(opts GenerationOptions) *GenerationService {
	maxAge := opts.JobMaxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &GenerationService{
		store:       opts.Store,
		registry:    opts.Registry,
		processor:   opts.Processor,
		enhancer:    opts.Enhancer,
		webhookBase: opts.WebhookBase,
		jobMaxAge:   maxAge,
		log:         opts.Logger,
	}
}

// SubmitInput carries one generation request.
type SubmitInput struct {
	OwnerID string
	Type    domain.JobType
	Params  json.RawMessage
	Country string
}

// Submit debits the owner and creates the job in one transaction, then hands
// the task to the vendor. A vendor rejection fails the job and refunds.
func (s *GenerationService) Submit(ctx context.Context, in SubmitInput) (*domain.Job, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown job type %q", domain.ErrValidation, in.Type)
	}
	params, err := s.enhanceParams(ctx, in.Type, in.Params)
	if err != nil {
		return nil, err
	}

	cost := domain.CreditCost(in.Type)
	providerID := domain.DefaultProviderFor(in.Type)
	adapter, err := s.registry.Get(providerID)
	if err != nil {
		return nil, err
	}

	job := &domain.Job{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Type:        in.Type,
		Status:      domain.JobStatusPending,
		Provider:    providerID,
		InputParams: params,
		CreditsUsed: cost,
	}

	// Debit and job creation commit together so a crash between them cannot
	// charge without a job record.
	err = s.store.InTx(ctx, func(jobs domain.JobRepository, credits domain.CreditRepository) error {
		ok, err := credits.DebitIfSufficient(ctx, in.OwnerID, cost, job.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInsufficientCredits
		}
		return jobs.Create(ctx, job)
	})
	if err != nil {
		return nil, err
	}

	s.recordUsage(ctx, in.OwnerID, job.ID, domain.UsageJobSubmitted, in.Country, true)

	taskID, err := adapter.Submit(ctx, providers.SubmitRequest{
		JobID:       job.ID,
		Type:        in.Type,
		Params:      params,
		CallbackURL: s.callbackURL(providerID),
	})
	if err != nil {
		s.log.Error().Str("job_id", job.ID).Str("provider", string(providerID)).Err(err).Msg("vendor submit failed")
		s.failAndRefund(ctx, job, "vendor submission failed")
		return nil, fmt.Errorf("submit to %s: %w", providerID, err)
	}

	if err := s.store.Jobs().SetTaskRef(ctx, job.ID, domain.TaskRef{Provider: providerID, TaskID: taskID}); err != nil {
		return nil, err
	}
	return s.store.Jobs().GetByID(ctx, job.ID)
}

// Get returns a job owned by ownerID. Jobs owned by other accounts are
// indistinguishable from missing ones.
func (s *GenerationService) Get(ctx context.Context, ownerID, jobID string) (*domain.Job, error) {
	job, err := s.store.Jobs().GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

func (s *GenerationService) List(ctx context.Context, ownerID string, limit int) ([]domain.Job, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.Jobs().ListByOwner(ctx, ownerID, limit)
}

func (s *GenerationService) Delete(ctx context.Context, ownerID, jobID string) error {
	if _, err := s.Get(ctx, ownerID, jobID); err != nil {
		return err
	}
	return s.store.Jobs().Delete(ctx, jobID, ownerID)
}

// Retry re-submits a failed job. The retry is a fresh paid attempt: it
// debits again and becomes refundable again if the vendor fails.
func (s *GenerationService) Retry(ctx context.Context, ownerID, jobID string) (*domain.Job, error) {
	job, err := s.Get(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusFailed {
		return nil, fmt.Errorf("%w: only failed jobs can be retried", domain.ErrInvalidTransition)
	}
	adapter, err := s.registry.Get(job.Provider)
	if err != nil {
		return nil, err
	}

	cost := domain.CreditCost(job.Type)
	ok, err := s.store.Credits().DebitIfSufficient(ctx, ownerID, cost, job.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInsufficientCredits
	}

	taskID, err := adapter.Submit(ctx, providers.SubmitRequest{
		JobID:       job.ID,
		Type:        job.Type,
		Params:      job.InputParams,
		CallbackURL: s.callbackURL(job.Provider),
	})
	if err != nil {
		s.refund(ctx, job.OwnerID, cost, job.ID, "refund for failed retry")
		return nil, fmt.Errorf("retry submit to %s: %w", job.Provider, err)
	}
	if err := s.store.Jobs().SetTaskRef(ctx, job.ID, domain.TaskRef{Provider: job.Provider, TaskID: taskID}); err != nil {
		return nil, err
	}
	return s.store.Jobs().GetByID(ctx, job.ID)
}

// Cancel moves a non-terminal job to CANCELLED, tells the vendor best-effort
// and refunds the charge.
func (s *GenerationService) Cancel(ctx context.Context, ownerID, jobID string) (*domain.Job, error) {
	job, err := s.Get(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: job already %s", domain.ErrInvalidTransition, job.Status)
	}
	won, err := s.store.Jobs().Transition(ctx, job.ID, job.Status, domain.JobStatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost the race against the resolver; report the settled state.
		return s.store.Jobs().GetByID(ctx, job.ID)
	}
	if !job.TaskRef().IsZero() {
		if adapter, aerr := s.registry.Get(job.Provider); aerr == nil {
			if cerr := adapter.Cancel(ctx, job.ProviderTaskID); cerr != nil {
				s.log.Warn().Str("job_id", job.ID).Err(cerr).Msg("vendor cancel failed")
			}
		}
	}
	s.refundOnce(ctx, job, "refund for cancelled generation")
	return s.store.Jobs().GetByID(ctx, job.ID)
}

// Resolve polls the vendor for one job and applies the outcome. Terminal
// jobs short-circuit without touching the vendor.
func (s *GenerationService) Resolve(ctx context.Context, jobID string) error {
	job, err := s.store.Jobs().GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return nil
	}
	if job.TaskRef().IsZero() {
		return nil
	}
	adapter, err := s.registry.Get(job.Provider)
	if err != nil {
		return err
	}
	status, err := adapter.PollStatus(ctx, job.ProviderTaskID)
	if err != nil {
		// Transient vendor errors leave the job untouched for the next cycle.
		return err
	}
	return s.applyStatus(ctx, job, status)
}

// HandleWebhook applies a vendor push notification. Deliveries are
// deduplicated by (provider, event id); unknown task references are ignored
// so vendors never see an error for jobs deleted on our side.
func (s *GenerationService) HandleWebhook(ctx context.Context, ref domain.TaskRef, eventID string, payload []byte, status domain.JobStatus, detail string) error {
	first, err := s.store.WebhookEvents().Record(ctx, string(ref.Provider), eventID, payload)
	if err != nil {
		return err
	}
	if !first {
		s.log.Debug().Str("provider", string(ref.Provider)).Str("event_id", eventID).Msg("duplicate webhook delivery ignored")
		return nil
	}
	job, err := s.store.Jobs().GetByTaskRef(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Info().Str("provider", string(ref.Provider)).Str("task_id", ref.TaskID).Msg("webhook for unknown task ignored")
			return nil
		}
		return err
	}
	return s.applyStatus(ctx, job, providers.StatusResult{Status: status, Detail: detail})
}

// SweepStale force-fails jobs stuck past the age limit and refunds them.
func (s *GenerationService) SweepStale(ctx context.Context, limit int) (int, error) {
	cutoff := time.Now().Add(-s.jobMaxAge)
	stale, err := s.store.Jobs().ListStale(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}
	swept := 0
	for i := range stale {
		job := &stale[i]
		if err := s.store.Jobs().MarkFailed(ctx, job.ID, "timed out waiting for vendor"); err != nil {
			s.log.Error().Str("job_id", job.ID).Err(err).Msg("stale sweep mark failed")
			continue
		}
		s.recordUsage(ctx, job.OwnerID, job.ID, domain.UsageJobFailed, "", false)
		s.refundOnce(ctx, job, "refund for timed out generation")
		swept++
	}
	return swept, nil
}

// applyStatus folds a vendor-reported status into the job record.
func (s *GenerationService) applyStatus(ctx context.Context, job *domain.Job, status providers.StatusResult) error {
	if job.Status.IsTerminal() {
		return nil
	}
	switch status.Status {
	case domain.JobStatusCompleted:
		return s.complete(ctx, job)
	case domain.JobStatusFailed:
		detail := status.Detail
		if detail == "" {
			detail = "vendor reported failure"
		}
		if err := s.store.Jobs().MarkFailed(ctx, job.ID, detail); err != nil {
			return err
		}
		s.recordUsage(ctx, job.OwnerID, job.ID, domain.UsageJobFailed, "", false)
		s.refundOnce(ctx, job, "refund for failed generation")
		return nil
	case domain.JobStatusCancelled:
		won, err := s.store.Jobs().Transition(ctx, job.ID, job.Status, domain.JobStatusCancelled, nil)
		if err != nil {
			return err
		}
		if won {
			s.refundOnce(ctx, job, "refund for vendor-cancelled generation")
		}
		return nil
	default:
		if status.Status == job.Status || !job.Status.CanTransition(status.Status) {
			return nil
		}
		_, err := s.store.Jobs().Transition(ctx, job.ID, job.Status, status.Status, nil)
		return err
	}
}

// complete fetches the vendor output, post-processes it and marks the job
// done. Any failure along the way leaves the job non-terminal; COMPLETED is
// only ever written with a stored asset behind it.
func (s *GenerationService) complete(ctx context.Context, job *domain.Job) error {
	adapter, err := s.registry.Get(job.Provider)
	if err != nil {
		return err
	}
	result, err := adapter.FetchResult(ctx, job.ProviderTaskID)
	if err != nil {
		if errors.Is(err, domain.ErrProviderFailure) {
			// The vendor finished but produced nothing usable.
			if merr := s.store.Jobs().MarkFailed(ctx, job.ID, "vendor produced no usable output"); merr != nil {
				return merr
			}
			s.recordUsage(ctx, job.OwnerID, job.ID, domain.UsageJobFailed, "", false)
			s.refundOnce(ctx, job, "refund for failed generation")
			return nil
		}
		return err
	}
	out, err := s.processor.Process(ctx, job, result)
	if err != nil {
		return err
	}
	if err := s.store.Jobs().MarkCompleted(ctx, job.ID, out.ResultURL, out.ThumbnailURL); err != nil {
		return err
	}
	s.recordUsage(ctx, job.OwnerID, job.ID, domain.UsageJobCompleted, "", true)
	return nil
}

// failAndRefund marks the job failed and refunds its charge.
func (s *GenerationService) failAndRefund(ctx context.Context, job *domain.Job, reason string) {
	if err := s.store.Jobs().MarkFailed(ctx, job.ID, reason); err != nil {
		s.log.Error().Str("job_id", job.ID).Err(err).Msg("mark failed")
		return
	}
	s.recordUsage(ctx, job.OwnerID, job.ID, domain.UsageJobFailed, "", false)
	s.refundOnce(ctx, job, "refund for failed generation")
}

// refundOnce credits back the job's charge at most once per paid attempt.
// The refund marker on the job row decides the winner when the resolver,
// a webhook and the sweep race.
func (s *GenerationService) refundOnce(ctx context.Context, job *domain.Job, description string) {
	if job.CreditsUsed <= 0 {
		return
	}
	won, err := s.store.Jobs().MarkRefunded(ctx, job.ID)
	if err != nil {
		s.log.Error().Str("job_id", job.ID).Err(err).Msg("refund marker")
		return
	}
	if !won {
		return
	}
	s.refund(ctx, job.OwnerID, job.CreditsUsed, job.ID, description)
}

func (s *GenerationService) refund(ctx context.Context, ownerID string, amount int, jobID, description string) {
	if err := s.store.Credits().Credit(ctx, ownerID, amount, domain.CreditEntryRefund, &jobID, description); err != nil {
		s.log.Error().Str("job_id", jobID).Err(err).Msg("refund credit")
	}
}

// enhanceParams runs the prompt enhancer for visual job types when the
// request carries a plain prompt object.
func (s *GenerationService) enhanceParams(ctx context.Context, jobType domain.JobType, params json.RawMessage) (json.RawMessage, error) {
	if s.enhancer == nil || len(params) == 0 {
		return params, nil
	}
	switch jobType {
	case domain.JobTypeImageAd, domain.JobTypeVideoAd, domain.JobTypeAvatar:
	default:
		return params, nil
	}
	var fields map[string]any
	if err := json.Unmarshal(params, &fields); err != nil {
		return nil, fmt.Errorf("%w: params must be a JSON object", domain.ErrValidation)
	}
	rawPrompt, _ := fields["prompt"].(string)
	if rawPrompt == "" {
		return params, nil
	}
	product, _ := fields["product"].(string)
	tone, _ := fields["tone"].(string)
	res, err := s.enhancer.Enhance(ctx, prompt.EnhanceRequest{
		Type:    jobType,
		Prompt:  rawPrompt,
		Product: product,
		Tone:    tone,
	})
	if err != nil {
		return nil, err
	}
	fields["prompt"] = res.Prompt
	return json.Marshal(fields)
}

func (s *GenerationService) callbackURL(provider domain.ProviderID) string {
	if s.webhookBase == "" {
		return ""
	}
	return s.webhookBase + "/v1/webhooks/" + string(provider)
}

func (s *GenerationService) recordUsage(ctx context.Context, ownerID, jobID, eventType, country string, success bool) {
	ev := domain.UsageEvent{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		JobID:     &jobID,
		EventType: eventType,
		Success:   success,
		Country:   country,
	}
	if err := s.store.Usage().RecordEvent(ctx, ev); err != nil {
		s.log.Warn().Err(err).Msg("usage event")
	}
}

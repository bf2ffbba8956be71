package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adforge-server/internal/domain"
	"adforge-server/internal/postprocess"
	"adforge-server/internal/providers"
	"adforge-server/internal/providers/prompt"
)

// memStore is an in-memory TxStore with the same conditional-update
// semantics as the Postgres repositories.
type memStore struct {
	mu       sync.Mutex
	jobs     map[string]*domain.Job
	balances map[string]int
	entries  []domain.CreditEntry
	profiles map[string]*domain.Profile
	webhooks map[string]bool
	usage    []domain.UsageEvent
}

func newMemStore() *memStore {
	return &memStore{
		jobs:     map[string]*domain.Job{},
		balances: map[string]int{},
		profiles: map[string]*domain.Profile{},
		webhooks: map[string]bool{},
	}
}

func (m *memStore) Jobs() domain.JobRepository                   { return memJobs{m} }
func (m *memStore) Credits() domain.CreditRepository             { return memCredits{m} }
func (m *memStore) Profiles() domain.ProfileRepository           { return memProfiles{m} }
func (m *memStore) WebhookEvents() domain.WebhookEventRepository { return memWebhooks{m} }
func (m *memStore) Usage() domain.UsageRepository                { return memUsage{m} }

func (m *memStore) InTx(ctx context.Context, fn func(jobs domain.JobRepository, credits domain.CreditRepository) error) error {
	return fn(memJobs{m}, memCredits{m})
}

type memJobs struct{ s *memStore }

func (r memJobs) Create(ctx context.Context, job *domain.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *job
	now := time.Now()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	r.s.jobs[cp.ID] = &cp
	return nil
}

func (r memJobs) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	job, ok := r.s.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (r memJobs) GetByTaskRef(ctx context.Context, ref domain.TaskRef) (*domain.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, job := range r.s.jobs {
		if job.Provider == ref.Provider && job.ProviderTaskID == ref.TaskID {
			cp := *job
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memJobs) ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Job
	for _, job := range r.s.jobs {
		if job.OwnerID == ownerID {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memJobs) ListResolvable(ctx context.Context, limit int) ([]domain.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Job
	for _, job := range r.s.jobs {
		if (job.Status == domain.JobStatusInQueue || job.Status == domain.JobStatusInProgress) && job.ProviderTaskID != "" {
			out = append(out, *job)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memJobs) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]domain.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Job
	for _, job := range r.s.jobs {
		if !job.Status.IsTerminal() && job.CreatedAt.Before(olderThan) {
			out = append(out, *job)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memJobs) SetTaskRef(ctx context.Context, jobID string, ref domain.TaskRef) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	job, ok := r.s.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	job.Provider = ref.Provider
	job.ProviderTaskID = ref.TaskID
	job.Status = domain.JobStatusInQueue
	job.RefundedAt = nil
	job.UpdatedAt = time.Now()
	return nil
}

func (r memJobs) Transition(ctx context.Context, jobID string, from, to domain.JobStatus, errMsg *string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	job, ok := r.s.jobs[jobID]
	if !ok || job.Status != from {
		return false, nil
	}
	job.Status = to
	if errMsg != nil {
		job.ErrorMessage = *errMsg
	}
	job.UpdatedAt = time.Now()
	return true, nil
}

func (r memJobs) MarkCompleted(ctx context.Context, jobID, resultURL, thumbnailURL string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	job, ok := r.s.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status == domain.JobStatusCompleted || job.Status == domain.JobStatusCancelled {
		return nil
	}
	now := time.Now()
	job.Status = domain.JobStatusCompleted
	job.ResultURL = resultURL
	job.ThumbnailURL = thumbnailURL
	job.CompletedAt = &now
	job.UpdatedAt = now
	return nil
}

func (r memJobs) MarkFailed(ctx context.Context, jobID, errMsg string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	job, ok := r.s.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status.IsTerminal() {
		return nil
	}
	job.Status = domain.JobStatusFailed
	job.ErrorMessage = errMsg
	job.UpdatedAt = time.Now()
	return nil
}

func (r memJobs) MarkRefunded(ctx context.Context, jobID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	job, ok := r.s.jobs[jobID]
	if !ok || job.RefundedAt != nil {
		return false, nil
	}
	now := time.Now()
	job.RefundedAt = &now
	return true, nil
}

func (r memJobs) Delete(ctx context.Context, jobID, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	job, ok := r.s.jobs[jobID]
	if !ok || job.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.s.jobs, jobID)
	return nil
}

type memCredits struct{ s *memStore }

func (r memCredits) DebitIfSufficient(ctx context.Context, userID string, amount int, jobID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.balances[userID] < amount {
		return false, nil
	}
	r.s.balances[userID] -= amount
	r.s.entries = append(r.s.entries, domain.CreditEntry{
		ID:           uuid.NewString(),
		UserID:       userID,
		EntryType:    domain.CreditEntryDebit,
		Amount:       -amount,
		BalanceAfter: r.s.balances[userID],
		JobID:        &jobID,
	})
	return true, nil
}

func (r memCredits) Credit(ctx context.Context, userID string, amount int, entryType domain.CreditEntryType, jobID *string, description string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.balances[userID] += amount
	r.s.entries = append(r.s.entries, domain.CreditEntry{
		ID:           uuid.NewString(),
		UserID:       userID,
		EntryType:    entryType,
		Amount:       amount,
		BalanceAfter: r.s.balances[userID],
		JobID:        jobID,
		Description:  description,
	})
	return nil
}

func (r memCredits) Balance(ctx context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.balances[userID], nil
}

func (r memCredits) History(ctx context.Context, userID string, limit int) ([]domain.CreditEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.CreditEntry
	for _, e := range r.s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memProfiles struct{ s *memStore }

func (r memProfiles) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	cp.Credits = r.s.balances[id]
	return &cp, nil
}

func (r memProfiles) Upsert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.profiles[profile.ID]; ok {
		existing.Email = profile.Email
		existing.Name = profile.Name
		cp := *existing
		return &cp, nil
	}
	cp := *profile
	r.s.profiles[profile.ID] = &cp
	out := cp
	return &out, nil
}

func (r memProfiles) GrantSignupBonus(ctx context.Context, userID string, amount int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[userID]
	if !ok || p.SignupBonusAt != nil {
		return false, nil
	}
	now := time.Now()
	p.SignupBonusAt = &now
	r.s.balances[userID] += amount
	r.s.entries = append(r.s.entries, domain.CreditEntry{
		ID:           uuid.NewString(),
		UserID:       userID,
		EntryType:    domain.CreditEntrySignupBonus,
		Amount:       amount,
		BalanceAfter: r.s.balances[userID],
	})
	return true, nil
}

type memWebhooks struct{ s *memStore }

func (r memWebhooks) Record(ctx context.Context, provider, eventID string, payload []byte) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := provider + "/" + eventID
	if r.s.webhooks[key] {
		return false, nil
	}
	r.s.webhooks[key] = true
	return true, nil
}

type memUsage struct{ s *memStore }

func (r memUsage) RecordEvent(ctx context.Context, ev domain.UsageEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.usage = append(r.s.usage, ev)
	return nil
}

func (r memUsage) Summary(ctx context.Context) (*domain.UsageSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return &domain.UsageSummary{TotalJobs: len(r.s.usage)}, nil
}

// fakeAdapter is a configurable vendor double.
type fakeAdapter struct {
	mu        sync.Mutex
	submitErr error
	submits   []providers.SubmitRequest
	status    providers.StatusResult
	statusErr error
	result    providers.Result
	resultErr error
	cancelled []string
}

func (f *fakeAdapter) ID() domain.ProviderID { return domain.ProviderKie }

func (f *fakeAdapter) Submit(ctx context.Context, req providers.SubmitRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submits = append(f.submits, req)
	return fmt.Sprintf("task-%d", len(f.submits)), nil
}

func (f *fakeAdapter) PollStatus(ctx context.Context, taskID string) (providers.StatusResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return providers.StatusResult{}, f.statusErr
	}
	return f.status, nil
}

func (f *fakeAdapter) FetchResult(ctx context.Context, taskID string) (providers.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resultErr != nil {
		return providers.Result{}, f.resultErr
	}
	return f.result, nil
}

func (f *fakeAdapter) Cancel(ctx context.Context, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, taskID)
	return nil
}

type fakeProcessor struct {
	out postprocess.Output
	err error
}

func (f *fakeProcessor) Process(ctx context.Context, job *domain.Job, res providers.Result) (postprocess.Output, error) {
	if f.err != nil {
		return postprocess.Output{}, f.err
	}
	return f.out, nil
}

func newTestService(store *memStore, adapter *fakeAdapter, proc AssetProcessor) *GenerationService {
	registry := providers.Registry{}
	for _, id := range domain.Providers {
		registry[id] = adapter
	}
	if proc == nil {
		proc = &fakeProcessor{out: postprocess.Output{ResultURL: "https://cdn.example.com/a.webp", ThumbnailURL: "https://cdn.example.com/a_t.webp"}}
	}
	return NewGenerationService(GenerationOptions{
		Store:       store,
		Registry:    registry,
		Processor:   proc,
		WebhookBase: "https://api.example.com",
		JobMaxAge:   24 * time.Hour,
		Logger:      zerolog.Nop(),
	})
}

func TestSubmitDebitsAndCreatesJob(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	adapter := &fakeAdapter{}
	svc := newTestService(store, adapter, nil)

	job, err := svc.Submit(context.Background(), SubmitInput{
		OwnerID: "user-1",
		Type:    domain.JobTypeImageAd,
		Params:  json.RawMessage(`{"prompt":"sneaker hero shot"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInQueue, job.Status)
	assert.Equal(t, "task-1", job.ProviderTaskID)
	assert.Equal(t, 2, job.CreditsUsed)

	balance, _ := store.Credits().Balance(context.Background(), "user-1")
	assert.Equal(t, 8, balance)

	history, _ := store.Credits().History(context.Background(), "user-1", 10)
	require.Len(t, history, 1)
	assert.Equal(t, domain.CreditEntryDebit, history[0].EntryType)
	assert.Equal(t, -2, history[0].Amount)
}

func TestSubmitInsufficientCredits(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 3
	svc := newTestService(store, &fakeAdapter{}, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{
		OwnerID: "user-1",
		Type:    domain.JobTypeVideoAd,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientCredits)

	balance, _ := store.Credits().Balance(context.Background(), "user-1")
	assert.Equal(t, 3, balance)
	assert.Empty(t, store.jobs)
}

func TestSubmitVendorRejectionRefunds(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 5
	adapter := &fakeAdapter{submitErr: errors.New("upstream 500")}
	svc := newTestService(store, adapter, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{
		OwnerID: "user-1",
		Type:    domain.JobTypeAvatar,
	})
	require.Error(t, err)

	balance, _ := store.Credits().Balance(context.Background(), "user-1")
	assert.Equal(t, 5, balance, "failed submission must be refunded")

	require.Len(t, store.jobs, 1)
	for _, job := range store.jobs {
		assert.Equal(t, domain.JobStatusFailed, job.Status)
		assert.NotNil(t, job.RefundedAt)
	}
}

func TestConcurrentSubmissionsNeverOverspend(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 5
	svc := newTestService(store, &fakeAdapter{}, nil)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), SubmitInput{
				OwnerID: "user-1",
				Type:    domain.JobTypeAvatar,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, domain.ErrInsufficientCredits)
		}
	}
	assert.Equal(t, 5, succeeded)

	balance, _ := store.Credits().Balance(context.Background(), "user-1")
	assert.Equal(t, 0, balance)
}

func submitJob(t *testing.T, svc *GenerationService, store *memStore, owner string, jobType domain.JobType) *domain.Job {
	t.Helper()
	job, err := svc.Submit(context.Background(), SubmitInput{OwnerID: owner, Type: jobType})
	require.NoError(t, err)
	return job
}

func TestResolveCompletesJob(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	adapter := &fakeAdapter{
		status: providers.StatusResult{Status: domain.JobStatusCompleted},
		result: providers.Result{MediaURL: "https://vendor.example.com/out.png", MIME: "image/png"},
	}
	svc := newTestService(store, adapter, nil)
	job := submitJob(t, svc, store, "user-1", domain.JobTypeImageAd)

	require.NoError(t, svc.Resolve(context.Background(), job.ID))

	final, err := store.Jobs().GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, final.Status)
	assert.Equal(t, "https://cdn.example.com/a.webp", final.ResultURL)
	assert.Equal(t, "https://cdn.example.com/a_t.webp", final.ThumbnailURL)
	assert.NotNil(t, final.CompletedAt)

	balance, _ := store.Credits().Balance(context.Background(), "user-1")
	assert.Equal(t, 8, balance, "completion keeps the debit")
}

func TestResolveFailureRefundsExactlyOnce(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	adapter := &fakeAdapter{
		status: providers.StatusResult{Status: domain.JobStatusFailed, Detail: "NSFW filter"},
	}
	svc := newTestService(store, adapter, nil)
	job := submitJob(t, svc, store, "user-1", domain.JobTypeImageAd)

	require.NoError(t, svc.Resolve(context.Background(), job.ID))
	require.NoError(t, svc.Resolve(context.Background(), job.ID))

	final, _ := store.Jobs().GetByID(context.Background(), job.ID)
	assert.Equal(t, domain.JobStatusFailed, final.Status)
	assert.Equal(t, "NSFW filter", final.ErrorMessage)

	balance, _ := store.Credits().Balance(context.Background(), "user-1")
	assert.Equal(t, 10, balance)

	refunds := 0
	for _, e := range store.entries {
		if e.EntryType == domain.CreditEntryRefund {
			refunds++
		}
	}
	assert.Equal(t, 1, refunds)
}

func TestResolveTerminalShortCircuits(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	adapter := &fakeAdapter{
		status: providers.StatusResult{Status: domain.JobStatusCompleted},
		result: providers.Result{MediaURL: "https://vendor.example.com/out.png", MIME: "image/png"},
	}
	svc := newTestService(store, adapter, nil)
	job := submitJob(t, svc, store, "user-1", domain.JobTypeImageAd)
	require.NoError(t, svc.Resolve(context.Background(), job.ID))

	// A poll after completion must not reach the vendor at all.
	adapter.mu.Lock()
	adapter.statusErr = errors.New("must not be called")
	adapter.mu.Unlock()
	require.NoError(t, svc.Resolve(context.Background(), job.ID))
}

func TestResolveTransientPollErrorLeavesJobUntouched(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	adapter := &fakeAdapter{statusErr: errors.New("vendor timeout")}
	svc := newTestService(store, adapter, nil)
	job := submitJob(t, svc, store, "user-1", domain.JobTypeImageAd)

	require.Error(t, svc.Resolve(context.Background(), job.ID))

	final, _ := store.Jobs().GetByID(context.Background(), job.ID)
	assert.Equal(t, domain.JobStatusInQueue, final.Status)
	balance, _ := store.Credits().Balance(context.Background(), "user-1")
	assert.Equal(t, 8, balance)
}

func TestCompletionNeverForgedOnProcessingError(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	adapter := &fakeAdapter{
		status: providers.StatusResult{Status: domain.JobStatusCompleted},
		result: providers.Result{MediaURL: "https://vendor.example.com/out.png", MIME: "image/png"},
	}
	svc := newTestService(store, adapter, &fakeProcessor{err: errors.New("storage unavailable")})
	job := submitJob(t, svc, store, "user-1", domain.JobTypeImageAd)

	require.Error(t, svc.Resolve(context.Background(), job.ID))

	final, _ := store.Jobs().GetByID(context.Background(), job.ID)
	assert.NotEqual(t, domain.JobStatusCompleted, final.Status, "COMPLETED must imply a stored asset")
	assert.Nil(t, final.RefundedAt, "transient processing errors are not refunds")
}

func TestCompletionWithNoUsableOutputFailsAndRefunds(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	adapter := &fakeAdapter{
		status:    providers.StatusResult{Status: domain.JobStatusCompleted},
		resultErr: fmt.Errorf("no outputs: %w", domain.ErrProviderFailure),
	}
	svc := newTestService(store, adapter, nil)
	job := submitJob(t, svc, store, "user-1", domain.JobTypeImageAd)

	require.NoError(t, svc.Resolve(context.Background(), job.ID))

	final, _ := store.Jobs().GetByID(context.Background(), job.ID)
	assert.Equal(t, domain.JobStatusFailed, final.Status)
	balance, _ := store.Credits().Balance(context.Background(), "user-1")
	assert.Equal(t, 10, balance)
}

func TestWebhookDuplicateDeliveryIgnored(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	adapter := &fakeAdapter{}
	svc := newTestService(store, adapter, nil)
	job := submitJob(t, svc, store, "user-1", domain.JobTypeImageAd)

	ref := domain.TaskRef{Provider: job.Provider, TaskID: job.ProviderTaskID}
	require.NoError(t, svc.HandleWebhook(context.Background(), ref, "evt-1", nil, domain.JobStatusFailed, "boom"))
	require.NoError(t, svc.HandleWebhook(context.Background(), ref, "evt-1", nil, domain.JobStatusFailed, "boom"))

	refunds := 0
	for _, e := range store.entries {
		if e.EntryType == domain.CreditEntryRefund {
			refunds++
		}
	}
	assert.Equal(t, 1, refunds)
}

func TestWebhookUnknownTaskIsNoOp(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeAdapter{}, nil)

	err := svc.HandleWebhook(context.Background(),
		domain.TaskRef{Provider: domain.ProviderKie, TaskID: "never-seen"},
		"evt-9", nil, domain.JobStatusCompleted, "")
	require.NoError(t, err)
}

func TestRetryIsAFreshPaidAttempt(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	adapter := &fakeAdapter{
		status: providers.StatusResult{Status: domain.JobStatusFailed, Detail: "flaky"},
	}
	svc := newTestService(store, adapter, nil)
	job := submitJob(t, svc, store, "user-1", domain.JobTypeImageAd)

	require.NoError(t, svc.Resolve(context.Background(), job.ID))
	balance, _ := store.Credits().Balance(context.Background(), "user-1")
	require.Equal(t, 10, balance, "first failure refunded")

	retried, err := svc.Retry(context.Background(), "user-1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInQueue, retried.Status)
	assert.Nil(t, retried.RefundedAt, "retry resets the refund marker")

	balance, _ = store.Credits().Balance(context.Background(), "user-1")
	assert.Equal(t, 8, balance, "retry debits again")

	// The retried attempt failing again must be refundable again.
	require.NoError(t, svc.Resolve(context.Background(), job.ID))
	balance, _ = store.Credits().Balance(context.Background(), "user-1")
	assert.Equal(t, 10, balance)
}

func TestRetryRejectsNonFailedJobs(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	svc := newTestService(store, &fakeAdapter{}, nil)
	job := submitJob(t, svc, store, "user-1", domain.JobTypeImageAd)

	_, err := svc.Retry(context.Background(), "user-1", job.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelRefundsAndNotifiesVendor(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	adapter := &fakeAdapter{}
	svc := newTestService(store, adapter, nil)
	job := submitJob(t, svc, store, "user-1", domain.JobTypeVideoAd)

	cancelled, err := svc.Cancel(context.Background(), "user-1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCancelled, cancelled.Status)

	adapter.mu.Lock()
	assert.Equal(t, []string{job.ProviderTaskID}, adapter.cancelled)
	adapter.mu.Unlock()

	balance, _ := store.Credits().Balance(context.Background(), "user-1")
	assert.Equal(t, 10, balance)
}

func TestCancelTerminalJobRejected(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	adapter := &fakeAdapter{
		status: providers.StatusResult{Status: domain.JobStatusCompleted},
		result: providers.Result{MediaURL: "https://vendor.example.com/out.png", MIME: "image/png"},
	}
	svc := newTestService(store, adapter, nil)
	job := submitJob(t, svc, store, "user-1", domain.JobTypeImageAd)
	require.NoError(t, svc.Resolve(context.Background(), job.ID))

	_, err := svc.Cancel(context.Background(), "user-1", job.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestOwnershipHidesForeignJobs(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	svc := newTestService(store, &fakeAdapter{}, nil)
	job := submitJob(t, svc, store, "user-1", domain.JobTypeImageAd)

	_, err := svc.Get(context.Background(), "user-2", job.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSweepStaleFailsAndRefunds(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	svc := newTestService(store, &fakeAdapter{}, nil)
	job := submitJob(t, svc, store, "user-1", domain.JobTypeVideoAd)

	store.mu.Lock()
	store.jobs[job.ID].CreatedAt = time.Now().Add(-25 * time.Hour)
	store.mu.Unlock()

	swept, err := svc.SweepStale(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	final, _ := store.Jobs().GetByID(context.Background(), job.ID)
	assert.Equal(t, domain.JobStatusFailed, final.Status)
	balance, _ := store.Credits().Balance(context.Background(), "user-1")
	assert.Equal(t, 10, balance)
}

func TestSubmitEnhancesVisualPrompts(t *testing.T) {
	store := newMemStore()
	store.balances["user-1"] = 10
	adapter := &fakeAdapter{}
	svc := newTestService(store, adapter, nil)
	svc.enhancer = prompt.NewStaticEnhancer()

	_, err := svc.Submit(context.Background(), SubmitInput{
		OwnerID: "user-1",
		Type:    domain.JobTypeImageAd,
		Params:  json.RawMessage(`{"prompt":"espresso machine on marble","tone":"minimal"}`),
	})
	require.NoError(t, err)

	adapter.mu.Lock()
	defer adapter.mu.Unlock()
	require.Len(t, adapter.submits, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(adapter.submits[0].Params, &sent))
	got, _ := sent["prompt"].(string)
	assert.True(t, strings.Contains(got, "espresso machine on marble"))
	assert.True(t, strings.Contains(got, "clean background"))
}

func TestSubmitRejectsUnknownType(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeAdapter{}, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{OwnerID: "user-1", Type: "hologram"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

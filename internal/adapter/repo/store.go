package repo

import (
	"context"

	"adforge-server/internal/domain"
	"adforge-server/internal/infra"
)

// Store bundles the PostgreSQL repositories behind domain.TxStore. Repos
// outside a transaction run on the shared SQLRunner; InTx rebinds the
// job/credit repos to a single transaction so a debit and the job insert
// commit or roll back together.
type Store struct {
	runner *infra.SQLRunner

	jobs     *JobsPG
	credits  *CreditsPG
	profiles *ProfilesPG
	webhooks *WebhookEventsPG
	usage    *UsagePG
}

// NewStore creates the repository bundle.
func NewStore(runner *infra.SQLRunner) *Store {
	return &Store{
		runner:   runner,
		jobs:     NewJobRepository(runner),
		credits:  NewCreditRepository(runner),
		profiles: NewProfileRepository(runner),
		webhooks: NewWebhookEventRepository(runner),
		usage:    NewUsageRepository(runner),
	}
}

func (s *Store) Jobs() domain.JobRepository                   { return s.jobs }
func (s *Store) Credits() domain.CreditRepository             { return s.credits }
func (s *Store) Profiles() domain.ProfileRepository           { return s.profiles }
func (s *Store) WebhookEvents() domain.WebhookEventRepository { return s.webhooks }
func (s *Store) Usage() domain.UsageRepository                { return s.usage }

// InTx runs fn against job and credit repositories bound to one transaction.
func (s *Store) InTx(ctx context.Context, fn func(jobs domain.JobRepository, credits domain.CreditRepository) error) error {
	return s.runner.WithTx(ctx, func(tx infra.SQLExecutor) error {
		return fn(NewJobRepository(tx), NewCreditRepository(tx))
	})
}

var _ domain.TxStore = (*Store)(nil)

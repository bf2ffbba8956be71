package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"adforge-server/internal/domain"
)

// CreditService exposes balance reads and the non-generation credit grants:
// subscription renewals, signup bonuses and admin top-ups.
type CreditService struct {
	store domain.TxStore
	log   zerolog.Logger
}

func NewCreditService(store domain.TxStore, log zerolog.Logger) *CreditService {
	return &CreditService{store: store, log: log}
}

func (s *CreditService) Balance(ctx context.Context, userID string) (int, error) {
	return s.store.Credits().Balance(ctx, userID)
}

func (s *CreditService) History(ctx context.Context, userID string, limit int) ([]domain.CreditEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.Credits().History(ctx, userID, limit)
}

// RecordSubscriptionCredit applies a billing renewal. The caller is
// responsible for deduplicating the upstream billing event first.
func (s *CreditService) RecordSubscriptionCredit(ctx context.Context, userID string, amount int, description string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: credit amount must be positive", domain.ErrValidation)
	}
	return s.store.Credits().Credit(ctx, userID, amount, domain.CreditEntrySubscription, nil, description)
}

// GrantSignupBonus gives the one-time welcome credits. Repeated calls for
// the same user are no-ops.
func (s *CreditService) GrantSignupBonus(ctx context.Context, userID string) (bool, error) {
	granted, err := s.store.Profiles().GrantSignupBonus(ctx, userID, domain.SignupBonusCredits)
	if err != nil {
		return false, err
	}
	if granted {
		s.log.Info().Str("user_id", userID).Int("amount", domain.SignupBonusCredits).Msg("signup bonus granted")
	}
	return granted, nil
}

// AdminGrant tops up a user from the operations CLI.
func (s *CreditService) AdminGrant(ctx context.Context, userID string, amount int, description string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: grant amount must be positive", domain.ErrValidation)
	}
	if description == "" {
		description = "manual credit grant"
	}
	return s.store.Credits().Credit(ctx, userID, amount, domain.CreditEntryAdminGrant, nil, description)
}

// EnsureProfile upserts the profile row for an authenticated subject and
// grants the signup bonus on first sight.
func (s *CreditService) EnsureProfile(ctx context.Context, id, email, name string) (*domain.Profile, error) {
	profile, err := s.store.Profiles().Upsert(ctx, &domain.Profile{
		ID:    id,
		Email: email,
		Name:  name,
		Plan:  domain.UserPlanFree,
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.GrantSignupBonus(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Profiles().GetByID(ctx, id)
}

// UsageSummary returns the aggregate counters for the metrics endpoint.
func (s *CreditService) UsageSummary(ctx context.Context) (*domain.UsageSummary, error) {
	return s.store.Usage().Summary(ctx)
}

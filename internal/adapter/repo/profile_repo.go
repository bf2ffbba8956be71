package repo

import (
	"context"

	"adforge-server/internal/domain"
	"adforge-server/internal/infra"
	"adforge-server/internal/sqlinline"
)

// ProfilesPG implements domain.ProfileRepository.
type ProfilesPG struct {
	sql infra.SQLExecutor
}

// NewProfileRepository creates a profile repository bound to the given executor.
func NewProfileRepository(sql infra.SQLExecutor) *ProfilesPG {
	return &ProfilesPG{sql: sql}
}

// GetByID fetches a profile.
func (r *ProfilesPG) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectProfile, id)
	return scanProfile(row.Scan)
}

// Upsert creates or refreshes a profile from the auth layer's claims.
func (r *ProfilesPG) Upsert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertProfile,
		profile.ID, profile.Email, profile.Name, profile.Plan, profile.Country)
	return scanProfile(row.Scan)
}

// GrantSignupBonus applies the one-time bonus; losing the signup_bonus_at
// guard means it was already granted.
func (r *ProfilesPG) GrantSignupBonus(ctx context.Context, userID string, amount int) (bool, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QGrantSignupBonus, userID, amount)
	var balance int
	if err := row.Scan(&balance); err != nil {
		if infra.IsNoRows(err) {
			return false, nil
		}
		return false, err
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertCreditEntry,
		userID, domain.CreditEntrySignupBonus, amount, balance, nil, "signup bonus")
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanProfile(scan func(dest ...any) error) (*domain.Profile, error) {
	var p domain.Profile
	if err := scan(
		&p.ID,
		&p.Email,
		&p.Name,
		&p.Plan,
		&p.Credits,
		&p.Country,
		&p.SignupBonusAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

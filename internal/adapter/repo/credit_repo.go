package repo

import (
	"context"

	"adforge-server/internal/domain"
	"adforge-server/internal/infra"
	"adforge-server/internal/sqlinline"
)

// CreditsPG implements domain.CreditRepository. The balance lives on the
// profile row; every mutation appends a ledger entry carrying the balance
// after the change.
type CreditsPG struct {
	sql infra.SQLExecutor
}

// NewCreditRepository creates a credit repository bound to the given executor.
func NewCreditRepository(sql infra.SQLExecutor) *CreditsPG {
	return &CreditsPG{sql: sql}
}

// DebitIfSufficient decrements the balance only when it covers amount. The
// conditional UPDATE is the whole race guard: no row updated means the
// balance was short at the moment the statement ran.
func (r *CreditsPG) DebitIfSufficient(ctx context.Context, userID string, amount int, jobID string) (bool, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QDebitCredits, userID, amount)
	var balance int
	if err := row.Scan(&balance); err != nil {
		if infra.IsNoRows(err) {
			return false, nil
		}
		return false, err
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertCreditEntry,
		userID, domain.CreditEntryDebit, -amount, balance, &jobID, "generation charge")
	if err != nil {
		return false, err
	}
	return true, nil
}

// Credit unconditionally increments the balance and appends a ledger entry.
func (r *CreditsPG) Credit(ctx context.Context, userID string, amount int, entryType domain.CreditEntryType, jobID *string, description string) error {
	row := r.sql.QueryRow(ctx, sqlinline.QAddCredits, userID, amount)
	var balance int
	if err := row.Scan(&balance); err != nil {
		if infra.IsNoRows(err) {
			return domain.ErrNotFound
		}
		return err
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertCreditEntry,
		userID, entryType, amount, balance, jobID, description)
	return err
}

// Balance returns the current credit balance.
func (r *CreditsPG) Balance(ctx context.Context, userID string) (int, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectCreditBalance, userID)
	var balance int
	if err := row.Scan(&balance); err != nil {
		if infra.IsNoRows(err) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

// History returns the user's most recent ledger entries.
func (r *CreditsPG) History(ctx context.Context, userID string, limit int) ([]domain.CreditEntry, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectCreditHistory, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []domain.CreditEntry
	for rows.Next() {
		var e domain.CreditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.EntryType, &e.Amount, &e.BalanceAfter, &e.JobID, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

package handlers

import (
	"net/http"
	"strconv"
	"time"
)

func (a *App) CreditBalance(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "missing user context")
		return
	}
	balance, err := a.Credits.Balance(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"credits": balance})
}

type creditEntryView struct {
	ID           string    `json:"id"`
	EntryType    string    `json:"entry_type"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balance_after"`
	JobID        *string   `json:"job_id,omitempty"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a *App) CreditHistory(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "missing user context")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := a.Credits.History(r.Context(), userID, limit)
	if err != nil {
		a.domainError(w, err)
		return
	}
	items := make([]creditEntryView, 0, len(entries))
	for _, e := range entries {
		items = append(items, creditEntryView{
			ID:           e.ID,
			EntryType:    string(e.EntryType),
			Amount:       e.Amount,
			BalanceAfter: e.BalanceAfter,
			JobID:        e.JobID,
			Description:  e.Description,
			CreatedAt:    e.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

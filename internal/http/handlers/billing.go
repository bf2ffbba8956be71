package handlers

import (
	"encoding/json"
	"io"
	"net/http"
)

type billingEvent struct {
	EventID     string `json:"event_id" validate:"required"`
	UserID      string `json:"user_id" validate:"required"`
	Credits     int    `json:"credits" validate:"required,gt=0"`
	Description string `json:"description"`
}

// BillingWebhook applies subscription credit grants pushed by the billing
// provider. Deliveries are deduplicated by event id, so retries are safe.
func (a *App) BillingWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		a.error(w, http.StatusBadRequest, "unreadable payload")
		return
	}
	var ev billingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := a.validate.Struct(ev); err != nil {
		a.error(w, http.StatusBadRequest, "event_id, user_id and positive credits are required")
		return
	}

	first, err := a.Store.WebhookEvents().Record(r.Context(), "billing", ev.EventID, body)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if !first {
		a.json(w, http.StatusOK, map[string]string{"status": "duplicate"})
		return
	}

	description := ev.Description
	if description == "" {
		description = "subscription credit"
	}
	if err := a.Credits.RecordSubscriptionCredit(r.Context(), ev.UserID, ev.Credits, description); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

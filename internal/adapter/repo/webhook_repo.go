package repo

import (
	"context"

	"adforge-server/internal/infra"
	"adforge-server/internal/sqlinline"
)

// WebhookEventsPG implements domain.WebhookEventRepository on top of the
// (provider, event_id) unique constraint.
type WebhookEventsPG struct {
	sql infra.SQLExecutor
}

// NewWebhookEventRepository creates a webhook event repository.
func NewWebhookEventRepository(sql infra.SQLExecutor) *WebhookEventsPG {
	return &WebhookEventsPG{sql: sql}
}

// Record stores the delivery; zero rows inserted means a duplicate.
func (r *WebhookEventsPG) Record(ctx context.Context, provider, eventID string, payload []byte) (bool, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QInsertWebhookEvent, provider, eventID, nullableBytes(payload))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

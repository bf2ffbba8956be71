package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"adforge-server/internal/infra"
	"adforge-server/internal/sqlinline"
)

// Store resolves vendor API keys from the integration_tokens table. Keys set
// through the environment take precedence; the store is the fallback so keys
// can be rotated without a redeploy.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Token returns the stored API key for the given vendor, or "" when absent.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// SetToken stores or replaces the API key for a vendor.
func (s *Store) SetToken(ctx context.Context, provider, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("credentials: token is required")
	}
	return s.upsert(ctx, provider, token, nil)
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}

package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"wishcdp/internal/infra"
	"wishcdp/internal/sqlinline"
)

const (
	ProviderGemini       = "gemini"
	ProviderGoogleSearch = "google_search"
)

// Store reads and writes third-party API keys persisted alongside the rest of
// the service state, so deployments can rotate credentials without restarts.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGemini)
}

func (s *Store) GoogleSearchAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGoogleSearch)
}

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

func (s *Store) SetGeminiAPIKey(ctx context.Context, key string) error {
	return s.SetToken(ctx, ProviderGemini, key)
}

func (s *Store) SetGoogleSearchAPIKey(ctx context.Context, key string) error {
	return s.SetToken(ctx, ProviderGoogleSearch, key)
}

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

// Package setup assembles the vendor adapter registry from configuration.
package setup

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"adforge-server/internal/domain"
	"adforge-server/internal/infra"
	"adforge-server/internal/infra/credentials"
	"adforge-server/internal/providers"
	"adforge-server/internal/providers/byteplus"
	"adforge-server/internal/providers/elevenlabs"
	"adforge-server/internal/providers/fal"
	"adforge-server/internal/providers/gemini"
	"adforge-server/internal/providers/kie"
	"adforge-server/internal/providers/wavespeed"
)

// NewRegistry builds the adapter registry. Keys missing from the environment
// fall back to the DB-backed credentials store so they can be rotated
// without a redeploy.
func NewRegistry(ctx context.Context, cfg *infra.Config, creds *credentials.Store, log zerolog.Logger) providers.Registry {
	httpClient := &http.Client{Timeout: 60 * time.Second}
	key := func(envValue string, provider domain.ProviderID) string {
		if v := strings.TrimSpace(envValue); v != "" {
			return v
		}
		if creds == nil {
			return ""
		}
		stored, err := creds.Token(ctx, string(provider))
		if err != nil {
			log.Warn().Str("provider", string(provider)).Err(err).Msg("credentials store lookup failed")
			return ""
		}
		return stored
	}

	registry := providers.Registry{
		domain.ProviderKie: kie.NewClient(kie.Options{
			BaseURL:    cfg.KieBaseURL,
			APIKey:     key(cfg.KieAPIKey, domain.ProviderKie),
			HTTPClient: httpClient,
		}),
		domain.ProviderFal: fal.NewClient(fal.Options{
			BaseURL:    cfg.FalBaseURL,
			APIKey:     key(cfg.FalAPIKey, domain.ProviderFal),
			HTTPClient: httpClient,
		}),
		domain.ProviderBytePlus: byteplus.NewClient(byteplus.Options{
			BaseURL:    cfg.BytePlusBaseURL,
			APIKey:     key(cfg.BytePlusAPIKey, domain.ProviderBytePlus),
			HTTPClient: httpClient,
		}),
		domain.ProviderWaveSpeed: wavespeed.NewClient(wavespeed.Options{
			BaseURL:    cfg.WaveSpeedBaseURL,
			APIKey:     key(cfg.WaveSpeedAPIKey, domain.ProviderWaveSpeed),
			HTTPClient: httpClient,
		}),
		domain.ProviderElevenLabs: elevenlabs.NewClient(elevenlabs.Options{
			BaseURL:    cfg.ElevenLabsBase,
			APIKey:     key(cfg.ElevenLabsAPIKey, domain.ProviderElevenLabs),
			HTTPClient: httpClient,
		}),
		domain.ProviderGemini: gemini.NewClient(gemini.Options{
			BaseURL:    cfg.GeminiBaseURL,
			APIKey:     key(cfg.GeminiAPIKey, domain.ProviderGemini),
			Model:      cfg.GeminiModel,
			HTTPClient: httpClient,
		}),
	}
	return registry
}

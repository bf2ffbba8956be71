// Package prompt enriches raw user prompts before they reach a vendor.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"adforge-server/internal/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const staticProviderName = "static"

type EnhanceRequest struct {
	Type    domain.JobType
	Prompt  string
	Product string
	Tone    string
}

type EnhanceResponse struct {
	Prompt   string            `json:"prompt"`
	Keywords []string          `json:"keywords"`
	Metadata map[string]string `json:"metadata"`
	Provider string            `json:"-"`
}

type Enhancer interface {
	Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error)
}

// StaticEnhancer applies deterministic template-based enrichment. It keeps
// submissions working when no LLM-backed enhancer is configured.
type StaticEnhancer struct{}

func NewStaticEnhancer() *StaticEnhancer {
	return &StaticEnhancer{}
}

var toneKeywords = map[string][]string{
	"premium":   {"studio lighting", "high detail", "product hero shot"},
	"playful":   {"vibrant colors", "dynamic composition", "bold typography"},
	"minimal":   {"clean background", "negative space", "soft shadows"},
	"cinematic": {"dramatic lighting", "shallow depth of field", "film grain"},
}

func (s *StaticEnhancer) Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error) {
	base := strings.TrimSpace(req.Prompt)
	if base == "" {
		return nil, fmt.Errorf("%w: prompt is empty", domain.ErrValidation)
	}
	tone := strings.ToLower(strings.TrimSpace(req.Tone))
	if tone == "" {
		tone = "premium"
	}
	keywords, ok := toneKeywords[tone]
	if !ok {
		keywords = toneKeywords["premium"]
	}

	c := cases.Title(language.Und)
	parts := []string{base}
	if product := strings.TrimSpace(req.Product); product != "" {
		parts = append(parts, fmt.Sprintf("featuring %s", c.String(product)))
	}
	parts = append(parts, strings.Join(keywords, ", "))
	if req.Type == domain.JobTypeVideoAd {
		parts = append(parts, "smooth camera motion")
	}

	return &EnhanceResponse{
		Prompt:   strings.Join(parts, ", "),
		Keywords: keywords,
		Metadata: map[string]string{"tone": tone},
		Provider: staticProviderName,
	}, nil
}

var _ Enhancer = (*StaticEnhancer)(nil)

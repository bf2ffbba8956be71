package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"adforge-server/internal/domain"
)

func TestStaticEnhancerEnhance(t *testing.T) {
	e := NewStaticEnhancer()
	res, err := e.Enhance(context.Background(), EnhanceRequest{
		Type:    domain.JobTypeImageAd,
		Prompt:  "sneaker on a rooftop at sunset",
		Product: "running shoes",
		Tone:    "cinematic",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Prompt, "sneaker on a rooftop at sunset") {
		t.Errorf("enhanced prompt dropped the original text: %q", res.Prompt)
	}
	if !strings.Contains(res.Prompt, "Running Shoes") {
		t.Errorf("product name not title-cased into prompt: %q", res.Prompt)
	}
	if res.Metadata["tone"] != "cinematic" {
		t.Errorf("tone metadata = %q", res.Metadata["tone"])
	}
}

func TestStaticEnhancerVideoMotion(t *testing.T) {
	e := NewStaticEnhancer()
	res, err := e.Enhance(context.Background(), EnhanceRequest{
		Type:   domain.JobTypeVideoAd,
		Prompt: "coffee pour over",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Prompt, "smooth camera motion") {
		t.Errorf("video prompt missing motion hint: %q", res.Prompt)
	}
}

func TestStaticEnhancerEmptyPrompt(t *testing.T) {
	e := NewStaticEnhancer()
	if _, err := e.Enhance(context.Background(), EnhanceRequest{Type: domain.JobTypeImageAd}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStaticEnhancerUnknownToneFallsBack(t *testing.T) {
	e := NewStaticEnhancer()
	res, err := e.Enhance(context.Background(), EnhanceRequest{
		Type:   domain.JobTypeImageAd,
		Prompt: "watch close-up",
		Tone:   "grunge",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Metadata["tone"] != "grunge" {
		t.Errorf("tone metadata = %q", res.Metadata["tone"])
	}
	if !strings.Contains(res.Prompt, "studio lighting") {
		t.Errorf("fallback keywords missing: %q", res.Prompt)
	}
}

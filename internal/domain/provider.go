package domain

// ProviderID identifies a generative AI vendor.
type ProviderID string

const (
	ProviderKie        ProviderID = "kie"
	ProviderFal        ProviderID = "fal"
	ProviderBytePlus   ProviderID = "byteplus"
	ProviderWaveSpeed  ProviderID = "wavespeed"
	ProviderElevenLabs ProviderID = "elevenlabs"
	ProviderGemini     ProviderID = "gemini"
)

// Providers lists every known vendor.
var Providers = []ProviderID{
	ProviderKie,
	ProviderFal,
	ProviderBytePlus,
	ProviderWaveSpeed,
	ProviderElevenLabs,
	ProviderGemini,
}

// Valid reports whether p is a known vendor.
func (p ProviderID) Valid() bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}

// DefaultProviderFor returns the vendor a job type is routed to unless the
// request overrides it.
func DefaultProviderFor(t JobType) ProviderID {
	switch t {
	case JobTypeAvatar, JobTypeOutfitSwap:
		return ProviderKie
	case JobTypeImageAd:
		return ProviderGemini
	case JobTypeVideoAd:
		return ProviderFal
	case JobTypeMusic:
		return ProviderWaveSpeed
	case JobTypeVoiceover, JobTypeVoiceClone:
		return ProviderElevenLabs
	case JobTypeUpscale:
		return ProviderBytePlus
	}
	return ProviderFal
}

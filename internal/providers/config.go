package providers

import (
	"log/slog"

	"chatrelay/config"
	"chatrelay/internal/core"
)

// ProviderConfig is the resolved configuration for one provider adapter.
type ProviderConfig struct {
	Type    core.ProviderType
	APIKey  string
	BaseURL string
}

// resolveProviders returns one ProviderConfig per known variant. Providers without
// a key stay enabled: the upstream rejects the call and that body is passed back.
func resolveProviders(cfg *config.Config) []ProviderConfig {
	sections := map[core.ProviderType]config.ProviderConfig{
		core.ProviderOpenAI: cfg.OpenAI,
		core.ProviderGemini: cfg.Gemini,
	}

	resolved := make([]ProviderConfig, 0, len(core.KnownProviders))
	for _, t := range core.KnownProviders {
		section := sections[t]
		if section.APIKey == "" {
			slog.Warn("provider API key not set; upstream calls will be unauthenticated", "provider", t)
		}
		resolved = append(resolved, ProviderConfig{Type: t, APIKey: section.APIKey, BaseURL: section.BaseURL})
	}
	return resolved
}

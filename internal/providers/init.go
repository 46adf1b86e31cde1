package providers

import (
	"fmt"
	"log/slog"

	"chatrelay/config"
	"chatrelay/internal/core"
)

// Init builds one adapter per known provider through factory and returns the router.
// Hooks and the HTTP client should already be set on the factory; the response
// policy is taken from cfg.Upstream.Errors.
func Init(cfg *config.Config, factory *ProviderFactory) (*Router, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if factory == nil {
		return nil, fmt.Errorf("factory is required")
	}

	policy, err := PolicyByName(cfg.Upstream.Errors)
	if err != nil {
		return nil, err
	}
	opts := factory.options()
	opts.Policy = policy
	factory.SetOptions(opts)

	adapters := make(map[core.ProviderType]core.Adapter)
	for _, pc := range resolveProviders(cfg) {
		adapter, err := factory.Create(pc)
		if err != nil {
			return nil, fmt.Errorf("failed to create provider %s (registered: %v): %w", pc.Type, factory.ListRegistered(), err)
		}
		adapters[pc.Type] = adapter
		slog.Info("provider registered", "provider", pc.Type, "custom_base_url", pc.BaseURL != "")
	}

	return NewRouter(adapters)
}

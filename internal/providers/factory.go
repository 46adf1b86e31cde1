// Package providers binds provider adapters to their variants and routes chat requests.
package providers

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	"chatrelay/internal/core"
	"chatrelay/internal/llmclient"
)

// ProviderOptions carries shared dependencies handed to every adapter builder.
type ProviderOptions struct {
	// HTTPClient is the outbound client; nil means the llmclient default.
	HTTPClient *http.Client
	// Hooks observe outbound requests (metrics).
	Hooks llmclient.Hooks
	// Policy turns upstream responses into the value returned to callers.
	Policy ResponsePolicy
}

// Builder creates an adapter from its resolved configuration.
type Builder func(cfg ProviderConfig, opts ProviderOptions) core.Adapter

// Registration provides factory registration for a provider adapter package.
type Registration struct {
	Type core.ProviderType
	New  Builder
}

// ProviderFactory holds adapter builders keyed by provider variant.
type ProviderFactory struct {
	mu       sync.RWMutex
	builders map[core.ProviderType]Builder
	opts     ProviderOptions
}

// NewProviderFactory creates an empty factory.
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{
		builders: make(map[core.ProviderType]Builder),
	}
}

// Add registers an adapter package.
func (f *ProviderFactory) Add(reg Registration) {
	f.Register(reg.Type, reg.New)
}

// Register binds builder to providerType, replacing any earlier binding.
func (f *ProviderFactory) Register(providerType core.ProviderType, builder Builder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[providerType] = builder
}

// SetOptions sets the options passed to every builder. Call before Create.
func (f *ProviderFactory) SetOptions(opts ProviderOptions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts = opts
}

func (f *ProviderFactory) options() ProviderOptions {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.opts
}

// Create instantiates the adapter for cfg.Type and applies cfg.BaseURL when set.
func (f *ProviderFactory) Create(cfg ProviderConfig) (core.Adapter, error) {
	f.mu.RLock()
	builder, ok := f.builders[cfg.Type]
	opts := f.opts
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
	if opts.Policy == nil {
		opts.Policy = Passthrough
	}

	adapter := builder(cfg, opts)
	if cfg.BaseURL != "" {
		if setter, ok := adapter.(interface{ SetBaseURL(string) }); ok {
			setter.SetBaseURL(cfg.BaseURL)
		}
	}
	return adapter, nil
}

// ListRegistered returns the registered provider variants in sorted order.
func (f *ProviderFactory) ListRegistered() []core.ProviderType {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]core.ProviderType, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

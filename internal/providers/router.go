package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"chatrelay/internal/core"
)

// Route outcomes reported to a RouteObserver.
const (
	OutcomeRouted      = "routed"
	OutcomeUnsupported = "unsupported"
	OutcomeError       = "error"
)

// RouteObserver records one routing decision. provider is empty for unsupported
// requests; the caller's raw value is never passed on.
type RouteObserver interface {
	ObserveRoute(provider core.ProviderType, outcome string)
}

// Router dispatches chat requests to the adapter bound to the request's provider.
// It holds no mutable state after construction and is safe for concurrent use.
type Router struct {
	adapters map[core.ProviderType]core.Adapter
	observer RouteObserver
}

// NewRouter creates a router over the given adapters. A variant with no adapter
// is answered like an unknown provider.
func NewRouter(adapters map[core.ProviderType]core.Adapter) (*Router, error) {
	if len(adapters) == 0 {
		return nil, fmt.Errorf("at least one provider adapter is required")
	}
	bound := make(map[core.ProviderType]core.Adapter, len(adapters))
	for t, a := range adapters {
		if a == nil {
			return nil, fmt.Errorf("adapter for %s cannot be nil", t)
		}
		bound[t] = a
	}
	return &Router{adapters: bound}, nil
}

// SetObserver installs a route observer. Not safe to call once serving.
func (r *Router) SetObserver(o RouteObserver) {
	r.observer = o
}

// Route sends req to its provider and returns the provider's body unmodified.
// Unknown providers get core.UnsupportedProviderResponse without any outbound call.
func (r *Router) Route(ctx context.Context, req *core.ChatRequest) (json.RawMessage, error) {
	providerType, ok := core.ParseProviderType(req.Provider)
	var adapter core.Adapter
	if ok {
		adapter, ok = r.adapters[providerType]
	}
	if !ok {
		slog.DebugContext(ctx, "unsupported provider", "provider", req.Provider, "request_id", core.GetRequestID(ctx))
		r.observe("", OutcomeUnsupported)
		return core.UnsupportedProviderResponse, nil
	}

	slog.DebugContext(ctx, "routing chat request",
		"provider", providerType,
		"model", req.Model,
		"request_id", core.GetRequestID(ctx),
	)

	body, err := adapter.Send(ctx, req.Model, req.Message)
	if err != nil {
		r.observe(providerType, OutcomeError)
		return nil, err
	}
	r.observe(providerType, OutcomeRouted)
	return body, nil
}

// Providers returns the bound provider variants in sorted order.
func (r *Router) Providers() []core.ProviderType {
	types := make([]core.ProviderType, 0, len(r.adapters))
	for t := range r.adapters {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func (r *Router) observe(provider core.ProviderType, outcome string) {
	if r.observer != nil {
		r.observer.ObserveRoute(provider, outcome)
	}
}

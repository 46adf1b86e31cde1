// Package core defines the core interfaces and types for the chat relay.
package core

import (
	"context"
	"encoding/json"
)

// Adapter translates a chat message into one provider's HTTP call shape.
// The returned body is the upstream JSON response, unmodified.
type Adapter interface {
	// Send posts message to the provider using model and returns the raw response body.
	Send(ctx context.Context, model, message string) (json.RawMessage, error)
}

// ChatRouter dispatches a ChatRequest to the adapter bound to its provider.
type ChatRouter interface {
	Route(ctx context.Context, req *ChatRequest) (json.RawMessage, error)

	// Providers returns the provider variants that have an adapter bound.
	Providers() []ProviderType
}

// Package openai provides the OpenAI chat-completions adapter.
package openai

import (
	"context"
	"encoding/json"
	"net/http"

	"chatrelay/internal/core"
	"chatrelay/internal/llmclient"
	"chatrelay/internal/providers"
)

// Registration provides factory registration for the OpenAI provider.
var Registration = providers.Registration{
	Type: core.ProviderOpenAI,
	New:  New,
}

const (
	defaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when the caller leaves the model empty.
	DefaultModel = "gpt-3.5-turbo"
	// SystemPrompt is sent ahead of every user message.
	SystemPrompt = "You are a helpful AI assistant."
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

// Provider implements core.Adapter for OpenAI
type Provider struct {
	client *llmclient.Client
	apiKey string
	policy providers.ResponsePolicy
}

// New creates a new OpenAI adapter.
func New(cfg providers.ProviderConfig, opts providers.ProviderOptions) core.Adapter {
	p := &Provider{apiKey: cfg.APIKey, policy: opts.Policy}
	clientCfg := llmclient.Config{
		Provider: core.ProviderOpenAI,
		BaseURL:  defaultBaseURL,
		Hooks:    opts.Hooks,
	}
	if opts.HTTPClient != nil {
		p.client = llmclient.NewWithHTTPClient(opts.HTTPClient, clientCfg, p.setHeaders)
	} else {
		p.client = llmclient.New(clientCfg, p.setHeaders)
	}
	return p
}

// NewWithHTTPClient creates a new OpenAI adapter with a custom HTTP client and the
// passthrough policy. If httpClient is nil, http.DefaultClient is used.
func NewWithHTTPClient(apiKey string, httpClient *http.Client, hooks llmclient.Hooks) *Provider {
	p := &Provider{apiKey: apiKey, policy: providers.Passthrough}
	p.client = llmclient.NewWithHTTPClient(httpClient, llmclient.Config{
		Provider: core.ProviderOpenAI,
		BaseURL:  defaultBaseURL,
		Hooks:    hooks,
	}, p.setHeaders)
	return p
}

// SetBaseURL allows configuring a custom base URL for the provider
func (p *Provider) SetBaseURL(url string) {
	p.client.SetBaseURL(url)
}

// setHeaders sets the required headers for OpenAI API requests
func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	// OpenAI rejects X-Client-Request-Id values that are not ASCII or exceed 512 bytes.
	if requestID := core.GetRequestID(req.Context()); requestID != "" && isValidClientRequestID(requestID) {
		req.Header.Set("X-Client-Request-Id", requestID)
	}
}

func isValidClientRequestID(id string) bool {
	if len(id) > 512 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] > 127 {
			return false
		}
	}
	return true
}

// buildRequest returns the chat-completions body for model and message.
func buildRequest(model, msg string) *chatRequest {
	if model == "" {
		model = DefaultModel
	}
	return &chatRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: msg},
		},
	}
}

// Send posts message to /chat/completions and returns the response body.
func (p *Provider) Send(ctx context.Context, model, msg string) (json.RawMessage, error) {
	resp, err := p.client.DoRaw(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/chat/completions",
		Body:     buildRequest(model, msg),
	})
	if err != nil {
		return nil, err
	}
	return providers.HandleResponse(ctx, core.ProviderOpenAI, resp, p.policy)
}

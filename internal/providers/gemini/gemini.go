// Package gemini provides the Google Gemini generateContent adapter.
package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"chatrelay/internal/core"
	"chatrelay/internal/llmclient"
	"chatrelay/internal/providers"
)

// Registration provides factory registration for the Gemini provider.
var Registration = providers.Registration{
	Type: core.ProviderGemini,
	New:  New,
}

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

// Provider implements core.Adapter for Google Gemini
type Provider struct {
	client *llmclient.Client
	apiKey string
	policy providers.ResponsePolicy
}

// New creates a new Gemini adapter.
func New(cfg providers.ProviderConfig, opts providers.ProviderOptions) core.Adapter {
	p := &Provider{apiKey: cfg.APIKey, policy: opts.Policy}
	clientCfg := llmclient.Config{
		Provider: core.ProviderGemini,
		BaseURL:  defaultBaseURL,
		Hooks:    opts.Hooks,
	}
	// Auth travels in the query string, so there is no header setter.
	if opts.HTTPClient != nil {
		p.client = llmclient.NewWithHTTPClient(opts.HTTPClient, clientCfg, nil)
	} else {
		p.client = llmclient.New(clientCfg, nil)
	}
	return p
}

// NewWithHTTPClient creates a new Gemini adapter with a custom HTTP client and the
// passthrough policy. If httpClient is nil, http.DefaultClient is used.
func NewWithHTTPClient(apiKey string, httpClient *http.Client, hooks llmclient.Hooks) *Provider {
	return &Provider{
		apiKey: apiKey,
		policy: providers.Passthrough,
		client: llmclient.NewWithHTTPClient(httpClient, llmclient.Config{
			Provider: core.ProviderGemini,
			BaseURL:  defaultBaseURL,
			Hooks:    hooks,
		}, nil),
	}
}

// SetBaseURL allows configuring a custom base URL for the provider
func (p *Provider) SetBaseURL(url string) {
	p.client.SetBaseURL(url)
}

// endpoint returns the generateContent path for model. The model is not defaulted:
// an empty model yields "/models/:generateContent" and the upstream rejects it.
func endpoint(model string) string {
	return "/models/" + model + ":generateContent"
}

// Send posts message to models/{model}:generateContent and returns the response body.
//
// NOTE: Google's native API takes the key as the "key" query parameter. The key can
// end up in proxy access logs; llmclient strips URLs from transport errors.
func (p *Provider) Send(ctx context.Context, model, msg string) (json.RawMessage, error) {
	resp, err := p.client.DoRaw(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: endpoint(model),
		Query:    url.Values{"key": {p.apiKey}},
		Body: &generateContentRequest{
			Contents: []content{{Parts: []part{{Text: msg}}}},
		},
	})
	if err != nil {
		return nil, err
	}
	return providers.HandleResponse(ctx, core.ProviderGemini, resp, p.policy)
}

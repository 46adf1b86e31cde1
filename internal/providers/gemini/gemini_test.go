package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatrelay/internal/core"
	"chatrelay/internal/llmclient"
	"chatrelay/internal/providers"
)

func TestNew(t *testing.T) {
	provider := NewWithHTTPClient("gm-key", nil, llmclient.Hooks{})

	if provider.apiKey != "gm-key" {
		t.Errorf("apiKey = %q, want %q", provider.apiKey, "gm-key")
	}
	if provider.client.BaseURL() != defaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", provider.client.BaseURL(), defaultBaseURL)
	}
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "/models/gemini-pro:generateContent", endpoint("gemini-pro"))
	assert.Equal(t, "/models/:generateContent", endpoint(""), "empty model is not defaulted")
}

func TestSend_RequestShape(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotKey    string
		gotHeader http.Header
		gotBody   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotHeader = r.Header.Clone()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read request body: %v", err)
		}
		gotBody = string(body)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hi!"}],"role":"model"}}]}`))
	}))
	defer server.Close()

	provider := NewWithHTTPClient("gm-secret", nil, llmclient.Hooks{})
	provider.SetBaseURL(server.URL)

	body, err := provider.Send(context.Background(), "gemini-pro", "hello")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/models/gemini-pro:generateContent", gotPath)
	assert.Equal(t, "gm-secret", gotKey)
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Empty(t, gotHeader.Get("Authorization"), "gemini auth goes in the query string only")
	assert.JSONEq(t, `{"contents":[{"parts":[{"text":"hello"}]}]}`, gotBody)
	assert.JSONEq(t, `{"candidates":[{"content":{"parts":[{"text":"Hi!"}],"role":"model"}}]}`, string(body))
}

func TestSend_EmptyModel(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"models/ is not found","status":"NOT_FOUND"}}`))
	}))
	defer server.Close()

	provider := NewWithHTTPClient("gm-secret", nil, llmclient.Hooks{})
	provider.SetBaseURL(server.URL)

	body, err := provider.Send(context.Background(), "", "hello")
	require.NoError(t, err)
	assert.Equal(t, "/models/:generateContent", gotPath)
	assert.Contains(t, string(body), "NOT_FOUND")
}

func TestSend_UpstreamErrorPassthrough(t *testing.T) {
	const upstream = `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(upstream))
	}))
	defer server.Close()

	provider := NewWithHTTPClient("", nil, llmclient.Hooks{})
	provider.SetBaseURL(server.URL)

	body, err := provider.Send(context.Background(), "gemini-pro", "hello")
	require.NoError(t, err)
	assert.Equal(t, upstream, string(body))
}

func TestSend_NormalizeErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	adapter := New(providers.ProviderConfig{Type: core.ProviderGemini, APIKey: "k"}, providers.ProviderOptions{
		HTTPClient: server.Client(),
		Policy:     providers.NormalizeErrors,
	})
	adapter.(*Provider).SetBaseURL(server.URL)

	_, err := adapter.Send(context.Background(), "gemini-pro", "hello")
	require.Error(t, err)

	var gatewayErr *core.GatewayError
	require.True(t, errors.As(err, &gatewayErr))
	assert.Equal(t, core.ErrorTypeRateLimit, gatewayErr.Type)
	assert.Equal(t, core.ProviderGemini, gatewayErr.Provider)
}

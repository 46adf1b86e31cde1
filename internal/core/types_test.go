package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProviderType(t *testing.T) {
	tests := []struct {
		name   string
		want   ProviderType
		wantOK bool
	}{
		{"openai", ProviderOpenAI, true},
		{"gemini", ProviderGemini, true},
		{"anthropic", "", false},
		{"cohere", "", false},
		{"", "", false},
		{"OpenAI", "", false},
		{" gemini", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseProviderType(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChatRequest_NullProviderDecodesEmpty(t *testing.T) {
	var req ChatRequest
	err := json.Unmarshal([]byte(`{"provider":null,"model":"x","message":"y"}`), &req)
	assert.NoError(t, err)
	assert.Empty(t, req.Provider)

	_, ok := ParseProviderType(req.Provider)
	assert.False(t, ok)
}

func TestUnsupportedProviderResponse(t *testing.T) {
	assert.Equal(t, `{"error":"Unsupported provider"}`, string(UnsupportedProviderResponse))

	var body map[string]string
	assert.NoError(t, json.Unmarshal(UnsupportedProviderResponse, &body))
	assert.Equal(t, UnsupportedProviderMessage, body["error"])
}

func TestKnownProviders(t *testing.T) {
	assert.Equal(t, []ProviderType{ProviderGemini, ProviderOpenAI}, KnownProviders)
	for _, p := range KnownProviders {
		got, ok := ParseProviderType(p.String())
		assert.True(t, ok, p)
		assert.Equal(t, p, got)
	}
}

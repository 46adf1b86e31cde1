package core

import "encoding/json"

// ProviderType identifies an upstream LLM vendor.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGemini ProviderType = "gemini"
)

// KnownProviders lists every provider variant the router can bind, in sorted order.
var KnownProviders = []ProviderType{ProviderGemini, ProviderOpenAI}

// ParseProviderType maps a caller-supplied provider name onto a known variant.
// Matching is exact; "OpenAI" or " openai" are not recognized.
func ParseProviderType(name string) (ProviderType, bool) {
	for _, t := range KnownProviders {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// String implements fmt.Stringer.
func (p ProviderType) String() string {
	return string(p)
}

// ChatRequest is the body accepted by POST /chat.
type ChatRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Message  string `json:"message"`
}

// UnsupportedProviderMessage is the error text returned for unknown provider names.
const UnsupportedProviderMessage = "Unsupported provider"

// UnsupportedProviderResponse is the fixed body returned when the provider is not recognized.
var UnsupportedProviderResponse = unsupportedProviderBody()

func unsupportedProviderBody() json.RawMessage {
	body, err := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: UnsupportedProviderMessage})
	if err != nil {
		panic(err)
	}
	return body
}

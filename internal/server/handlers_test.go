package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"chatrelay/internal/core"
)

// mockRouter implements core.ChatRouter for testing
type mockRouter struct {
	body      json.RawMessage
	err       error
	requests  []core.ChatRequest
	requestID string
}

func (m *mockRouter) Route(ctx context.Context, req *core.ChatRequest) (json.RawMessage, error) {
	m.requests = append(m.requests, *req)
	m.requestID = core.GetRequestID(ctx)
	if m.err != nil {
		return nil, m.err
	}
	return m.body, nil
}

func (m *mockRouter) Providers() []core.ProviderType {
	return []core.ProviderType{core.ProviderGemini, core.ProviderOpenAI}
}

func newChatContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestChat(t *testing.T) {
	// Spacing is kept as sent by the provider.
	upstream := `{"id": "chatcmpl-123",  "choices":[{"message":{"role":"assistant","content":"Hello!"}}]}`
	mock := &mockRouter{body: json.RawMessage(upstream)}
	handler := NewHandler(mock)

	c, rec := newChatContext(`{"provider":"openai","model":"","message":"Hi"}`)
	if err := handler.Chat(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != upstream {
		t.Errorf("expected body to be passed through verbatim\nwant: %s\n got: %s", upstream, got)
	}
	if got := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(got, echo.MIMEApplicationJSON) {
		t.Errorf("expected JSON content type, got %q", got)
	}

	if len(mock.requests) != 1 {
		t.Fatalf("expected 1 routed request, got %d", len(mock.requests))
	}
	want := core.ChatRequest{Provider: "openai", Model: "", Message: "Hi"}
	if mock.requests[0] != want {
		t.Errorf("expected routed request %+v, got %+v", want, mock.requests[0])
	}
}

func TestChat_UnsupportedProvider(t *testing.T) {
	mock := &mockRouter{body: core.UnsupportedProviderResponse}
	handler := NewHandler(mock)

	c, rec := newChatContext(`{"provider":"cohere","model":"x","message":"y"}`)
	if err := handler.Chat(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"error":"Unsupported provider"}` {
		t.Errorf("unexpected body: %s", got)
	}
}

func TestChat_MalformedBody(t *testing.T) {
	mock := &mockRouter{}
	handler := NewHandler(mock)

	c, rec := newChatContext(`{"provider":`)
	if err := handler.Chat(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_request_error") {
		t.Errorf("expected invalid_request_error in body, got: %s", rec.Body.String())
	}
	if len(mock.requests) != 0 {
		t.Errorf("expected no routed request, got %d", len(mock.requests))
	}
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedType   string
	}{
		{
			name:           "transport failure",
			err:            core.NewProviderError(core.ProviderOpenAI, http.StatusBadGateway, "failed to send request", errors.New("dial tcp")),
			expectedStatus: http.StatusBadGateway,
			expectedType:   "provider_error",
		},
		{
			name:           "normalized rate limit",
			err:            core.NewRateLimitError(core.ProviderGemini, "quota exceeded"),
			expectedStatus: http.StatusTooManyRequests,
			expectedType:   "rate_limit_error",
		},
		{
			name:           "unexpected error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedType:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(&mockRouter{err: tt.err})

			c, rec := newChatContext(`{"provider":"openai","model":"gpt-4o","message":"hi"}`)
			if err := handler.Chat(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}

			var body struct {
				Error struct {
					Type    string `json:"type"`
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body.Error.Type != tt.expectedType {
				t.Errorf("expected error type %q, got %q", tt.expectedType, body.Error.Type)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	handler := NewHandler(&mockRouter{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Health(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("expected status ok, got %q", body.Status)
	}
	if strings.Join(body.Providers, ",") != "gemini,openai" {
		t.Errorf("unexpected providers: %v", body.Providers)
	}
}

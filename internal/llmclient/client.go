// Package llmclient provides the outbound HTTP client used by provider adapters:
// JSON request marshaling, provider header injection, raw response capture and
// instrumentation hooks. It sends each request exactly once.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"chatrelay/internal/core"
	"chatrelay/internal/httpclient"
)

// Config holds configuration for the LLM client
type Config struct {
	// Provider identifies the provider in errors and hooks
	Provider core.ProviderType

	// BaseURL is the API base URL; endpoints are appended verbatim
	BaseURL string

	// Hooks observe every outbound request. Zero value is a no-op.
	Hooks Hooks
}

// RequestInfo describes an outbound request for hooks.
type RequestInfo struct {
	Provider core.ProviderType
	Method   string
	Endpoint string
}

// ResponseInfo describes the outcome of an outbound request for hooks.
// StatusCode is 0 when the request failed before a response arrived.
type ResponseInfo struct {
	Provider   core.ProviderType
	Endpoint   string
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Hooks are optional callbacks around each outbound request.
type Hooks struct {
	OnRequestStart func(ctx context.Context, info RequestInfo) context.Context
	OnRequestEnd   func(ctx context.Context, info ResponseInfo)
}

// HeaderSetter is a function that sets headers on an HTTP request
type HeaderSetter func(req *http.Request)

// Client is a base HTTP client for LLM providers
type Client struct {
	httpClient   *http.Client
	config       Config
	headerSetter HeaderSetter
}

// New creates a new LLM client with the shared default HTTP client configuration
func New(config Config, headerSetter HeaderSetter) *Client {
	return NewWithHTTPClient(httpclient.NewHTTPClient(nil), config, headerSetter)
}

// NewWithHTTPClient creates a new LLM client with a custom HTTP client.
// If httpClient is nil, http.DefaultClient is used.
func NewWithHTTPClient(httpClient *http.Client, config Config, headerSetter HeaderSetter) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient:   httpClient,
		config:       config,
		headerSetter: headerSetter,
	}
}

// SetBaseURL updates the base URL
func (c *Client) SetBaseURL(url string) {
	c.config.BaseURL = url
}

// BaseURL returns the current base URL
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Request represents an HTTP request to be made
type Request struct {
	Method   string
	Endpoint string
	Query    url.Values
	Body     interface{} // Will be JSON marshaled if not nil
}

// Response is the upstream response, whatever its status.
type Response struct {
	StatusCode int
	Body       []byte
}

// IsSuccess reports whether the upstream answered with a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DoRaw sends req once and returns the raw response. Non-2xx statuses are not errors;
// only marshaling, transport and body-read failures are.
func (c *Client) DoRaw(ctx context.Context, req Request) (*Response, error) {
	if c.config.Hooks.OnRequestStart != nil {
		ctx = c.config.Hooks.OnRequestStart(ctx, RequestInfo{
			Provider: c.config.Provider,
			Method:   req.Method,
			Endpoint: req.Endpoint,
		})
	}

	start := time.Now()
	resp, err := c.doRequest(ctx, req)

	if c.config.Hooks.OnRequestEnd != nil {
		info := ResponseInfo{
			Provider: c.config.Provider,
			Endpoint: req.Endpoint,
			Duration: time.Since(start),
			Err:      err,
		}
		if resp != nil {
			info.StatusCode = resp.StatusCode
		}
		c.config.Hooks.OnRequestEnd(ctx, info)
	}

	return resp, err
}

// doRequest executes a single HTTP request
func (c *Client) doRequest(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.NewProviderError(c.config.Provider, http.StatusBadGateway, "failed to send request: "+redactURLError(err), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewProviderError(c.config.Provider, http.StatusBadGateway, "failed to read response: "+err.Error(), err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// buildRequest creates an HTTP request from a Request
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.config.BaseURL + req.Endpoint
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, core.NewInternalError("failed to marshal request", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, core.NewInternalError("failed to create request", err)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.headerSetter != nil {
		c.headerSetter(httpReq)
	}

	return httpReq, nil
}

// redactURLError drops the request URL from transport errors. Gemini carries the API
// key in the query string, and *url.Error prints the full URL.
func redactURLError(err error) string {
	if urlErr, ok := err.(*url.Error); ok {
		return urlErr.Op + ": " + urlErr.Err.Error()
	}
	return err.Error()
}

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"chatrelay/config"
	"chatrelay/internal/core"
	"chatrelay/internal/llmclient"
)

// ResponsePolicy turns an upstream response into the body returned to the caller.
type ResponsePolicy func(provider core.ProviderType, resp *llmclient.Response) (json.RawMessage, error)

// Passthrough returns any JSON body verbatim, including upstream error payloads.
// A body that is not JSON is an error.
func Passthrough(provider core.ProviderType, resp *llmclient.Response) (json.RawMessage, error) {
	if !json.Valid(resp.Body) {
		return nil, core.NewProviderError(provider, http.StatusBadGateway,
			fmt.Sprintf("upstream returned a non-JSON response (status %d)", resp.StatusCode), nil)
	}
	return json.RawMessage(resp.Body), nil
}

// NormalizeErrors passes 2xx bodies through and maps everything else onto a GatewayError.
func NormalizeErrors(provider core.ProviderType, resp *llmclient.Response) (json.RawMessage, error) {
	if !resp.IsSuccess() {
		return nil, core.ParseProviderError(provider, resp.StatusCode, resp.Body, nil)
	}
	return Passthrough(provider, resp)
}

// PolicyByName resolves the UPSTREAM_ERRORS setting.
func PolicyByName(name string) (ResponsePolicy, error) {
	switch name {
	case "", config.UpstreamErrorsPassthrough:
		return Passthrough, nil
	case config.UpstreamErrorsNormalize:
		return NormalizeErrors, nil
	}
	return nil, fmt.Errorf("unknown upstream error policy: %q", name)
}

// HandleResponse logs non-2xx upstream answers and applies policy. Adapters call it
// after every successful round trip.
func HandleResponse(ctx context.Context, provider core.ProviderType, resp *llmclient.Response, policy ResponsePolicy) (json.RawMessage, error) {
	if !resp.IsSuccess() {
		slog.WarnContext(ctx, "upstream returned error status",
			"provider", provider,
			"status", resp.StatusCode,
			"upstream_message", core.UpstreamErrorMessage(resp.Body),
			"request_id", core.GetRequestID(ctx),
		)
	}
	if policy == nil {
		policy = Passthrough
	}
	return policy(provider, resp)
}

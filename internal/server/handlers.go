// Package server provides HTTP handlers and server setup for the chat relay.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"chatrelay/internal/core"
)

// Handler holds the HTTP handlers
type Handler struct {
	router core.ChatRouter
}

// NewHandler creates a new handler with the given router
func NewHandler(router core.ChatRouter) *Handler {
	return &Handler{
		router: router,
	}
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status    string   `json:"status"`
	Providers []string `json:"providers"`
}

// Chat handles POST /chat. The provider's body is written back unmodified.
func (h *Handler) Chat(c echo.Context) error {
	var req core.ChatRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body", err))
	}

	body, err := h.router.Route(c.Request().Context(), &req)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSONBlob(http.StatusOK, body)
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	types := h.router.Providers()
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.String())
	}
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Providers: names})
}

// handleError converts gateway errors to appropriate HTTP responses
func handleError(c echo.Context, err error) error {
	var gatewayErr *core.GatewayError
	if errors.As(err, &gatewayErr) {
		return c.JSON(gatewayErr.HTTPStatusCode(), gatewayErr.ToJSON())
	}

	slog.ErrorContext(c.Request().Context(), "unexpected error", "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    string(core.ErrorTypeInternal),
			"message": "an unexpected error occurred",
		},
	})
}

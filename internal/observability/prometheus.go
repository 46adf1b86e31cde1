// Package observability exposes Prometheus metrics for upstream calls and routing.
package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"chatrelay/internal/core"
	"chatrelay/internal/llmclient"
)

// statusTransportError labels upstream calls that never produced an HTTP status.
const statusTransportError = "transport_error"

// Metrics holds the relay's collectors.
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	routedRequests   *prometheus.CounterVec
}

// NewMetrics registers the relay's collectors with reg. Registering twice on the
// same registerer panics; pass prometheus.DefaultRegisterer to expose them through
// promhttp.Handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		upstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatrelay_upstream_requests_total",
			Help: "Outbound provider requests by provider and HTTP status.",
		}, []string{"provider", "status"}),
		upstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chatrelay_upstream_request_duration_seconds",
			Help:    "Latency of outbound provider requests.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"provider"}),
		routedRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatrelay_routed_requests_total",
			Help: "Chat requests by resolved provider and routing outcome.",
		}, []string{"provider", "outcome"}),
	}
}

// Hooks returns llmclient hooks recording request counts and latency.
func (m *Metrics) Hooks() llmclient.Hooks {
	return llmclient.Hooks{
		OnRequestEnd: func(_ context.Context, info llmclient.ResponseInfo) {
			status := statusTransportError
			if info.StatusCode > 0 {
				status = strconv.Itoa(info.StatusCode)
			}
			provider := string(info.Provider)
			m.upstreamRequests.WithLabelValues(provider, status).Inc()
			m.upstreamDuration.WithLabelValues(provider).Observe(info.Duration.Seconds())
		},
	}
}

// ObserveRoute implements providers.RouteObserver.
func (m *Metrics) ObserveRoute(provider core.ProviderType, outcome string) {
	label := string(provider)
	if label == "" {
		label = "none"
	}
	m.routedRequests.WithLabelValues(label, outcome).Inc()
}

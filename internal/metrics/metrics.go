// Package metrics holds the Prometheus collectors shared by the gateways and the city store.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/neexbeast/climascope/internal/domain"
)

// Metrics groups every collector climascope exports. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatewayRequests *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	storeOps        *prometheus.CounterVec
	locationFixes   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		gatewayRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climascope_gateway_requests_total",
				Help: "Requests issued to the weather and geocoding API",
			},
			[]string{"endpoint", "outcome"},
		),
		gatewayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "climascope_gateway_request_duration_seconds",
				Help: "Latency of weather and geocoding API requests",
				// 50ms .. ~25s
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"endpoint"},
		),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climascope_store_operations_total",
				Help: "City store operations by result",
			},
			[]string{"op", "status"},
		),
		locationFixes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climascope_location_fixes_total",
				Help: "Location fixes requested from the provider",
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.gatewayRequests, m.gatewayDuration, m.storeOps, m.locationFixes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveGateway records one API request.
func (m *Metrics) ObserveGateway(endpoint string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.gatewayRequests.WithLabelValues(endpoint, Outcome(err)).Inc()
	m.gatewayDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}

// ObserveStore records one city store operation.
func (m *Metrics) ObserveStore(op string, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.storeOps.WithLabelValues(op, status).Inc()
}

// ObserveLocation records one location fix attempt.
func (m *Metrics) ObserveLocation(err error) {
	if m == nil {
		return
	}
	m.locationFixes.WithLabelValues(Outcome(err)).Inc()
}

// Outcome maps an error onto a low-cardinality label value.
func Outcome(err error) string {
	var apiErr *domain.APIError
	var netErr *domain.NetworkError

	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, domain.ErrEmptyResponse), errors.Is(err, domain.ErrLocationUnavailable):
		return "empty"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed"
	case errors.As(err, &apiErr):
		return "api_error"
	case errors.As(err, &netErr):
		return "network"
	default:
		return "error"
	}
}

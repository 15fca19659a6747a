// Package metrics provides Prometheus metrics for the forum client:
// outbound HTTP calls and tracked action outcomes.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_client_requests_total",
			Help: "Total number of backend requests",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forum_client_request_duration_seconds",
			Help:    "Backend request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	requestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forum_client_requests_in_flight",
			Help: "Number of backend requests currently waiting for a response",
		},
	)

	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_client_actions_total",
			Help: "Tracked action outcomes",
		},
		[]string{"action", "outcome"},
	)
)

// Action outcomes
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid"
	OutcomePrecondition = "precondition"
	OutcomeFailed       = "failed"
	OutcomeSuperseded   = "superseded"
)

type routeKey struct{}

// WithRoute tags ctx with the endpoint pattern (e.g. "/private/posts/{id}")
// so requests are labelled by pattern, not by concrete path.
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFrom(r *http.Request) string {
	if route, ok := r.Context().Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Transport wraps next (http.DefaultTransport when nil) with request metrics.
// Transport errors are counted with status "error".
func Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		resp, err := next.RoundTrip(r)

		route := routeFrom(r)
		status := "error"
		if err == nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		requestsTotal.WithLabelValues(r.Method, route, status).Inc()
		requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		return resp, err
	})
}

// ObserveAction counts one outcome of a named action.
func ObserveAction(action, outcome string) {
	actionsTotal.WithLabelValues(action, outcome).Inc()
}

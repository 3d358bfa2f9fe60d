// Package metrics holds the Prometheus collectors shared by the HTTP layer,
// the NextDNS client and the profile signer. Collectors are registered on the
// default registerer so the otel exporter and promhttp.Handler see one view.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// Signing outcomes.
const (
	SignOutcomeSigned   = "signed"
	SignOutcomeSkipped  = "skipped"
	SignOutcomeFallback = "fallback"
)

//nolint: gochecknoglobals
var (
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status code.",
			Buckets: DefaultBuckets,
		},
		[]string{"method", "route", "status_code"},
	)
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nextdns_request_duration_seconds",
			Help:    "Duration of NextDNS API calls by operation and status code.",
			Buckets: DefaultBuckets,
		},
		[]string{"operation", "status_code"},
	)
	ProfileSignTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_sign_total",
			Help: "Configuration profile signing attempts by outcome.",
		},
		[]string{"outcome"},
	)
	RateLimitRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limiter_rejected_total",
			Help: "Requests rejected by the per-client rate limiter.",
		},
	)
)

var registerOnce sync.Once //nolint: gochecknoglobals

// Register adds all collectors to the default registerer. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestDuration, UpstreamRequestDuration, ProfileSignTotal, RateLimitRejectedTotal)
	})
}

// ObserveUpstream records a NextDNS call. statusCode is 0 when no response was received.
func ObserveUpstream(operation string, statusCode int, dur time.Duration) {
	UpstreamRequestDuration.WithLabelValues(operation, strconv.Itoa(statusCode)).Observe(dur.Seconds())
}

// ObserveSign records one signing attempt.
func ObserveSign(outcome string) {
	ProfileSignTotal.WithLabelValues(outcome).Inc()
}

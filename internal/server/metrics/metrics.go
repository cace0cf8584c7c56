// Package metrics exposes Prometheus instruments for the group server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Connection metrics
var (
	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "groupshare_connections_total",
			Help: "Total number of connections accepted",
		},
	)

	ConnectionsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "groupshare_connections_current",
			Help: "Current number of open connections",
		},
	)

	SessionsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "groupshare_sessions_current",
			Help: "Current number of connections bound to an account",
		},
	)
)

// Request metrics
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groupshare_requests_total",
			Help: "Total number of requests by opcode and response status",
		},
		[]string{"opcode", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "groupshare_request_duration_seconds",
			Help:    "Time spent handling one request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"opcode"},
	)

	AuthenticationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groupshare_authentication_attempts_total",
			Help: "Total number of login and reauth attempts by method and result",
		},
		[]string{"method", "result"},
	)

	AccountLockouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "groupshare_account_lockouts_total",
			Help: "Total number of accounts locked after repeated failed logins",
		},
	)
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

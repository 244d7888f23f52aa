// Package metrics exposes the Prometheus instrumentation shared by the
// League Manager, Referee, and Player processes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every metric collector registered by an agent process.
type Metrics struct {
	// Registration metrics
	RegistrationsTotal *prometheus.CounterVec

	// Match metrics
	MatchesTotal      *prometheus.CounterVec
	MatchDuration     *prometheus.HistogramVec
	MatchesInProgress prometheus.Gauge

	// Round / league metrics
	RoundsCompletedTotal prometheus.Counter
	CurrentRound         prometheus.Gauge
	LeagueStatus         *prometheus.GaugeVec

	// Fan-out metrics
	FanOutTotal    *prometheus.CounterVec
	FanOutDuration *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Outbound call metrics
	OutboundCallsTotal  *prometheus.CounterVec
	OutboundCallRetries *prometheus.CounterVec
}

// New creates and registers a fresh Metrics instance.
func New(namespace string) *Metrics {
	return &Metrics{
		RegistrationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Total number of agent registrations accepted",
			},
			[]string{"kind", "status"},
		),
		MatchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "matches_total",
				Help:      "Total number of matches reaching a terminal outcome",
			},
			[]string{"status", "game_type"},
		),
		MatchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "match_duration_seconds",
				Help:      "Match execution duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"game_type"},
		),
		MatchesInProgress: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "matches_in_progress",
				Help:      "Number of match tasks currently in flight",
			},
		),
		RoundsCompletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rounds_completed_total",
				Help:      "Total number of rounds completed",
			},
		),
		CurrentRound: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "current_round",
				Help:      "The round currently in progress",
			},
		),
		LeagueStatus: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "league_status",
				Help:      "1 for the current league status, 0 otherwise",
			},
			[]string{"status"},
		),
		FanOutTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fanout_total",
				Help:      "Total number of fan-out sends attempted",
			},
			[]string{"message_type", "outcome"},
		),
		FanOutDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fanout_duration_seconds",
				Help:      "Time to fan a message out to every target",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"message_type"},
		),
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		OutboundCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbound_calls_total",
				Help:      "Total number of outbound remote calls",
			},
			[]string{"message_type", "outcome"},
		),
		OutboundCallRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbound_call_retries_total",
				Help:      "Total number of outbound call retry attempts",
			},
			[]string{"message_type"},
		),
	}
}

// RecordMatchStart records a match task entering the active set.
func (m *Metrics) RecordMatchStart() {
	m.MatchesInProgress.Inc()
}

// RecordMatchComplete records a match task leaving the active set.
func (m *Metrics) RecordMatchComplete(gameType, status string, duration time.Duration) {
	m.MatchesInProgress.Dec()
	m.MatchesTotal.WithLabelValues(status, gameType).Inc()
	m.MatchDuration.WithLabelValues(gameType).Observe(duration.Seconds())
}

// RecordRegistration records an agent registration outcome.
func (m *Metrics) RecordRegistration(kind, status string) {
	m.RegistrationsTotal.WithLabelValues(kind, status).Inc()
}

// RecordRoundCompleted records one round reaching completion.
func (m *Metrics) RecordRoundCompleted(round int) {
	m.RoundsCompletedTotal.Inc()
	m.CurrentRound.Set(float64(round))
}

// SetLeagueStatus records the league's current status as a one-hot gauge.
func (m *Metrics) SetLeagueStatus(statuses []string, current string) {
	for _, s := range statuses {
		v := 0.0
		if s == current {
			v = 1.0
		}
		m.LeagueStatus.WithLabelValues(s).Set(v)
	}
}

// RecordFanOut records one fan-out send attempt and its wall-clock cost.
func (m *Metrics) RecordFanOut(messageType, outcome string, duration time.Duration) {
	m.FanOutTotal.WithLabelValues(messageType, outcome).Inc()
	m.FanOutDuration.WithLabelValues(messageType).Observe(duration.Seconds())
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOutboundCall records the outcome of one outbound remote call.
func (m *Metrics) RecordOutboundCall(messageType, outcome string) {
	m.OutboundCallsTotal.WithLabelValues(messageType, outcome).Inc()
}

// RecordOutboundRetry records one retry attempt of an outbound call.
func (m *Metrics) RecordOutboundRetry(messageType string) {
	m.OutboundCallRetries.WithLabelValues(messageType).Inc()
}

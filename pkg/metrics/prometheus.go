// Package metrics provides Prometheus metrics for the arbiter scoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all Prometheus collectors for the service.
type Manager struct {
	// Ingestion metrics
	votesAccepted  *prometheus.CounterVec
	votesDuplicate *prometheus.CounterVec
	votesRejected  *prometheus.CounterVec
	overflowTokens prometheus.Counter
	donations      prometheus.Counter

	// Scoring metrics
	round1Computed  prometheus.Counter
	round2Computed  prometheus.Counter
	verdictFailures prometheus.Counter
	scoringLatency  prometheus.Histogram

	// Lifecycle metrics
	transitions        prometheus.Counter
	invalidTransitions prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager registers all collectors against the given registerer.
func NewManager(reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)
	return &Manager{
		votesAccepted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arbiter_votes_accepted_total",
			Help: "Vote ledger entries accepted, by channel (token|reaction).",
		}, []string{"channel"}),
		votesDuplicate: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arbiter_votes_duplicate_total",
			Help: "Vote events acknowledged as duplicates, by channel.",
		}, []string{"channel"}),
		votesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arbiter_votes_rejected_total",
			Help: "Vote events rejected at validation, by reason.",
		}, []string{"reason"}),
		overflowTokens: factory.NewCounter(prometheus.CounterOpts{
			Name: "arbiter_overflow_tokens_total",
			Help: "Tokens routed to the prize pool from vote overflow.",
		}),
		donations: factory.NewCounter(prometheus.CounterOpts{
			Name: "arbiter_donations_total",
			Help: "Direct prize-pool donations recorded.",
		}),
		round1Computed: factory.NewCounter(prometheus.CounterOpts{
			Name: "arbiter_round1_computed_total",
			Help: "Round 1 scoring runs committed.",
		}),
		round2Computed: factory.NewCounter(prometheus.CounterOpts{
			Name: "arbiter_round2_computed_total",
			Help: "Round 2 synthesis runs committed.",
		}),
		verdictFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "arbiter_verdict_failures_total",
			Help: "Verdict generator failures during round 2 synthesis.",
		}),
		scoringLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "arbiter_scoring_latency_ms",
			Help:    "Latency of scoring runs in milliseconds.",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		}),
		transitions: factory.NewCounter(prometheus.CounterOpts{
			Name: "arbiter_lifecycle_transitions_total",
			Help: "Successful submission status transitions.",
		}),
		invalidTransitions: factory.NewCounter(prometheus.CounterOpts{
			Name: "arbiter_lifecycle_invalid_transitions_total",
			Help: "Rejected submission status transitions.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arbiter_http_requests_total",
			Help: "HTTP requests by endpoint, method and status code.",
		}, []string{"endpoint", "method", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "arbiter_http_request_duration_ms",
			Help:    "HTTP request duration in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"endpoint", "method"}),
	}
}

// defaultManager backs the package-level helpers.
var defaultManager = NewManager(prometheus.DefaultRegisterer)

// Default returns the manager registered on the default registerer.
func Default() *Manager { return defaultManager }

// RecordVoteAccepted increments the accepted-vote counter for a channel.
func RecordVoteAccepted(channel string) {
	defaultManager.votesAccepted.WithLabelValues(channel).Inc()
}

// RecordVoteDuplicate increments the duplicate-vote counter for a channel.
func RecordVoteDuplicate(channel string) {
	defaultManager.votesDuplicate.WithLabelValues(channel).Inc()
}

// RecordVoteRejected increments the rejected-vote counter for a reason.
func RecordVoteRejected(reason string) {
	defaultManager.votesRejected.WithLabelValues(reason).Inc()
}

// RecordOverflowTokens adds routed overflow tokens to the prize-pool counter.
func RecordOverflowTokens(amount float64) {
	if amount > 0 {
		defaultManager.overflowTokens.Add(amount)
	}
}

// RecordDonation increments the direct donation counter.
func RecordDonation() {
	defaultManager.donations.Inc()
}

// RecordRound1Computed increments the round 1 scoring counter.
func RecordRound1Computed() {
	defaultManager.round1Computed.Inc()
}

// RecordRound2Computed increments the round 2 synthesis counter.
func RecordRound2Computed() {
	defaultManager.round2Computed.Inc()
}

// RecordVerdictFailure increments the verdict failure counter.
func RecordVerdictFailure() {
	defaultManager.verdictFailures.Inc()
}

// RecordScoringLatency observes a scoring latency sample in milliseconds.
func RecordScoringLatency(ms float64) {
	defaultManager.scoringLatency.Observe(ms)
}

// RecordTransition increments the successful transition counter.
func RecordTransition() {
	defaultManager.transitions.Inc()
}

// RecordInvalidTransition increments the rejected transition counter.
func RecordInvalidTransition() {
	defaultManager.invalidTransitions.Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, status string) {
	defaultManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration sample.
func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	defaultManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
}

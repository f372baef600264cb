package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	// decision: APPROVED, REJECTED; outcome: ok, conflict, error
	RequestDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blood_request_decisions_total",
			Help: "Moderator decisions on blood requests",
		},
		[]string{"decision", "outcome"},
	)

	DonorNotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "donor_notifications_created_total",
			Help: "Donor notifications written by the matching engine",
		},
	)

	// status: sent, failed, skipped
	MatchEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_emails_total",
			Help: "Donor match emails by delivery outcome",
		},
		[]string{"status"},
	)

	// outcome: accepted, already_accepted, rejected, error
	Acceptances = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donor_acceptances_total",
			Help: "Donor acceptance attempts by outcome",
		},
		[]string{"outcome"},
	)

	EligibilityRefreshed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "donor_eligibility_refreshed_total",
			Help: "Donors made available again by the eligibility sweep",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordDecision(decision, outcome string) {
	RequestDecisions.WithLabelValues(decision, outcome).Inc()
}

func RecordMatchEmail(status string) {
	MatchEmails.WithLabelValues(status).Inc()
}

func RecordAcceptance(outcome string) {
	Acceptances.WithLabelValues(outcome).Inc()
}

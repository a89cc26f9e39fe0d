package metrics

import "github.com/prometheus/client_golang/prometheus"

// AlertMetrics tracks evaluation-pass activity for the /metrics endpoint.
type AlertMetrics struct {
	PassesCompleted prometheus.Counter
	PassesSkipped   prometheus.Counter
	PassesFailed    prometheus.Counter
	AlertsTriggered prometheus.Counter
	EmailsSent      prometheus.Counter
	EmailsFailed    prometheus.Counter
	FetchErrors     prometheus.Counter
}

// New builds and registers the collectors. Pass prometheus.DefaultRegisterer
// in production; tests use a fresh prometheus.NewRegistry to avoid duplicate
// registration.
func New(reg prometheus.Registerer) *AlertMetrics {
	m := &AlertMetrics{
		PassesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptoalert",
			Subsystem: "evaluator",
			Name:      "passes_completed_total",
			Help:      "The total number of completed evaluation passes",
		}),
		PassesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptoalert",
			Subsystem: "evaluator",
			Name:      "passes_skipped_total",
			Help:      "Passes skipped because a previous pass was still running",
		}),
		PassesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptoalert",
			Subsystem: "evaluator",
			Name:      "passes_failed_total",
			Help:      "Passes aborted before evaluation (alert load or price fetch failed)",
		}),
		AlertsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptoalert",
			Subsystem: "evaluator",
			Name:      "alerts_triggered_total",
			Help:      "The total number of alerts that crossed their threshold",
		}),
		EmailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptoalert",
			Subsystem: "notifier",
			Name:      "emails_sent_total",
			Help:      "The total number of alert emails delivered",
		}),
		EmailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptoalert",
			Subsystem: "notifier",
			Name:      "emails_failed_total",
			Help:      "Alert emails that could not be delivered",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptoalert",
			Subsystem: "price_source",
			Name:      "fetch_errors_total",
			Help:      "Batched price fetches that failed",
		}),
	}

	reg.MustRegister(
		m.PassesCompleted,
		m.PassesSkipped,
		m.PassesFailed,
		m.AlertsTriggered,
		m.EmailsSent,
		m.EmailsFailed,
		m.FetchErrors,
	)
	return m
}

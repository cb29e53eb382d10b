package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency in seconds, labelled by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	// PortfolioLinkChanges counts portfolio/project link mutations.
	PortfolioLinkChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_portfolio_link_changes_total",
			Help: "Total number of portfolio/project link mutations",
		},
		[]string{"action"}, // add, remove, cascade
	)

	// ProjectReorders counts successful project reorder batches.
	ProjectReorders = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_project_reorders_total",
			Help: "Total number of applied project reorder batches",
		},
	)

	// PortfolioCacheLookups counts public portfolio cache lookups.
	PortfolioCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_portfolio_cache_lookups_total",
			Help: "Public portfolio cache lookups",
		},
		[]string{"result"}, // hit, miss
	)

	// MailTasks counts outbound mail task outcomes.
	MailTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_mail_tasks_total",
			Help: "Outbound mail tasks by outcome",
		},
		[]string{"status"}, // enqueued, sent, failed
	)
)

// RecordHTTPRequestDuration records the latency of one HTTP request.
func RecordHTTPRequestDuration(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// IncLinkChange increments the link mutation counter for action.
func IncLinkChange(action string) {
	PortfolioLinkChanges.WithLabelValues(action).Inc()
}

// IncCacheLookup records a cache hit or miss.
func IncCacheLookup(hit bool) {
	if hit {
		PortfolioCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	PortfolioCacheLookups.WithLabelValues("miss").Inc()
}

// IncMailTask records a mail task outcome.
func IncMailTask(status string) {
	MailTasks.WithLabelValues(status).Inc()
}

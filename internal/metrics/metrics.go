package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var HttpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

var HttpErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "Total number of failed HTTP requests (4xx/5xx)",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRateLimitRejectionsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "http_rate_limit_rejections_total",
		Help: "Total number of HTTP requests rejected due to rate limiting",
	},
)

var FollowUpContactsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "followup_contacts_total",
		Help: "Supplier contacts processed by the follow-up dispatcher, by outcome",
	},
	[]string{"outcome"},
)

var FollowUpPassDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "followup_pass_duration_seconds",
		Help:    "Duration of a full auto-follow-up dispatcher pass",
		Buckets: prometheus.DefBuckets,
	},
)

var EmailsSentTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "emails_sent_total",
		Help: "Outbound emails attempted, by kind and result",
	},
	[]string{"kind", "result"},
)

var NotificationsCreatedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "In-app notifications created, by type",
	},
	[]string{"type"},
)

var QuoteParseTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quote_parse_total",
		Help: "AI quote extraction calls, by result",
	},
	[]string{"result"},
)

var (
	apiOnce        sync.Once
	dispatcherOnce sync.Once
)

// Init funcs are guarded with sync.Once: in the combined run mode both the
// API server and the background worker set up metrics, and the API process
// registers the dispatcher collectors too because its cron endpoints run
// full follow-up passes in-process.

func InitAPIMetrics() {
	apiOnce.Do(func() {
		prometheus.MustRegister(HttpRequestsTotal)
		prometheus.MustRegister(HttpRequestDuration)
		prometheus.MustRegister(HttpErrorsTotal)
		prometheus.MustRegister(HttpRateLimitRejectionsTotal)
		prometheus.MustRegister(QuoteParseTotal)
	})
}

func InitDispatcherMetrics() {
	dispatcherOnce.Do(func() {
		prometheus.MustRegister(FollowUpContactsTotal)
		prometheus.MustRegister(FollowUpPassDuration)
		prometheus.MustRegister(EmailsSentTotal)
		prometheus.MustRegister(NotificationsCreatedTotal)
	})
}

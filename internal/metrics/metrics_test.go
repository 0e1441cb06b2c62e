package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatheredFamilies(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	return names
}

// An API process serves the cron entrypoints, so the dispatcher series must
// be exported there too, not only from the background worker.
func TestDispatcherSeriesExportedFromAPIProcess(t *testing.T) {
	InitAPIMetrics()
	InitDispatcherMetrics()

	FollowUpContactsTotal.WithLabelValues("sent").Inc()
	EmailsSentTotal.WithLabelValues("follow_up", "ok").Inc()
	NotificationsCreatedTotal.WithLabelValues("follow_up_sent").Inc()
	FollowUpPassDuration.Observe(0.02)

	names := gatheredFamilies(t)
	assert.True(t, names["http_requests_total"])
	assert.True(t, names["followup_contacts_total"])
	assert.True(t, names["followup_pass_duration_seconds"])
	assert.True(t, names["emails_sent_total"])
	assert.True(t, names["notifications_created_total"])
}

// The combined run mode initializes both the API server and the worker, so
// repeated Init calls must not panic on double registration.
func TestInitMetricsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		InitAPIMetrics()
		InitAPIMetrics()
		InitDispatcherMetrics()
		InitDispatcherMetrics()
	})
}

package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.InvoiceGenerated("recurring")
	m.InvoiceGenerated("recurring")
	m.InvoiceSkipped("bu_1", 3)
	m.PaymentApplied("Cash", 1200)
	m.VersionConflict("apply_payment")
	m.Notification("due_reminder", false)
	m.ObserveGeneration(time.Now(), true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.InvoicesGenerated.WithLabelValues("recurring")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.InvoicesSkipped.WithLabelValues("bu_1")))
	assert.Equal(t, 1200.0, testutil.ToFloat64(m.PaymentAmount.WithLabelValues("Cash")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VersionConflicts.WithLabelValues("apply_payment")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("due_reminder", "failed")))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var m *Collector
	assert.NotPanics(t, func() {
		m.InvoiceGenerated("recurring")
		m.PaymentApplied("Cash", 1)
		m.SchedulerRun(true)
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.PlanChanged("paid")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `netcycle_plan_changes_total{branch="paid"} 1`)
}

// Package metrics exposes Prometheus counters for billing runs, payments and notifications.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "netcycle"

// Collector holds all Prometheus metrics of the billing engine.
// A nil *Collector is valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	InvoicesGenerated  *prometheus.CounterVec
	InvoicesSkipped    *prometheus.CounterVec
	GenerationErrors   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec

	PaymentsApplied  *prometheus.CounterVec
	PaymentAmount    *prometheus.CounterVec
	VersionConflicts *prometheus.CounterVec

	PlanChanges *prometheus.CounterVec

	NotificationsSent *prometheus.CounterVec

	SchedulerRuns *prometheus.CounterVec
}

// New registers the collector on a fresh registry carrying the Go runtime and process collectors
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the collector on reg
func NewWithRegistry(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		gatherer: reg,

		InvoicesGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invoices_generated_total",
				Help:      "Invoices written, by invoice type",
			},
			[]string{"invoice_type"},
		),
		InvoicesSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invoices_skipped_total",
				Help:      "Subscriptions skipped because the period was already invoiced",
			},
			[]string{"business_unit_id"},
		),
		GenerationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_errors_total",
				Help:      "Per-subscription and fatal errors during generation passes",
			},
			[]string{"stage"},
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Duration of a generation pass for one business unit",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"success"},
		),
		PaymentsApplied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_applied_total",
				Help:      "Payments recorded, by mode",
			},
			[]string{"mode"},
		),
		PaymentAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_amount_total",
				Help:      "Sum of payment amounts recorded, by mode",
			},
			[]string{"mode"},
		),
		VersionConflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "version_conflicts_total",
				Help:      "Optimistic lock conflicts on subscription writes",
			},
			[]string{"operation"},
		),
		PlanChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_changes_total",
				Help:      "Plan changes committed, by branch",
			},
			[]string{"branch"},
		),
		NotificationsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Customer notifications, by kind and result",
			},
			[]string{"kind", "result"},
		),
		SchedulerRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scheduler_runs_total",
				Help:      "Daily scheduler runs, by result",
			},
			[]string{"result"},
		),
	}
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) InvoiceGenerated(invoiceType string) {
	if c == nil {
		return
	}
	c.InvoicesGenerated.WithLabelValues(invoiceType).Inc()
}

func (c *Collector) InvoiceSkipped(businessUnitID string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.InvoicesSkipped.WithLabelValues(businessUnitID).Add(float64(n))
}

func (c *Collector) GenerationError(stage string) {
	if c == nil {
		return
	}
	c.GenerationErrors.WithLabelValues(stage).Inc()
}

func (c *Collector) ObserveGeneration(start time.Time, success bool) {
	if c == nil {
		return
	}
	label := "false"
	if success {
		label = "true"
	}
	c.GenerationDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
}

func (c *Collector) PaymentApplied(mode string, amount float64) {
	if c == nil {
		return
	}
	c.PaymentsApplied.WithLabelValues(mode).Inc()
	c.PaymentAmount.WithLabelValues(mode).Add(amount)
}

func (c *Collector) VersionConflict(operation string) {
	if c == nil {
		return
	}
	c.VersionConflicts.WithLabelValues(operation).Inc()
}

func (c *Collector) PlanChanged(branch string) {
	if c == nil {
		return
	}
	c.PlanChanges.WithLabelValues(branch).Inc()
}

func (c *Collector) Notification(kind string, sent bool) {
	if c == nil {
		return
	}
	result := "failed"
	if sent {
		result = "sent"
	}
	c.NotificationsSent.WithLabelValues(kind, result).Inc()
}

func (c *Collector) SchedulerRun(success bool) {
	if c == nil {
		return
	}
	result := "failed"
	if success {
		result = "success"
	}
	c.SchedulerRuns.WithLabelValues(result).Inc()
}

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Metrics groups the application collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	jobDuration    *prometheus.HistogramVec
	jobSuccess     *prometheus.CounterVec
	jobFailure     *prometheus.CounterVec
	payments       *prometheus.CounterVec
	inventoryFails *prometheus.CounterVec
	oversold       prometheus.Counter
	unrestored     prometheus.Counter
	notifications  *prometheus.CounterVec
	smsDeliveries  *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of externally triggered jobs in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		jobSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_success_total",
			Help:      "Successful job executions.",
		}, []string{"job"}),
		jobFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_failure_total",
			Help:      "Failed job executions.",
		}, []string{"job"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_confirmations_total",
			Help:      "Payment confirmation outcomes.",
		}, []string{"outcome"}),
		inventoryFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_adjustment_failures_total",
			Help:      "Inventory reservations or restorations that failed after the financial action succeeded.",
		}, []string{"operation"}),
		oversold: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_oversold_lines_total",
			Help:      "Reserved lines that left inventory below zero.",
		}),
		unrestored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_unrestored_lines_total",
			Help:      "Refunded lines whose stock row no longer exists.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_tasks_total",
			Help:      "Notification task transitions by kind and status.",
		}, []string{"kind", "status"}),
		smsDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sms_deliveries_total",
			Help:      "SMS delivery attempts by resulting status.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.httpRequests, m.httpDuration,
			m.jobDuration, m.jobSuccess, m.jobFailure,
			m.payments, m.inventoryFails, m.oversold, m.unrestored,
			m.notifications, m.smsDeliveries,
		)
	}
	return m
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveJob records a job run
func (m *Metrics) ObserveJob(job string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	if job == "" {
		job = "unknown"
	}
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
	if err != nil {
		m.jobFailure.WithLabelValues(job).Inc()
		return
	}
	m.jobSuccess.WithLabelValues(job).Inc()
}

// IncPayment counts a payment confirmation outcome
func (m *Metrics) IncPayment(outcome string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(outcome).Inc()
}

// IncInventoryFailure counts a failed reservation or restoration
func (m *Metrics) IncInventoryFailure(operation string) {
	if m == nil {
		return
	}
	m.inventoryFails.WithLabelValues(operation).Inc()
}

// AddOversold counts reserved lines that went negative
func (m *Metrics) AddOversold(lines int) {
	if m == nil || lines <= 0 {
		return
	}
	m.oversold.Add(float64(lines))
}

// AddUnrestored counts refunded lines that could not be put back in stock
func (m *Metrics) AddUnrestored(lines int) {
	if m == nil || lines <= 0 {
		return
	}
	m.unrestored.Add(float64(lines))
}

// IncNotification counts a notification task transition
func (m *Metrics) IncNotification(kind, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, status).Inc()
}

// IncSMS counts an SMS delivery attempt result
func (m *Metrics) IncSMS(status string) {
	if m == nil {
		return
	}
	m.smsDeliveries.WithLabelValues(status).Inc()
}

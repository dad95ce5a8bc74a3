package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveJob(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveJob("sms_tick", 10*time.Millisecond, nil)
	m.ObserveJob("sms_tick", 20*time.Millisecond, errors.New("boom"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.jobSuccess.WithLabelValues("sms_tick")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.jobFailure.WithLabelValues("sms_tick")))
}

func TestMetrics_BusinessCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncPayment("confirmed")
	m.IncInventoryFailure("reserve")
	m.AddOversold(2)
	m.AddOversold(0)
	m.AddUnrestored(3)
	m.AddUnrestored(-1)
	m.IncNotification("order_shipped", "succeeded")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.payments.WithLabelValues("confirmed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.inventoryFails.WithLabelValues("reserve")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.oversold))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.unrestored))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.notifications.WithLabelValues("order_shipped", "succeeded")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
		m.ObserveJob("x", time.Millisecond, nil)
		m.IncPayment("confirmed")
		m.IncSMS("sent")
	})
}

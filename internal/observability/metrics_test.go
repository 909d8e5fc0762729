package observability_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.GameMetrics = (*observability.Metrics)(nil)

func TestMetrics_GameCounters(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	// Act
	m.OrderCreated("almaty")
	m.OrderCreated("almaty")
	m.OrderPickedUp()
	m.OrderDelivered(5.1, true)
	m.OrderDelivered(4.1, false)
	m.OrderCancelled("user_cancelled")
	m.OrderExpired(3)
	m.SearchFinished("not_found")

	// Assert
	count, err := testutil.GatherAndCount(reg, "qryer_orders_delivered_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per on_time label")

	families, err := reg.Gather()
	require.NoError(t, err)
	values := make(map[string]float64)
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				values[f.GetName()] += c.GetValue()
			}
		}
	}
	assert.InDelta(t, 2, values["qryer_orders_created_total"], 1e-9)
	assert.InDelta(t, 1, values["qryer_orders_picked_up_total"], 1e-9)
	assert.InDelta(t, 2, values["qryer_orders_delivered_total"], 1e-9)
	assert.InDelta(t, 1, values["qryer_orders_cancelled_total"], 1e-9)
	assert.InDelta(t, 3, values["qryer_orders_expired_total"], 1e-9)
	assert.InDelta(t, 1, values["qryer_searches_total"], 1e-9)
}

func TestMetrics_ObserveHTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	m.ObserveHTTP(http.MethodPost, "/api/orders/:id/deliver", http.StatusOK, 15*time.Millisecond)

	count, err := testutil.GatherAndCount(reg, "qryer_http_requests_total", "qryer_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_TrackGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	active := 4.0

	m.TrackGauge("searches_active", "Running search sessions", func() float64 { return active })

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "qryer_searches_active" {
			assert.InDelta(t, 4, f.GetMetric()[0].GetGauge().GetValue(), 1e-9)
			return
		}
	}
	t.Fatal("gauge not registered")
}

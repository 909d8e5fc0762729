// Package observability exposes the game's Prometheus metrics.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "qryer"

// Metrics implements ports.GameMetrics and records HTTP traffic.
type Metrics struct {
	registerer prometheus.Registerer

	ordersCreated   *prometheus.CounterVec
	ordersPickedUp  prometheus.Counter
	ordersDelivered *prometheus.CounterVec
	payouts         prometheus.Histogram
	ordersCancelled *prometheus.CounterVec
	ordersExpired   prometheus.Counter
	searches        *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registerer: reg,
		ordersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "orders_created_total", Help: "Orders created by searches"},
			[]string{"region"},
		),
		ordersPickedUp: factory.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "orders_picked_up_total", Help: "Orders picked up"},
		),
		ordersDelivered: factory.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "orders_delivered_total", Help: "Orders delivered"},
			[]string{"on_time"},
		),
		payouts: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_payout",
			Help:      "Payout credited per delivery",
			Buckets:   []float64{2, 3, 4, 5, 7.5, 10, 15, 25},
		}),
		ordersCancelled: factory.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "orders_cancelled_total", Help: "Orders cancelled"},
			[]string{"reason"},
		),
		ordersExpired: factory.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "orders_expired_total", Help: "Orders closed by the expiry sweep"},
		),
		searches: factory.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "searches_total", Help: "Finished searches by outcome"},
			[]string{"outcome"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
			[]string{"method", "path", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distribution",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (m *Metrics) OrderCreated(regionID string) {
	m.ordersCreated.WithLabelValues(regionID).Inc()
}

func (m *Metrics) OrderPickedUp() {
	m.ordersPickedUp.Inc()
}

func (m *Metrics) OrderDelivered(payout float64, onTime bool) {
	m.ordersDelivered.WithLabelValues(strconv.FormatBool(onTime)).Inc()
	m.payouts.Observe(payout)
}

func (m *Metrics) OrderCancelled(reason string) {
	m.ordersCancelled.WithLabelValues(reason).Inc()
}

func (m *Metrics) OrderExpired(count int) {
	m.ordersExpired.Add(float64(count))
}

func (m *Metrics) SearchFinished(outcome string) {
	m.searches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, path, code).Inc()
	m.httpDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
}

// TrackGauge registers a gauge read from fn at scrape time.
func (m *Metrics) TrackGauge(name, help string, fn func() float64) {
	promauto.With(m.registerer).NewGaugeFunc(
		prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help},
		fn,
	)
}

package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector owns the prometheus registry for the ordering service.
type MetricsCollector struct {
	registry *prometheus.Registry

	chatRequests          *prometheus.CounterVec
	ordersCompleted       prometheus.Counter
	orderValue            prometheus.Histogram
	rewardsApplied        prometheus.Histogram
	recommendationsServed prometheus.Counter
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	chatRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Chat messages processed, by classified intent",
		},
		[]string{"intent"},
	)

	ordersCompleted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_completed_total",
			Help: "Orders successfully checked out",
		},
	)

	orderValue := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_value_rupees",
			Help:    "Total value of completed orders",
			Buckets: prometheus.LinearBuckets(0, 250, 10),
		},
	)

	rewardsApplied := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rl_reward_applied",
			Help:    "Reward signal applied per completed order",
			Buckets: []float64{0.5, 1.0, 1.3, 1.5, 1.8, 2.0},
		},
	)

	recommendationsServed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Personalized items shown to users",
		},
	)

	for _, metric := range []prometheus.Collector{
		chatRequests, ordersCompleted, orderValue, rewardsApplied, recommendationsServed,
	} {
		registry.MustRegister(metric)
	}

	return &MetricsCollector{
		registry:              registry,
		chatRequests:          chatRequests,
		ordersCompleted:       ordersCompleted,
		orderValue:            orderValue,
		rewardsApplied:        rewardsApplied,
		recommendationsServed: recommendationsServed,
	}
}

// Handler returns the HTTP handler serving the registry in the prometheus
// exposition format.
func (c *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveChat counts one processed chat message.
func (c *MetricsCollector) ObserveChat(intent string) {
	c.chatRequests.WithLabelValues(intent).Inc()
}

// ObserveOrder counts one completed checkout with its value and the reward
// signal that was applied.
func (c *MetricsCollector) ObserveOrder(total, reward float64) {
	c.ordersCompleted.Inc()
	c.orderValue.Observe(total)
	c.rewardsApplied.Observe(reward)
}

// ObserveRecommendations counts items served in one recommendation batch.
func (c *MetricsCollector) ObserveRecommendations(count int) {
	c.recommendationsServed.Add(float64(count))
}

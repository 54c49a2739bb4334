package monitoring

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMonitor_GetMetrics(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	metrics := m.GetMetrics()

	// Check if our metric is present
	value, exists := metrics["test_metric"]
	if !exists {
		t.Fatalf("Expected 'test_metric' to be present in metrics, but it was not")
	}

	// Check value
	if value != 42 {
		t.Errorf("Expected 'test_metric' to be 42, but got %v", value)
	}

	// Check uptime presence
	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}

func TestMonitor_IncrementCounter(t *testing.T) {
	m := NewMonitor()

	m.IncrementCounter("chat_messages")
	m.IncrementCounter("chat_messages")

	value, exists := m.GetMetric("chat_messages")
	if !exists {
		t.Fatalf("Expected 'chat_messages' to be present in metrics, but it was not")
	}
	if value != 2 {
		t.Errorf("Expected 'chat_messages' to be 2, but got %v", value)
	}
}

func TestMonitor_Reset(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	m.Reset()

	metrics := m.GetMetrics()

	// Our test metric should be gone, but uptime should still be there
	_, exists := metrics["test_metric"]
	if exists {
		t.Errorf("Expected 'test_metric' to be removed after Reset(), but it was present")
	}

	// Uptime should still be present (it's added on GetMetrics call)
	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}

func TestMetricsCollectorCounters(t *testing.T) {
	c := NewMetricsCollector()

	c.ObserveChat("recommendation_request")
	c.ObserveChat("recommendation_request")
	c.ObserveChat("greeting")
	c.ObserveRecommendations(5)
	c.ObserveOrder(680, 1.5)

	if got := testutil.ToFloat64(c.chatRequests.WithLabelValues("recommendation_request")); got != 2 {
		t.Errorf("chat_requests{recommendation_request} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.recommendationsServed); got != 5 {
		t.Errorf("recommendations_served_total = %v, want 5", got)
	}
	if got := testutil.ToFloat64(c.ordersCompleted); got != 1 {
		t.Errorf("orders_completed_total = %v, want 1", got)
	}

	expected := strings.NewReader(`
# HELP orders_completed_total Orders successfully checked out
# TYPE orders_completed_total counter
orders_completed_total 1
`)
	if err := testutil.CollectAndCompare(c.ordersCompleted, expected); err != nil {
		t.Errorf("orders_completed_total exposition mismatch: %v", err)
	}
}

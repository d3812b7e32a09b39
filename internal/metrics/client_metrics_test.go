package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestNewClientMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewClientMetrics(reg)
	second := NewClientMetrics(reg)

	first.RecordShopRecompute()
	second.RecordShopRecompute()

	if got := testutil.ToFloat64(first.shopRecomputes); got != 2 {
		t.Fatalf("expected shared counter value 2, got %v", got)
	}
}

func TestRecordCartMutation(t *testing.T) {
	m := NewClientMetrics(prometheus.NewRegistry())

	m.RecordCartMutation("add", 2)
	m.RecordCartMutation("add", 5)
	m.RecordCartMutation("clear", 0)

	if got := testutil.ToFloat64(m.cartMutations.WithLabelValues("add")); got != 2 {
		t.Fatalf("expected 2 add mutations, got %v", got)
	}
	if got := testutil.ToFloat64(m.cartMutations.WithLabelValues("clear")); got != 1 {
		t.Fatalf("expected 1 clear mutation, got %v", got)
	}
	if got := testutil.ToFloat64(m.cartItems); got != 0 {
		t.Fatalf("expected item gauge 0 after clear, got %v", got)
	}

	m.SetCartItems(4)
	if got := testutil.ToFloat64(m.cartItems); got != 4 {
		t.Fatalf("expected item gauge 4, got %v", got)
	}
}

func TestRecordCartEvent(t *testing.T) {
	m := NewClientMetrics(prometheus.NewRegistry())

	m.RecordCartEvent(nil)
	m.RecordCartEvent(errors.New("broker down"))
	m.RecordCartEvent(nil)

	if got := testutil.ToFloat64(m.cartEvents.WithLabelValues("ok")); got != 2 {
		t.Fatalf("expected 2 ok events, got %v", got)
	}
	if got := testutil.ToFloat64(m.cartEvents.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected 1 failed event, got %v", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	m := NewClientMetrics(prometheus.NewRegistry())

	m.RecordAPIRequest("list_shops", 200, 30*time.Millisecond)
	m.RecordAPIRequest("list_shops", 0, time.Second)

	if got := testutil.ToFloat64(m.apiRequests.WithLabelValues("list_shops", "200")); got != 1 {
		t.Fatalf("expected one 200 request, got %v", got)
	}
	if got := testutil.ToFloat64(m.apiRequests.WithLabelValues("list_shops", "transport_error")); got != 1 {
		t.Fatalf("expected one transport error, got %v", got)
	}

	observer := m.apiDuration.WithLabelValues("list_shops")
	metric := &dto.Metric{}
	if err := observer.(prometheus.Histogram).Write(metric); err != nil {
		t.Fatalf("failed to write histogram: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Fatalf("expected 2 duration samples, got %d", metric.Histogram.GetSampleCount())
	}
	if sum := metric.Histogram.GetSampleSum(); sum < 1.0 || sum > 1.1 {
		t.Fatalf("unexpected duration sum %v", sum)
	}
}

func TestRecordNotification(t *testing.T) {
	m := NewClientMetrics(prometheus.NewRegistry())

	m.RecordNotification("error")
	m.RecordNotification("success")
	m.RecordNotification("error")

	if got := testutil.ToFloat64(m.notifications.WithLabelValues("error")); got != 2 {
		t.Fatalf("expected 2 error notifications, got %v", got)
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *ClientMetrics

	m.RecordCartMutation("add", 1)
	m.SetCartItems(1)
	m.RecordCartEvent(nil)
	m.RecordAPIRequest("me", 200, time.Millisecond)
	m.RecordShopRecompute()
	m.RecordNotification("info")
}

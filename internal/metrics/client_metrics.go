package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics содержит метрики клиента UniEats.
// Все методы безопасны для nil-получателя, чтобы компоненты могли работать без метрик.
type ClientMetrics struct {
	// Корзина
	cartMutations *prometheus.CounterVec
	cartItems     prometheus.Gauge
	cartEvents    *prometheus.CounterVec

	// REST-клиент
	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec

	shopRecomputes prometheus.Counter
	shopRefreshes  *prometheus.CounterVec
	notifications  *prometheus.CounterVec
}

// NewClientMetrics регистрирует метрики в registerer (nil: DefaultRegisterer).
func NewClientMetrics(registerer prometheus.Registerer) *ClientMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ClientMetrics{
		cartMutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "unieats_cart_mutations_total",
			Help: "Total number of cart mutations by operation",
		}, []string{"op"}),
		cartItems: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "unieats_cart_items",
			Help: "Current total quantity of items in the cart",
		}),
		cartEvents: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "unieats_cart_events_total",
			Help: "Cart events handed to the publisher by result",
		}, []string{"result"}),
		apiRequests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "unieats_api_requests_total",
			Help: "Backend REST requests by route and status",
		}, []string{"route", "status"}),
		apiDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "unieats_api_request_duration_seconds",
			Help:    "Duration of backend REST requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 15.0},
		}, []string{"route"}),
		shopRecomputes: registerCounter(registerer, prometheus.CounterOpts{
			Name: "unieats_shop_recomputes_total",
			Help: "Number of shop list filter/search/sort recomputations",
		}),
		shopRefreshes: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "unieats_shop_refresh_runs_total",
			Help: "Background shop list refreshes grouped by result",
		}, []string{"result"}),
		notifications: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "unieats_notifications_total",
			Help: "User-visible notifications by level",
		}, []string{"level"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCartMutation учитывает изменение корзины и текущее количество позиций.
func (m *ClientMetrics) RecordCartMutation(op string, itemCount int) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(op).Inc()
	m.cartItems.Set(float64(itemCount))
}

// SetCartItems выставляет gauge без учёта мутации (после загрузки из хранилища).
func (m *ClientMetrics) SetCartItems(itemCount int) {
	if m == nil {
		return
	}
	m.cartItems.Set(float64(itemCount))
}

// RecordCartEvent учитывает результат публикации события корзины.
func (m *ClientMetrics) RecordCartEvent(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.cartEvents.WithLabelValues(result).Inc()
}

// RecordAPIRequest учитывает запрос к бэкенду. status=0 означает сетевую ошибку.
func (m *ClientMetrics) RecordAPIRequest(route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := "transport_error"
	if status > 0 {
		label = fmt.Sprintf("%d", status)
	}
	m.apiRequests.WithLabelValues(route, label).Inc()
	m.apiDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordShopRecompute увеличивает счётчик пересчётов списка магазинов.
func (m *ClientMetrics) RecordShopRecompute() {
	if m == nil {
		return
	}
	m.shopRecomputes.Inc()
}

// RecordShopRefresh учитывает фоновое обновление списка магазинов.
func (m *ClientMetrics) RecordShopRefresh(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.shopRefreshes.WithLabelValues(result).Inc()
}

// RecordNotification учитывает показанное пользователю сообщение.
func (m *ClientMetrics) RecordNotification(level string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(level).Inc()
}

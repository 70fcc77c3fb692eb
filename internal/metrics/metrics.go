package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry метрики магазина. Методы безопасны для nil, тесты передают nil.
type Registry struct {
	reg               *prometheus.Registry
	OrdersPlaced      prometheus.Counter
	OrderRejections   *prometheus.CounterVec
	PlaceOrderSeconds prometheus.Histogram
	Notifications     *prometheus.CounterVec
	CourierLookups    *prometheus.CounterVec
	CourierCacheHits  prometheus.Counter
}

// NewRegistry создаёт отдельный реестр со всеми метриками магазина.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	placed := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_orders_placed_total"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "storefront_order_rejections_total"}, []string{"reason"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_place_order_seconds",
		Buckets: prometheus.DefBuckets,
	})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "storefront_notifications_total"}, []string{"channel", "result"})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "storefront_courier_lookups_total"}, []string{"result"})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_courier_cache_hits_total"})

	r.MustRegister(placed, rejections, latency, notifications, lookups, cacheHits)
	return &Registry{
		reg:               r,
		OrdersPlaced:      placed,
		OrderRejections:   rejections,
		PlaceOrderSeconds: latency,
		Notifications:     notifications,
		CourierLookups:    lookups,
		CourierCacheHits:  cacheHits,
	}
}

// Handler отдаёт метрики в формате Prometheus.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// ObserveOrderPlaced учитывает заказ и время его оформления.
func (r *Registry) ObserveOrderPlaced(started time.Time) {
	if r == nil {
		return
	}
	r.OrdersPlaced.Inc()
	r.PlaceOrderSeconds.Observe(time.Since(started).Seconds())
}

// ObserveOrderRejected учитывает отказ с причиной reason.
func (r *Registry) ObserveOrderRejected(reason string) {
	if r == nil {
		return
	}
	r.OrderRejections.WithLabelValues(reason).Inc()
}

// ObserveNotification учитывает результат одного канала уведомлений.
func (r *Registry) ObserveNotification(channel string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.Notifications.WithLabelValues(channel, result).Inc()
}

// ObserveCourierLookup учитывает исход запроса к курьерскому сервису.
func (r *Registry) ObserveCourierLookup(result string) {
	if r == nil {
		return
	}
	r.CourierLookups.WithLabelValues(result).Inc()
}

// ObserveCourierCacheHit учитывает ответ из кэша.
func (r *Registry) ObserveCourierCacheHit() {
	if r == nil {
		return
	}
	r.CourierCacheHits.Inc()
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contadores de negocio del motor de pedidos e inventario.
// Todos los métodos aceptan receptor nil para que los tests y herramientas puedan omitirlas.
type Metrics struct {
	registry *prometheus.Registry

	Reservations      *prometheus.CounterVec
	StockReleased     *prometheus.CounterVec
	OrdersCreated     prometheus.Counter
	OrderFailures     *prometheus.CounterVec
	OrderTransitions  *prometheus.CounterVec
	Notifications     *prometheus.CounterVec
	ReconcileWarnings prometheus.Counter
}

// New registra los contadores en un registry propio (más los colectores estándar de Go y proceso).
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "bakery"
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}
	m.Reservations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_reservations_total",
		Help:      "Reservas de stock por resultado (ok, insufficient, unavailable, not_found, error)",
	}, []string{"result"})
	m.StockReleased = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_released_units_total",
		Help:      "Unidades devueltas al stock por motivo",
	}, []string{"reason"})
	m.OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Pedidos confirmados",
	})
	m.OrderFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_creation_failures_total",
		Help:      "Pedidos rechazados por motivo",
	}, []string{"reason"})
	m.OrderTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Transiciones de estado aplicadas por estado destino",
	}, []string{"to"})
	m.Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Eventos de notificación por resultado (sent, failed, dropped)",
	}, []string{"result"})
	m.ReconcileWarnings = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciliation_warnings_total",
		Help:      "Líneas cuya devolución de stock se omitió al cancelar",
	})

	registry.MustRegister(
		m.Reservations, m.StockReleased, m.OrdersCreated, m.OrderFailures,
		m.OrderTransitions, m.Notifications, m.ReconcileWarnings,
	)
	return m
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry devuelve el registry interno (útil en tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Reservation(result string) {
	if m == nil {
		return
	}
	m.Reservations.WithLabelValues(result).Inc()
}

func (m *Metrics) Released(reason string, units int) {
	if m == nil {
		return
	}
	m.StockReleased.WithLabelValues(reason).Add(float64(units))
}

func (m *Metrics) OrderCreated() {
	if m == nil {
		return
	}
	m.OrdersCreated.Inc()
}

func (m *Metrics) OrderFailed(reason string) {
	if m == nil {
		return
	}
	m.OrderFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) Transition(to string) {
	if m == nil {
		return
	}
	m.OrderTransitions.WithLabelValues(to).Inc()
}

func (m *Metrics) Notification(result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) ReconcileWarning() {
	if m == nil {
		return
	}
	m.ReconcileWarnings.Inc()
}

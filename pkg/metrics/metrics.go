package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process-wide counters exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	OrdersCreated     *prometheus.CounterVec
	OrdersApproved    *prometheus.CounterVec
	OrdersVoided      *prometheus.CounterVec
	StockMovements    *prometheus.CounterVec
	InsufficientStock prometheus.Counter
	HTTPRequests      *prometheus.CounterVec
}

// New builds a registry with the go/process collectors plus the domain
// counters.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warehouse_orders_created_total",
			Help: "Orders created, labeled by kind.",
		}, []string{"kind"}),
		OrdersApproved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warehouse_orders_approved_total",
			Help: "Orders approved, labeled by kind.",
		}, []string{"kind"}),
		OrdersVoided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warehouse_orders_voided_total",
			Help: "Orders voided, labeled by kind.",
		}, []string{"kind"}),
		StockMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warehouse_stock_movements_total",
			Help: "Units moved through the stock ledger, labeled by direction.",
		}, []string{"direction"}),
		InsufficientStock: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warehouse_insufficient_stock_total",
			Help: "Outbound approvals rejected for insufficient stock.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warehouse_http_requests_total",
			Help: "HTTP requests served, labeled by method and status class.",
		}, []string{"method", "status"}),
	}

	registry.MustRegister(
		m.OrdersCreated,
		m.OrdersApproved,
		m.OrdersVoided,
		m.StockMovements,
		m.InsufficientStock,
		m.HTTPRequests,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

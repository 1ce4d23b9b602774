// Package metrics exposes marketplace activity as Prometheus collectors.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "marketplace"

	// Status label values
	StatusAccepted = "accepted"
	StatusRejected = "rejected"

	OpAdd    = "add"
	OpRemove = "remove"
)

// Metrics implements marketplace.Observer.
type Metrics struct {
	published   *prometheus.CounterVec // by producer, status
	cartOps     *prometheus.CounterVec // by op, status
	orders      prometheus.Counter
	orderItems  prometheus.Histogram
	queueLength *prometheus.GaugeVec // by producer
}

// New creates a Metrics instance and registers all collectors with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "publish_total",
			Help:      "Publish attempts by producer and status",
		}, []string{"producer", "status"}),
		cartOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Cart add/remove attempts by operation and status",
		}, []string{"op", "status"}),
		orders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "orders_placed_total",
			Help:      "Total orders placed",
		}),
		orderItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "order_items",
			Help:      "Number of items per placed order",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		queueLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "producer",
			Name:      "queue_length",
			Help:      "Items currently queued per producer",
		}, []string{"producer"}),
	}

	collectors := []prometheus.Collector{
		m.published,
		m.cartOps,
		m.orders,
		m.orderItems,
		m.queueLength,
	}
	var errs []error
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

func status(ok bool) string {
	if ok {
		return StatusAccepted
	}
	return StatusRejected
}

func (m *Metrics) Published(producerID string, accepted bool) {
	m.published.WithLabelValues(producerID, status(accepted)).Inc()
}

func (m *Metrics) CartAdded(accepted bool) {
	m.cartOps.WithLabelValues(OpAdd, status(accepted)).Inc()
}

func (m *Metrics) CartRemoved(accepted bool) {
	m.cartOps.WithLabelValues(OpRemove, status(accepted)).Inc()
}

func (m *Metrics) OrderPlaced(items int) {
	m.orders.Inc()
	m.orderItems.Observe(float64(items))
}

func (m *Metrics) QueueLength(producerID string, n int) {
	m.queueLength.WithLabelValues(producerID).Set(float64(n))
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DispatchMetrics counts delivery outcomes per adapter. Exposition is the
// host application's concern; this package only records.
type DispatchMetrics struct {
	DeliveriesTotal *prometheus.CounterVec
	MissingDSNTotal prometheus.Counter
}

// New initializes and registers dispatch metrics on the given registerer.
// Pass prometheus.DefaultRegisterer for the usual global registry.
func New(reg prometheus.Registerer) *DispatchMetrics {
	factory := promauto.With(reg)
	return &DispatchMetrics{
		DeliveriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "raven",
			Subsystem: "dispatch",
			Name:      "deliveries_total",
			Help:      "Total number of event deliveries by outcome.",
		}, []string{"outcome"}), // outcome: success, failed
		MissingDSNTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "raven",
			Subsystem: "dispatch",
			Name:      "missing_dsn_total",
			Help:      "Total number of sends refused because no DSN was configured.",
		}),
	}
}

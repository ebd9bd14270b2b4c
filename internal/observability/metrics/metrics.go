// Package metrics exposes application-level Prometheus instruments. The
// counters are scraped through the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics counts ingestion outcomes per record variant.
type Metrics struct {
	RecordsWritten  *prometheus.CounterVec
	RecordsRejected *prometheus.CounterVec
	BatchesRejected *prometheus.CounterVec
}

// New registers the instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mercado_records_written_total",
			Help: "Records committed to storage, labeled by variant and action.",
		}, []string{"record_type", "action"}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mercado_records_rejected_total",
			Help: "Records rejected before or during commit, labeled by variant and reason.",
		}, []string{"record_type", "reason"}),
		BatchesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mercado_batches_rejected_total",
			Help: "Whole batches refused by guarded ingestion.",
		}, []string{"record_type", "reason"}),
	}
	reg.MustRegister(m.RecordsWritten, m.RecordsRejected, m.BatchesRejected)
	return m
}

func newDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

// Module wires the default registry instruments.
var Module = fx.Module("metrics",
	fx.Provide(newDefault),
)

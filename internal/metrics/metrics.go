package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects store metrics on its own registry. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	persist    *prometheus.HistogramVec
	owners     prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "whatsbot",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operations by name and result.",
		}, []string{"op", "result"}),
		persist: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "whatsbot",
			Subsystem: "store",
			Name:      "persist_seconds",
			Help:      "Time spent writing the snapshot to the backend.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend"}),
		owners: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "whatsbot",
			Subsystem: "store",
			Name:      "owners",
			Help:      "Owners in the live snapshot.",
		}),
	}
	r.registry.MustRegister(
		r.operations,
		r.persist,
		r.owners,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) ObserveOp(op, result string) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(op, result).Inc()
}

func (r *Recorder) ObservePersist(backend string, d time.Duration) {
	if r == nil {
		return
	}
	r.persist.WithLabelValues(backend).Observe(d.Seconds())
}

func (r *Recorder) SetOwners(n int) {
	if r == nil {
		return
	}
	r.owners.Set(float64(n))
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

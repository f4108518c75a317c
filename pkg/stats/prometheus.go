// Package stats holds the monitor's own Prometheus instrumentation,
// exposed at /metrics. These describe ringview itself, not the cluster it
// watches.
package stats

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all self-instrumentation collectors.
type Metrics struct {
	PollCycles        prometheus.Counter
	PollCycleDuration prometheus.Histogram
	PollCyclesSkipped prometheus.Counter
	NodesPolled       prometheus.Gauge
	NodesReachable    prometheus.Gauge
	SubscribersActive prometheus.Gauge
	DeliveryFailures  prometheus.Counter
	AlertsFired       *prometheus.CounterVec
}

var (
	once   sync.Once
	shared *Metrics
)

// New returns the process-wide collectors, registering them on the
// default registry exactly once.
func New() *Metrics {
	once.Do(func() {
		shared = NewWith(prometheus.DefaultRegisterer)
	})

	return shared
}

// NewWith registers a fresh collector set on the given registerer.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PollCycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "ringview_poll_cycles_total",
			Help: "Completed poll cycles.",
		}),
		PollCycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ringview_poll_cycle_duration_seconds",
			Help:    "Duration of a full extract/aggregate/score cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		PollCyclesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "ringview_poll_cycles_skipped_total",
			Help: "Poll ticks skipped because the upstream source was disconnected.",
		}),
		NodesPolled: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ringview_nodes_polled",
			Help: "Endpoints polled in the last cycle.",
		}),
		NodesReachable: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ringview_nodes_reachable",
			Help: "Endpoints reachable in the last cycle.",
		}),
		SubscribersActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ringview_subscribers_active",
			Help: "Connected broadcast subscribers.",
		}),
		DeliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ringview_delivery_failures_total",
			Help: "Subscriber deliveries that failed and dropped the subscriber.",
		}),
		AlertsFired: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ringview_alerts_fired_total",
			Help: "Health alerts fired, by resulting status.",
		}, []string{"status"}),
	}
}

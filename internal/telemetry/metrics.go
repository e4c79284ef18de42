// ABOUTME: Prometheus metrics for log mutations, generation calls and the HTTP API.
// ABOUTME: Metrics register on an injected registry so tests stay isolated.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "fitlog"
	Subsystem = "core"
)

type Manager struct {
	// counters
	CounterMealsAdded       prometheus.Counter
	CounterMealsDeleted     prometheus.Counter
	CounterWorkoutsFinished prometheus.Counter
	CounterWeightsLogged    prometheus.Counter
	CounterGenerations      *prometheus.CounterVec
	CounterStoreErrors      *prometheus.CounterVec
	CounterRequests         *prometheus.CounterVec

	// gauges
	GaugeSubscriptions prometheus.Gauge

	// histograms
	HistGenerationDuration prometheus.Histogram
	HistRequestDuration    prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager(Namespace, "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager(Namespace, "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterMealsAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "meals_added",
			Help:      "The total number of meals added to diet logs",
		}),
		CounterMealsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "meals_deleted",
			Help:      "The total number of meals removed from diet logs",
		}),
		CounterWorkoutsFinished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workouts_finished",
			Help:      "The total number of saved workout sessions",
		}),
		CounterWeightsLogged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "weights_logged",
			Help:      "The total number of progress entries appended",
		}),
		CounterGenerations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "generations",
			Help:      "Completion requests by kind and outcome",
		}, []string{"kind", "outcome"}),
		CounterStoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "store_errors",
			Help:      "Failed store reads and writes by operation",
		}, []string{"op"}),
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming API requests",
		}, []string{"method", "status"}),
		GaugeSubscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "live_subscriptions",
			Help:      "Current number of live read-model subscriptions",
		}),
		HistGenerationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "generation_duration_seconds",
			Help:      "Duration of completion requests in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Total duration of API requests in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

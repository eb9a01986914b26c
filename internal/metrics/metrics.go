// Package metrics exposes Prometheus collectors for the aggregation
// service.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksTotal          *prometheus.CounterVec
	taskDurationSeconds *prometheus.HistogramVec
	tasksInflight       prometheus.Gauge
	requestsTotal       *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		tasksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscout_source_tasks_total",
				Help: "Total number of source tasks executed, labeled by kind and status.",
			},
			[]string{"kind", "status"},
		)

		taskDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finscout_source_task_duration_seconds",
				Help:    "Duration of source task execution, labeled by kind.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		)

		tasksInflight = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "finscout_source_tasks_inflight",
				Help: "Number of source tasks currently executing.",
			},
		)

		requestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscout_requests_total",
				Help: "Total number of aggregation requests, labeled by pipeline.",
			},
			[]string{"pipeline"},
		)
	})
}

// TaskStarted marks one task entering the pool.
func TaskStarted() {
	if tasksInflight != nil {
		tasksInflight.Inc()
	}
}

// TaskFinished records one completed task with its outcome.
func TaskFinished(kind string, ok bool, elapsed time.Duration) {
	status := "ok"
	if !ok {
		status = "error"
	}
	if tasksTotal != nil {
		tasksTotal.WithLabelValues(kind, status).Inc()
	}
	if taskDurationSeconds != nil {
		taskDurationSeconds.WithLabelValues(kind).Observe(elapsed.Seconds())
	}
	if tasksInflight != nil {
		tasksInflight.Dec()
	}
}

// RequestServed counts one pipeline invocation.
func RequestServed(pipeline string) {
	if requestsTotal != nil {
		requestsTotal.WithLabelValues(pipeline).Inc()
	}
}

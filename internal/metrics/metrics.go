// Package metrics exposes Prometheus collectors for the reconcile loop.
package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Trigger labels for restores.
const (
	TriggerAuto   = "auto"
	TriggerManual = "manual"
)

var (
	regOK atomic.Bool

	ticks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "winpin",
			Subsystem: "reconcile",
			Name:      "ticks_total",
			Help:      "Reconcile ticks by resulting phase.",
		}, []string{"phase"},
	)
	sampleErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "winpin",
			Subsystem: "reconcile",
			Name:      "sample_errors_total",
			Help:      "Ticks skipped because the window system could not be sampled.",
		},
	)
	sampleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "winpin",
			Subsystem: "reconcile",
			Name:      "sample_duration_seconds",
			Help:      "Time spent capturing a snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)
	topologyChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "winpin",
			Subsystem: "reconcile",
			Name:      "topology_changes_total",
			Help:      "Monitor topology changes that settled.",
		},
	)
	restores = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "winpin",
			Subsystem: "restore",
			Name:      "runs_total",
			Help:      "Layout restores by trigger.",
		}, []string{"trigger"},
	)
	restoredWindows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "winpin",
			Subsystem: "restore",
			Name:      "windows_total",
			Help:      "Windows handled during restores by outcome.",
		}, []string{"outcome"},
	)
	topologies = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "winpin",
			Subsystem: "history",
			Name:      "topologies",
			Help:      "Monitor topologies with recorded layouts.",
		},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{ticks, sampleErrors, sampleDuration, topologyChanges, restores, restoredWindows, topologies}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves the default gatherer.
func Handler() http.Handler { return promhttp.Handler() }

// HandlerFor serves a specific gatherer.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// The helpers below no-op until Register succeeds.

func IncTick(phase string) {
	if regOK.Load() {
		ticks.WithLabelValues(phase).Inc()
	}
}

func IncSampleError() {
	if regOK.Load() {
		sampleErrors.Inc()
	}
}

func ObserveSample(seconds float64) {
	if regOK.Load() {
		sampleDuration.Observe(seconds)
	}
}

func IncTopologyChange() {
	if regOK.Load() {
		topologyChanges.Inc()
	}
}

func RecordRestore(trigger string, restored, skipped, failed int) {
	if !regOK.Load() {
		return
	}
	restores.WithLabelValues(trigger).Inc()
	restoredWindows.WithLabelValues("restored").Add(float64(restored))
	restoredWindows.WithLabelValues("skipped").Add(float64(skipped))
	restoredWindows.WithLabelValues("failed").Add(float64(failed))
}

func SetTopologies(n int) {
	if regOK.Load() {
		topologies.Set(float64(n))
	}
}

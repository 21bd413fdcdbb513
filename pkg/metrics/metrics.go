// Package metrics holds the Prometheus collectors of the runtime.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "loam"

var (
	// Registry holds the runtime collectors. It is separate from the default
	// registry so that embedding programs decide whether to expose it.
	Registry = prometheus.NewRegistry()

	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "messages_total",
			Help:      "Total number of messages processed by the update loop.",
		},
		[]string{"tag"},
	)

	updateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "update_duration_seconds",
			Help:      "Duration of update, commit and view for one message.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14), // 50µs to ~0.4s
		},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "queue_depth",
			Help:      "Number of messages waiting to be processed.",
		},
	)

	crashes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "crashes_total",
			Help:      "Total number of update calls that panicked.",
		},
	)

	cmdsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cmd",
			Name:      "inflight",
			Help:      "Number of commands started but not yet resolved.",
		},
	)

	effects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cmd",
			Name:      "effects_total",
			Help:      "Total number of executed effects.",
		},
		[]string{"kind", "outcome"},
	)

	effectDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cmd",
			Name:      "effect_duration_seconds",
			Help:      "Duration of effect execution.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(messages, updateDuration, queueDepth, crashes,
		cmdsInFlight, effects, effectDuration)
}

// Handler serves the collectors in Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveMessage records one processed message.
func ObserveMessage(tag string, d time.Duration) {
	messages.WithLabelValues(tag).Inc()
	updateDuration.Observe(d.Seconds())
}

// SetQueueDepth records the current length of the message queue.
func SetQueueDepth(n int) { queueDepth.Set(float64(n)) }

// Crash records an update call that panicked.
func Crash() { crashes.Inc() }

// AddInFlight adjusts the number of running commands.
func AddInFlight(delta int) { cmdsInFlight.Add(float64(delta)) }

// ObserveEffect records the execution of one effect. The outcome is "ok" or
// "error".
func ObserveEffect(kind, outcome string, d time.Duration) {
	effects.WithLabelValues(kind, outcome).Inc()
	effectDuration.WithLabelValues(kind).Observe(d.Seconds())
}

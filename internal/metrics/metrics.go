// Package metrics holds the Prometheus collectors for the GD service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gd"

var (
	upstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_calls_total",
			Help:      "Calls to LLM and TTS backends by service and outcome.",
		},
		[]string{"service", "outcome"},
	)

	upstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_call_duration_seconds",
			Help:      "Latency of LLM and TTS backend calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"service"},
	)

	turnHandoffsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turn_handoffs_total",
			Help:      "Turn coordinator outcomes per participant.",
		},
		[]string{"participant", "outcome"},
	)

	recordWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_writes_total",
			Help:      "User record writes by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveUpstream records one backend call started at start.
func ObserveUpstream(service string, start time.Time, err error) {
	upstreamCallsTotal.WithLabelValues(service, outcome(err)).Inc()
	upstreamDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
}

// Handoff records a coordinator outcome such as "generated", "forwarded" or "rejected".
func Handoff(participant, result string) {
	turnHandoffsTotal.WithLabelValues(participant, result).Inc()
}

// RecordWrite records a user record write.
func RecordWrite(op string, err error) {
	recordWritesTotal.WithLabelValues(op, outcome(err)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

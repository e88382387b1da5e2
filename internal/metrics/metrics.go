// Package metrics exposes Prometheus collectors for live sessions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector. A nil *Registry is valid and records nothing.
type Registry struct {
	registry *prometheus.Registry

	SessionsActive   prometheus.Gauge
	SessionsTotal    prometheus.Counter
	FramesSent       *prometheus.CounterVec
	ControlMessages  *prometheus.CounterVec
	EdgesAccepted    *prometheus.CounterVec
	EdgesDropped     prometheus.Counter
	PhaseDuration    *prometheus.HistogramVec
	TickDuration     prometheus.Histogram
	CentralityRuns   prometheus.Counter
	CentralityTiming prometheus.Histogram
}

// NewRegistry creates a registry with all collectors plus the Go runtime and
// process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)
	return &Registry{
		registry: reg,
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "atlas_sessions_active",
			Help: "Number of connected streaming sessions",
		}),
		SessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_sessions_total",
			Help: "Total number of streaming sessions started",
		}),
		FramesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_frames_sent_total",
			Help: "Frames written to clients by type",
		}, []string{"type"}),
		ControlMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_control_messages_total",
			Help: "Inbound control messages by outcome",
		}, []string{"status"}),
		EdgesAccepted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_edges_total",
			Help: "Edges added to session graphs by type",
		}, []string{"type"}),
		EdgesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_edges_dropped_total",
			Help: "Edges dropped because an endpoint was unknown",
		}),
		PhaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "atlas_analysis_phase_duration_seconds",
			Help:    "Duration of each analysis phase",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"phase"}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "atlas_layout_tick_duration_seconds",
			Help:    "Time spent computing one layout tick",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		CentralityRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_centrality_runs_total",
			Help: "Full centrality recomputations",
		}),
		CentralityTiming: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "atlas_centrality_duration_seconds",
			Help:    "Time spent per centrality recomputation",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5},
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// SessionStarted records a new connected session.
func (r *Registry) SessionStarted() {
	if r == nil {
		return
	}
	r.SessionsTotal.Inc()
	r.SessionsActive.Inc()
}

// SessionEnded records a session teardown.
func (r *Registry) SessionEnded() {
	if r == nil {
		return
	}
	r.SessionsActive.Dec()
}

func (r *Registry) RecordFrame(frameType string) {
	if r == nil {
		return
	}
	r.FramesSent.WithLabelValues(frameType).Inc()
}

func (r *Registry) RecordControl(status string) {
	if r == nil {
		return
	}
	r.ControlMessages.WithLabelValues(status).Inc()
}

func (r *Registry) RecordEdge(edgeType string, accepted bool) {
	if r == nil {
		return
	}
	if !accepted {
		r.EdgesDropped.Inc()
		return
	}
	r.EdgesAccepted.WithLabelValues(edgeType).Inc()
}

func (r *Registry) RecordPhase(phase string, d time.Duration) {
	if r == nil {
		return
	}
	r.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (r *Registry) RecordTick(d time.Duration) {
	if r == nil {
		return
	}
	r.TickDuration.Observe(d.Seconds())
}

func (r *Registry) RecordCentrality(d time.Duration) {
	if r == nil {
		return
	}
	r.CentralityRuns.Inc()
	r.CentralityTiming.Observe(d.Seconds())
}

package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// Update outcomes recorded by the webhook orchestrator.
const (
	OutcomeHandled   = "handled"
	OutcomeIgnored   = "ignored"
	OutcomeStale     = "stale"
	OutcomeUnknown   = "unknown_bot"
	OutcomeFailed    = "failed"
	OutcomeForbidden = "forbidden"
)

// Metrics holds the engine's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	blockVisits    *prometheus.CounterVec
	blockExits     *prometheus.CounterVec
	updates        *prometheus.CounterVec
	updateDuration *prometheus.HistogramVec
	savedFields    *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors, including Go runtime collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		blockVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botengine_block_visits_total",
				Help: "Total number of block entries",
			},
			[]string{"block_type"},
		),
		blockExits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botengine_block_exits_total",
				Help: "Total number of resolved block exits",
			},
			[]string{"block_type", "exit_point"},
		),
		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botengine_updates_total",
				Help: "Inbound updates by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		updateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "botengine_update_duration_seconds",
				Help:    "Time spent handling one inbound update",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		savedFields: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botengine_saved_fields_total",
				Help: "Collected values handed to the user-data service",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(
		m.blockVisits, m.blockExits, m.updates, m.updateDuration, m.savedFields,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that count block entries and exits.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBlockEnter: func(_ context.Context, e *domain.BlockEvent) {
			m.blockVisits.WithLabelValues(string(e.BlockType)).Inc()
		},
		OnBlockLeave: func(_ context.Context, e *domain.BlockEvent) {
			if e.ExitPoint != "" {
				m.blockExits.WithLabelValues(string(e.BlockType), e.ExitPoint).Inc()
			}
		},
	}
}

// ObserveUpdate records the outcome and duration of one update.
func (m *Metrics) ObserveUpdate(kind, outcome string, elapsed time.Duration) {
	m.updates.WithLabelValues(kind, outcome).Inc()
	m.updateDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveSavedField records the result of a user-data write.
func (m *Metrics) ObserveSavedField(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.savedFields.WithLabelValues(result).Inc()
}

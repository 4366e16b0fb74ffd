package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by runner hooks.
type Metrics struct {
	Steps      *prometheus.CounterVec
	Operations *prometheus.CounterVec
	Runs       *prometheus.CounterVec
	Active     prometheus.Gauge
	Duration   *prometheus.HistogramVec

	mu      sync.Mutex
	started map[string]time.Time
	last    map[string]domain.Stats
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stepwise_steps_total",
			Help: "Visible steps taken, by algorithm.",
		}, []string{"kind"}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stepwise_operations_total",
			Help: "Counted operations, by algorithm and class.",
		}, []string{"kind", "class"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stepwise_runs_total",
			Help: "Finished runs, by algorithm and final status.",
		}, []string{"kind", "status"}),
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stepwise_active_runs",
			Help: "Runs currently running or paused.",
		}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stepwise_run_duration_seconds",
			Help:    "Wall time from start to completion or cancellation.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"kind"}),
		started: make(map[string]time.Time),
		last:    make(map[string]domain.Stats),
	}
	reg.MustRegister(m.Steps, m.Operations, m.Runs, m.Active, m.Duration)
	return m
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, ev *domain.StepEvent) {
			m.Steps.WithLabelValues(string(ev.Kind)).Inc()

			m.mu.Lock()
			prev := m.last[ev.RunID]
			m.last[ev.RunID] = ev.Stats
			m.mu.Unlock()

			kind := string(ev.Kind)
			m.Operations.WithLabelValues(kind, "comparison").Add(float64(ev.Stats.Comparisons - prev.Comparisons))
			m.Operations.WithLabelValues(kind, "mutation").Add(float64(ev.Stats.Mutations - prev.Mutations))
		},
		OnStatus: func(ctx context.Context, ev *domain.StatusEvent) {
			switch {
			case ev.To == domain.StatusRunning && !ev.From.Active():
				m.Active.Inc()
				m.mu.Lock()
				m.started[ev.RunID] = ev.Timestamp
				m.mu.Unlock()
			case ev.To.Terminal():
				m.Active.Dec()
				m.Runs.WithLabelValues(string(ev.Kind), string(ev.To)).Inc()
				m.mu.Lock()
				start, ok := m.started[ev.RunID]
				delete(m.started, ev.RunID)
				delete(m.last, ev.RunID)
				m.mu.Unlock()
				if ok {
					m.Duration.WithLabelValues(string(ev.Kind)).Observe(ev.Timestamp.Sub(start).Seconds())
				}
			}
		},
	}
}

package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "abacus"

// Metrics holds the calculator collectors.
type Metrics struct {
	Inputs         *prometheus.CounterVec
	Computations   *prometheus.CounterVec
	ZeroDivisions  prometheus.Counter

	sessions *sessionsCollector
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Inputs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inputs_total",
				Help:      "Total number of key presses applied, by command.",
			},
			[]string{"command"},
		),
		Computations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "computations_total",
				Help:      "Total number of evaluated operations, by operator.",
			},
			[]string{"operator"},
		),
		ZeroDivisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "division_by_zero_total",
			Help:      "Total number of divisions by zero that reset a calculator.",
		}),
		sessions: newSessionsCollector(),
	}
	reg.MustRegister(m.Inputs, m.Computations, m.ZeroDivisions, m.sessions)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInput: func(ctx context.Context, e *domain.InputEvent) {
			m.Inputs.WithLabelValues(string(e.Input.Command)).Inc()
		},
		OnCompute: func(ctx context.Context, e *domain.ComputeEvent) {
			m.Computations.WithLabelValues(string(e.Operator)).Inc()
		},
		OnDivisionByZero: func(ctx context.Context, e *domain.ComputeEvent) {
			m.ZeroDivisions.Inc()
		},
	}
}

// TrackSessions reports the abacus_active_sessions gauge from count on every scrape.
func (m *Metrics) TrackSessions(count SessionCounter) {
	m.sessions.set(count)
}

// Handler exposes the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

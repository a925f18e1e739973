package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

type instrumentMiddleware struct {
	next     ports.SessionStore
	duration *prometheus.HistogramVec
}

// NewInstrumentation records the latency and result of every store call in
// abacus_store_operation_duration_seconds.
func NewInstrumentation(reg prometheus.Registerer) Middleware {
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "abacus",
			Name:      "store_operation_duration_seconds",
			Help:      "Latency of session store operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"operation", "result"},
	)
	reg.MustRegister(duration)

	return func(next ports.SessionStore) ports.SessionStore {
		return &instrumentMiddleware{next: next, duration: duration}
	}
}

func (m *instrumentMiddleware) observe(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	m.duration.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}

func (m *instrumentMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	start := time.Now()
	err := m.next.Save(ctx, sessionID, state)
	m.observe("save", start, err)
	return err
}

func (m *instrumentMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	start := time.Now()
	state, err := m.next.Load(ctx, sessionID)
	m.observe("load", start, err)
	return state, err
}

func (m *instrumentMiddleware) Delete(ctx context.Context, sessionID string) error {
	start := time.Now()
	err := m.next.Delete(ctx, sessionID)
	m.observe("delete", start, err)
	return err
}

func (m *instrumentMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := m.next.List(ctx)
	m.observe("list", start, err)
	return ids, err
}

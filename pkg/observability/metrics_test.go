package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/keymap"
	"github.com/aretw0/abacus/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, hooks domain.LifecycleHooks, keys string) {
	t.Helper()
	inputs, err := keymap.Default().DecodeString(keys)
	require.NoError(t, err)

	eng := abacus.NewEngine(abacus.WithLifecycleHooks(hooks))
	_, _, err = eng.ApplyAll(context.Background(), nil, inputs)
	require.NoError(t, err)
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	run(t, metrics.Hooks(), "2+3*4=")
	run(t, metrics.Hooks(), "5/0=")

	assert.Equal(t, float64(5), testutil.ToFloat64(metrics.Inputs.WithLabelValues("digit")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.Inputs.WithLabelValues("compute")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Computations.WithLabelValues("add")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Computations.WithLabelValues("multiply")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.Computations.WithLabelValues("divide")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ZeroDivisions))
}

func TestMetrics_Sessions(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	count, err := testutil.GatherAndCount(reg, "abacus_active_sessions")
	require.NoError(t, err)
	assert.Equal(t, 0, count, "nothing is reported before a counter is tracked")

	held := 3
	metrics.TrackSessions(func(ctx context.Context) (int, error) {
		return held, nil
	})
	expected := `
# HELP abacus_active_sessions Number of calculator sessions currently held by the session store.
# TYPE abacus_active_sessions gauge
abacus_active_sessions 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "abacus_active_sessions"))

	// The value follows the store, not this process's own creates and deletes.
	held = 1
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(strings.Replace(expected, " 3\n", " 1\n", 1)), "abacus_active_sessions"))
}

func TestMetrics_SessionsStoreError(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	metrics.TrackSessions(func(ctx context.Context) (int, error) {
		return 0, errors.New("store unavailable")
	})

	_, err := reg.Gather()
	assert.ErrorContains(t, err, "store unavailable")
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	run(t, metrics.Hooks(), "1+1=")

	rr := httptest.NewRecorder()
	observability.Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `abacus_computations_total{operator="add"} 1`)
}

func TestCombine_WithLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	run(t, observability.Combine(metrics.Hooks(), observability.LogHooks(logger), domain.LifecycleHooks{}), "9/0=")

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ZeroDivisions))
	assert.Contains(t, buf.String(), "division by zero")
	assert.Contains(t, buf.String(), "command=digit")
}

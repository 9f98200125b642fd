package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rootfind/internal/rootfind"
)

func TestSinkCountsRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	rootfind.RunNewton(rootfind.Cubic, 0.5, 1e-5, 50, m.Sink(rootfind.Newton))
	rootfind.RunNewton(rootfind.Cubic, 0.5, 1e-5, 50, m.Sink(rootfind.Newton))
	rootfind.RunRegulaFalsi(rootfind.Cubic, 1, 2, 1e-4, 50, m.Sink(rootfind.RegulaFalsi))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues("newton", "converged", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("regula_falsi", "rejected", "no_sign_change")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.runs))

	residual := testutil.ToFloat64(m.residual.WithLabelValues("newton"))
	assert.Greater(t, residual, 0.0)
	assert.Less(t, residual, 1e-5)

	n, err := testutil.GatherAndCount(reg, "rootfind_run_iterations")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNewPanicsOnDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

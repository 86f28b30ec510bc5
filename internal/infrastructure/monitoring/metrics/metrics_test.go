package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.MoleculeAccepted()
	m.MoleculeAccepted()
	m.MoleculeRejected("max_mol_weight")
	m.MoleculeRejected("max_mol_weight")
	m.MoleculeRejected("unparseable")
	m.RunCompleted(2, 3, 1500*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.accepted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rejected.WithLabelValues("max_mol_weight")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("unparseable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.runOutput.WithLabelValues("accepted")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.runOutput.WithLabelValues("rejected")))
}

func TestMetricsHandler(t *testing.T) {
	m := New()
	m.MoleculeAccepted()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

func TestMetricsIndependentRegistries(t *testing.T) {
	// Two instances must not collide, unlike the global default registry.
	a, b := New(), New()
	a.MoleculeAccepted()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.accepted))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.accepted))
}

package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SessionConnects.WithLabelValues(Outcome(nil)).Inc()
	m.SessionConnects.WithLabelValues(Outcome(errors.New("x"))).Inc()
	m.ConnectedAccounts.Set(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SessionConnects.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SessionConnects.WithLabelValues("error")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["connector_session_connects_total"])
	assert.True(t, names["connector_connected_accounts"])
}

func TestNew_NilRegistererIsolated(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil)
		New(nil)
	})
}

package stats

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWith_RegistersCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWith(registry)

	m.PollCycles.Inc()
	m.NodesReachable.Set(3)
	m.AlertsFired.WithLabelValues("critical").Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(m.PollCycles), 0.001)
	assert.InDelta(t, 3, testutil.ToFloat64(m.NodesReachable), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AlertsFired.WithLabelValues("critical")), 0.001)

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNew_SharedInstance(t *testing.T) {
	assert.Same(t, New(), New())
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordsAnalyzed.Add(3)
	m.RecordsRejected.WithLabelValues("push").Inc()
	m.PatternsProduced.Observe(2)
	m.AnalysisDuration.WithLabelValues("api").Observe(0.01)
	m.AdvisoryFallbacks.Inc()

	assert.Equal(t, float64(3), testutil.ToFloat64(m.RecordsAnalyzed))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RecordsRejected.WithLabelValues("push")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestNewTwiceOnOneRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

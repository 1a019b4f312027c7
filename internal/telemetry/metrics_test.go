package telemetry_test

import (
	"testing"
	"time"

	"github.com/njchilds90/intsteps"
	"github.com/njchilds90/intsteps/internal/telemetry"
	"github.com/njchilds90/intsteps/symbolic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooks_CountRulesAndFinalize(t *testing.T) {
	m := telemetry.New(prometheus.NewRegistry())
	x := symbolic.S("x")

	// x^2 + 1: Add with a Power and a Constant below it
	_, err := intsteps.Explain(symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(1)), "x",
		intsteps.WithHooks(m.Hooks()))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rules.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rules.WithLabelValues("power")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rules.WithLabelValues("constant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Finalized.WithLabelValues("true")))
}

func TestObserveRender(t *testing.T) {
	m := telemetry.New(prometheus.NewRegistry())
	m.ObserveRender(telemetry.OutcomeOK, 3*time.Millisecond)
	m.ObserveRender(telemetry.OutcomeOK, time.Millisecond)
	m.ObserveRender(telemetry.OutcomeNotEvaluable, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Renders.WithLabelValues(telemetry.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues(telemetry.OutcomeNotEvaluable)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestCacheCounters(t *testing.T) {
	m := telemetry.New(prometheus.NewRegistry())
	m.CacheMiss()
	m.CacheHit()
	m.CacheHit()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
}

func TestNew_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	telemetry.New(reg)
	assert.Panics(t, func() { telemetry.New(reg) })
}

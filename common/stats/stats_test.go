package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrecisionChange(t *testing.T) {
	stat := DefaultStatsReceiver().(*defaultStatsReceiver)
	assert.Equal(t, time.Nanosecond, stat.precision)

	statp := stat.Precision(time.Millisecond).(*defaultStatsReceiver)
	assert.Equal(t, time.Nanosecond, stat.precision, "original receiver must keep its precision")
	assert.Equal(t, time.Millisecond, statp.precision)
}

func TestScopeChange(t *testing.T) {
	stat := DefaultStatsReceiver().(*defaultStatsReceiver)
	assert.Empty(t, stat.scope)

	statp := stat.Scope("a/b", "c").(*defaultStatsReceiver)
	assert.Empty(t, stat.scope)
	assert.Equal(t, []string{"a_SLASH_b", "c"}, statp.scope)
	assert.Equal(t, "a_SLASH_b/c/d", statp.scopedName("d"))

	// sibling scopes must not share a backing array
	x := statp.Scope("x").(*defaultStatsReceiver)
	y := statp.Scope("y").(*defaultStatsReceiver)
	assert.Equal(t, "a_SLASH_b/c/x/n", x.scopedName("n"))
	assert.Equal(t, "a_SLASH_b/c/y/n", y.scopedName("n"))
}

func TestMarshal(t *testing.T) {
	clock := NewFakeTime(time.Unix(0, 0), 5*time.Nanosecond)
	Time = clock
	defer func() { Time = DefaultStatsTime() }()

	reg := NewFinagleStatsRegistry()
	reg.GetOrRegister("counter", NewCounter()).(Counter).Inc(1)
	reg.GetOrRegister("gauge", NewGauge()).(Gauge).Update(2)
	reg.GetOrRegister("latency", NewLatency()).(Latency).Time().Stop()
	clock.SetStep(10 * time.Nanosecond)
	reg.GetOrRegister("latency", NewLatency()).(Latency).Time().Stop()

	b, err := reg.(MarshalerPretty).MarshalJSONPretty()
	require.NoError(t, err)
	expected := `{
  "counter": 1,
  "gauge": 2,
  "latency.avg": 7.5,
  "latency.count": 2,
  "latency.max": 10,
  "latency.min": 5,
  "latency.p50": 7.5,
  "latency.p90": 10,
  "latency.p95": 10,
  "latency.p99": 10,
  "latency.p999": 10,
  "latency.p9999": 10,
  "latency.sum": 15
}`
	assert.Equal(t, expected, string(b))
}

func TestNonLatching(t *testing.T) {
	stat := DefaultStatsReceiver()
	stat.Counter("counter").Inc(1)
	assert.Equal(t, `{"counter":{"count":1}}`, string(stat.Render(false)))
}

func TestLatching(t *testing.T) {
	clock := NewFakeTime(time.Unix(0, 0), time.Nanosecond)
	Time = clock
	defer func() { Time = DefaultStatsTime() }()

	stat, cancel := NewCustomStatsReceiver(nil, 5*time.Nanosecond)
	defer cancel()

	// ticks before the first snapshot time keep the initial empty capture
	stat.Counter("counter").Inc(3)
	clock.Ticks <- time.Unix(0, 0)
	assert.Equal(t, "{}", string(stat.Render(false)))

	clock.Ticks <- time.Unix(0, 0).Add(time.Minute)
	assert.Equal(t, `{"counter":{"count":3}}`, string(stat.Render(false)))
}

func TestVerifyStats(t *testing.T) {
	reg := NewFinagleStatsRegistry()
	stat, _ := NewCustomStatsReceiver(func() StatsRegistry { return reg }, 0)
	stat.Counter(SchedRoundsRunCounter).Inc(2)
	stat.GaugeFloat(NodeUtilizationPctGauge, "orin").Update(12.5)

	VerifyStats("verify", reg, t, map[string]Rule{
		SchedRoundsRunCounter:                {Checker: Int64EqTest, Value: 2},
		"nodeUtilizationPct/orin":            {Checker: FloatEqTest, Value: 12.5},
		SchedInvalidInputCounter:             {Checker: DoesNotExistTest},
		NodeUtilizationPctGauge + "/missing": {Checker: DoesNotExistTest},
	})
}

func TestNilReceiver(t *testing.T) {
	stat := NilStatsReceiver().Scope("x")
	stat.Counter("c").Inc(1)
	stat.Latency("l").Time().Stop()
	assert.Equal(t, int64(0), stat.Counter("c").Count())
	assert.Equal(t, "{}", string(stat.Render(true)))
}

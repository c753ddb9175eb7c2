// Package stats provides a small set of instrument interfaces backed by
// go-metrics, so callers never import go-metrics directly.
//
// A StatsReceiver is passed down the call tree and can be scoped at each
// level. Rendering produces flat Finagle style JSON when the receiver is
// built on NewFinagleStatsRegistry, and latched receivers snapshot their
// instruments at a fixed interval so every reader of /admin/metrics.json
// sees the same window.
package stats

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
)

// For testing.
var Time StatsTime = DefaultStatsTime()

// Overridable instrument creation.
var NewCounter func() Counter = newMetricCounter
var NewGauge func() Gauge = newMetricGauge
var NewGaugeFloat func() GaugeFloat = newMetricGaugeFloat
var NewHistogram func() Histogram = newMetricHistogram
var NewLatency func() Latency = newLatency

type MarshalerPretty interface {
	MarshalJSONPretty() ([]byte, error)
}

// StatsRegistry is the subset of the go-metrics registry we rely on.
// GetOrRegister takes either the instrument or a func returning it.
type StatsRegistry interface {
	GetOrRegister(string, interface{}) interface{}
	Unregister(string)
	Each(func(string, interface{}))
}

// StatsReceiver creates named instruments. Names are joined with '/', and a
// '/' inside a name element is replaced by "_SLASH_".
type StatsReceiver interface {
	// Scope returns a receiver that prefixes every name with scope.
	Scope(scope ...string) StatsReceiver

	// Precision returns a receiver whose Latency instruments render in units
	// of the given duration. Durations below 1ns are treated as 1ns.
	Precision(time.Duration) StatsReceiver

	Counter(name ...string) Counter
	Latency(name ...string) Latency
	Gauge(name ...string) Gauge
	GaugeFloat(name ...string) GaugeFloat
	Remove(name ...string)

	// Render marshals the registry as JSON.
	Render(pretty bool) []byte
}

// DefaultStatsReceiver is an unlatched receiver on a plain go-metrics
// registry. Histograms are cleared on every Render.
func DefaultStatsReceiver() StatsReceiver {
	stat, _ := NewCustomStatsReceiver(nil, 0)
	return stat
}

// NewCustomStatsReceiver builds a receiver over the registry made by
// makeRegistry, latched at the given interval when it is positive. The
// returned func stops the latching goroutine.
func NewCustomStatsReceiver(makeRegistry func() StatsRegistry, latched time.Duration) (stat StatsReceiver, cancelFn func()) {
	if makeRegistry == nil {
		makeRegistry = func() StatsRegistry { return metrics.NewRegistry() }
	}
	s := &defaultStatsReceiver{
		makeRegistry: makeRegistry,
		registry:     makeRegistry(),
		precision:    time.Nanosecond,
	}
	cancelFn = func() {}
	if latched > 0 {
		var ctx context.Context
		ctx, cancelFn = context.WithCancel(context.Background())
		s.latchCh = make(chan chan StatsRegistry)
		first := Time.Now().Add(latched).Truncate(latched)
		go s.latch(ctx, capture(s.registry, makeRegistry()), Time.NewTicker(latched), first)
	}
	return s, cancelFn
}

// latch serves snapshots until ctx is done, refreshing one per tick.
func (s *defaultStatsReceiver) latch(ctx context.Context, captured StatsRegistry, ticker StatsTicker, first time.Time) {
	for {
		select {
		case <-ctx.Done():
			ticker.Stop()
			return
		case t := <-ticker.C():
			if t.Before(first) {
				continue
			}
			captured = capture(s.registry, s.makeRegistry())
			clearHistograms(s.registry)
		case req := <-s.latchCh:
			req <- captured
		}
	}
}

func capture(src StatsRegistry, dst StatsRegistry) StatsRegistry {
	src.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case Counter:
			dst.GetOrRegister(name, m.Capture())
		case Gauge:
			dst.GetOrRegister(name, m.Capture())
		case GaugeFloat:
			dst.GetOrRegister(name, m.Capture())
		case Histogram:
			dst.GetOrRegister(name, m.Capture())
		case Latency:
			dst.GetOrRegister(name, m.Capture())
		default:
			log.Infof("stats: cannot capture %s (%T)", name, i)
		}
	})
	return dst
}

func clearHistograms(reg StatsRegistry) {
	reg.Each(func(name string, i interface{}) {
		if h, ok := i.(metrics.Histogram); ok {
			h.Clear()
		}
	})
}

type defaultStatsReceiver struct {
	makeRegistry func() StatsRegistry
	registry     StatsRegistry
	latchCh      chan chan StatsRegistry
	precision    time.Duration
	scope        []string
}

func (s *defaultStatsReceiver) Scope(scope ...string) StatsReceiver {
	cp := *s
	cp.scope = s.scoped(scope...)
	return &cp
}

func (s *defaultStatsReceiver) Precision(precision time.Duration) StatsReceiver {
	if precision < 1 {
		precision = 1
	}
	cp := *s
	cp.precision = precision
	return &cp
}

func (s *defaultStatsReceiver) Counter(name ...string) Counter {
	return s.registry.GetOrRegister(s.scopedName(name...), NewCounter).(Counter)
}

func (s *defaultStatsReceiver) Gauge(name ...string) Gauge {
	return s.registry.GetOrRegister(s.scopedName(name...), NewGauge).(Gauge)
}

func (s *defaultStatsReceiver) GaugeFloat(name ...string) GaugeFloat {
	return s.registry.GetOrRegister(s.scopedName(name...), NewGaugeFloat).(GaugeFloat)
}

// Latency registers an instance, not a factory: a plain go-metrics registry
// cannot convert a factory's return value.
func (s *defaultStatsReceiver) Latency(name ...string) Latency {
	return s.registry.GetOrRegister(s.scopedName(name...), NewLatency().Precision(s.precision)).(Latency)
}

func (s *defaultStatsReceiver) Remove(name ...string) {
	s.registry.Unregister(s.scopedName(name...))
}

func (s *defaultStatsReceiver) Render(pretty bool) []byte {
	reg := s.registry
	if s.latchCh != nil {
		resp := make(chan StatsRegistry)
		s.latchCh <- resp
		reg = <-resp
	}

	var b []byte
	var err error
	if mp, ok := reg.(MarshalerPretty); ok && pretty {
		b, err = mp.MarshalJSONPretty()
	} else {
		b, err = json.Marshal(reg)
	}
	if err != nil {
		log.Errorf("stats: cannot render registry: %v", err)
		return []byte("{}")
	}
	if s.latchCh == nil {
		clearHistograms(s.registry)
	}
	return b
}

func (s *defaultStatsReceiver) scoped(scope ...string) []string {
	out := make([]string, 0, len(s.scope)+len(scope))
	out = append(out, s.scope...)
	for _, e := range scope {
		out = append(out, strings.Replace(e, "/", "_SLASH_", -1))
	}
	return out
}

func (s *defaultStatsReceiver) scopedName(name ...string) string {
	return strings.Join(s.scoped(name...), "/")
}

// NilStatsReceiver ignores everything.
func NilStatsReceiver(scope ...string) StatsReceiver {
	return &nilStatsReceiver{}
}

type nilStatsReceiver struct{}

func (s *nilStatsReceiver) Scope(scope ...string) StatsReceiver   { return s }
func (s *nilStatsReceiver) Precision(time.Duration) StatsReceiver { return s }
func (s *nilStatsReceiver) Counter(name ...string) Counter {
	return &metricCounter{metrics.NilCounter{}}
}
func (s *nilStatsReceiver) Gauge(name ...string) Gauge {
	return &metricGauge{metrics.NilGauge{}}
}
func (s *nilStatsReceiver) GaugeFloat(name ...string) GaugeFloat {
	return &metricGaugeFloat{metrics.NilGaugeFloat64{}}
}
func (s *nilStatsReceiver) Latency(name ...string) Latency { return &nilLatency{} }
func (s *nilStatsReceiver) Remove(name ...string)          {}
func (s *nilStatsReceiver) Render(pretty bool) []byte      { return []byte("{}") }

// Counter
type Counter interface {
	Capture() Counter
	Clear()
	Count() int64
	Inc(int64)
	Update(int64)
}
type metricCounter struct{ metrics.Counter }

func (m *metricCounter) Capture() Counter { return &metricCounter{m.Snapshot()} }
func (m *metricCounter) Update(i int64)   { m.Inc(i - m.Count()) }
func newMetricCounter() Counter           { return &metricCounter{metrics.NewCounter()} }

// Gauge
type Gauge interface {
	Capture() Gauge
	Update(int64)
	Value() int64
}
type metricGauge struct{ metrics.Gauge }

func (m *metricGauge) Capture() Gauge { return &metricGauge{m.Snapshot()} }
func newMetricGauge() Gauge           { return &metricGauge{metrics.NewGauge()} }

// GaugeFloat
type GaugeFloat interface {
	Capture() GaugeFloat
	Update(float64)
	Value() float64
}
type metricGaugeFloat struct{ metrics.GaugeFloat64 }

func (m *metricGaugeFloat) Capture() GaugeFloat { return &metricGaugeFloat{m.Snapshot()} }
func newMetricGaugeFloat() GaugeFloat           { return &metricGaugeFloat{metrics.NewGaugeFloat64()} }

type HistogramView interface {
	Mean() float64
	Count() int64
	Max() int64
	Min() int64
	Sum() int64
	Percentiles(ps []float64) []float64
}

type Histogram interface {
	HistogramView
	Capture() Histogram
	Update(int64)
}
type metricHistogram struct{ metrics.Histogram }

func (m *metricHistogram) Capture() Histogram { return &metricHistogram{m.Snapshot()} }
func newMetricHistogram() Histogram {
	return &metricHistogram{metrics.NewHistogram(metrics.NewUniformSample(1000))}
}

// Latency is a histogram of nanosecond durations between Time and Stop.
type Latency interface {
	Capture() Latency
	Time() Latency
	Stop()
	GetPrecision() time.Duration
	Precision(time.Duration) Latency
}
type metricLatency struct {
	metrics.Histogram
	start     time.Time
	precision time.Duration
}

func (l *metricLatency) Time() Latency { l.start = Time.Now(); return l }
func (l *metricLatency) Stop()         { l.Update(Time.Since(l.start).Nanoseconds()) }
func (l *metricLatency) Capture() Latency {
	return &metricLatency{l.Histogram.Snapshot(), l.start, l.precision}
}
func (l *metricLatency) GetPrecision() time.Duration { return l.precision }
func (l *metricLatency) Precision(p time.Duration) Latency {
	if p < 1 {
		p = 1
	}
	l.precision = p
	return l
}
func newLatency() Latency {
	return &metricLatency{Histogram: metrics.NewHistogram(metrics.NewUniformSample(1000)), precision: time.Nanosecond}
}

type nilLatency struct{}

func (l *nilLatency) Time() Latency                   { return l }
func (l *nilLatency) Stop()                           {}
func (l *nilLatency) Capture() Latency                { return l }
func (l *nilLatency) GetPrecision() time.Duration     { return 0 }
func (l *nilLatency) Precision(time.Duration) Latency { return l }

// finagleStatsRegistry renders instruments as a flat name -> number map,
// expanding histograms and latencies into avg/count/max/min/sum/pNN keys.
type finagleStatsRegistry struct {
	metrics.Registry
}

func NewFinagleStatsRegistry() StatsRegistry {
	return &finagleStatsRegistry{metrics.NewRegistry()}
}

func (r *finagleStatsRegistry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.MarshalAll())
}

func (r *finagleStatsRegistry) MarshalJSONPretty() ([]byte, error) {
	return json.MarshalIndent(r.MarshalAll(), "", "  ")
}

func (r *finagleStatsRegistry) MarshalAll() map[string]interface{} {
	data := map[string]interface{}{}
	r.Each(func(name string, i interface{}) {
		switch stat := i.(type) {
		case Counter:
			data[name] = stat.Count()
		case Gauge:
			data[name] = stat.Value()
		case GaugeFloat:
			data[name] = stat.Value()
		case Histogram:
			marshalHistogram(data, name, stat.Capture(), time.Nanosecond)
		case Latency:
			l := stat.Capture()
			marshalHistogram(data, name, l.(HistogramView), l.GetPrecision())
		default:
			log.Infof("stats: cannot marshal %s (%T)", name, i)
		}
	})
	return data
}

var percentiles = []float64{0.5, 0.9, 0.95, 0.99, 0.999, 0.9999}
var percentileLabels = []string{"p50", "p90", "p95", "p99", "p999", "p9999"}

func marshalHistogram(data map[string]interface{}, name string, h HistogramView, precision time.Duration) {
	fp, ip := float64(precision), int64(precision)
	data[name+".avg"] = h.Mean() / fp
	data[name+".count"] = h.Count()
	data[name+".max"] = h.Max() / ip
	data[name+".min"] = h.Min() / ip
	data[name+".sum"] = h.Sum() / ip
	for i, p := range h.Percentiles(percentiles) {
		data[name+"."+percentileLabels[i]] = p / fp
	}
}

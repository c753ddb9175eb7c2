package stats

import (
	"sync"
	"time"
)

// StatsTicker wraps time.Ticker so tests can drive latching by hand.
type StatsTicker interface {
	C() <-chan time.Time
	Stop()
}

// StatsTime is the clock used for latency and latching.
type StatsTime interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	NewTicker(d time.Duration) StatsTicker
}

func DefaultStatsTime() StatsTime { return wallTime{} }

type wallTime struct{}

type wallTicker struct{ *time.Ticker }

func (wallTime) Now() time.Time                        { return time.Now() }
func (wallTime) Since(t time.Time) time.Duration       { return time.Since(t) }
func (wallTime) NewTicker(d time.Duration) StatsTicker { return wallTicker{time.NewTicker(d)} }
func (t wallTicker) C() <-chan time.Time               { return t.Ticker.C }

// FakeTime is a manual clock. Since always reports the configured step, and
// tickers created from it fire only when the test sends on Ticks. Ticks is
// unbuffered, so a send returns once the ticker's reader has taken it.
type FakeTime struct {
	mu    sync.Mutex
	now   time.Time
	step  time.Duration
	Ticks chan time.Time
}

func NewFakeTime(now time.Time, step time.Duration) *FakeTime {
	return &FakeTime{now: now, step: step, Ticks: make(chan time.Time)}
}

func (f *FakeTime) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *FakeTime) Since(time.Time) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// SetStep changes what Since reports.
func (f *FakeTime) SetStep(step time.Duration) {
	f.mu.Lock()
	f.step = step
	f.mu.Unlock()
}

func (f *FakeTime) NewTicker(time.Duration) StatsTicker { return fakeTicker{f.Ticks} }

type fakeTicker struct{ ch <-chan time.Time }

func (t fakeTicker) C() <-chan time.Time { return t.ch }
func (t fakeTicker) Stop()               {}

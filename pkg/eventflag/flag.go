package eventflag

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/randalmurphal/eventflag/pkg/eventflag/observability"
	"github.com/randalmurphal/eventflag/pkg/eventflag/probe"
)

// DefaultPollInterval is the sleep slice used inside waits. A bounded wait
// re-checks the flag at least once per slice, so timeout overshoot is
// bounded by one slice.
const DefaultPollInterval = 100 * time.Millisecond

// Flag is a reusable boolean event shared by many goroutines.
//
// Any goroutine may Set, Clear, or observe the flag. Waiters block until
// the flag is set, either indefinitely (Wait) or for at most a caller-given
// duration (WaitTimeout). Set wakes current bounded waiters promptly via
// per-waiter wake channels; the poll loop re-checking the flag is the
// safety net, the wake channel only improves latency.
//
// Clear does not wake anyone: waiters observe only the clear-to-set edge.
// The zero Flag is not ready to use; create flags with New.
type Flag struct {
	name string
	poll time.Duration

	set atomic.Bool

	mu      sync.Mutex
	waiters map[uint64]chan struct{}
	nextID  uint64

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	sink    probe.Recorder
}

// New creates a cleared flag.
func New(opts ...Option) *Flag {
	cfg := defaultFlagConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Flag{
		name:    cfg.name,
		poll:    cfg.poll,
		waiters: make(map[uint64]chan struct{}),
		logger:  cfg.logger,
		metrics: cfg.metrics,
		sink:    cfg.sink,
	}
}

// Name returns the flag's name.
func (f *Flag) Name() string {
	return f.name
}

// IsSet reports whether the flag is currently set.
func (f *Flag) IsSet() bool {
	return f.set.Load()
}

// Clear resets the flag. Current waiters are not woken; they keep waiting
// for the next Set. Idempotent.
func (f *Flag) Clear() {
	f.set.Store(false)
	observability.LogClear(f.logger, f.name)
	f.metrics.RecordClear(context.Background(), f.name)
}

// Set raises the flag and nudges every currently registered waiter.
//
// The flag store is sequentially consistent: once Set returns, any
// goroutine that checks the flag observes true. The nudge sweep snapshots
// the waiter registry under its lock, then signals outside the lock; it
// never blocks and is harmless when nobody is waiting. Idempotent.
func (f *Flag) Set() {
	f.set.Store(true)

	f.mu.Lock()
	snapshot := make([]chan struct{}, 0, len(f.waiters))
	for _, ch := range f.waiters {
		snapshot = append(snapshot, ch)
	}
	f.mu.Unlock()

	for _, ch := range snapshot {
		// Buffered; a waiter already nudged by an earlier Set drops through.
		select {
		case ch <- struct{}{}:
		default:
		}
	}

	observability.LogSet(f.logger, f.name, len(snapshot))
	f.metrics.RecordSet(context.Background(), f.name, len(snapshot))

	if f.sink != nil {
		rec := probe.NewRecord(f.name, probe.KindSet)
		rec.Notified = len(snapshot)
		f.sink.Observe(rec)
	}
}

// Wait blocks until the flag is set and returns true.
//
// There is no cancellation path: a goroutine in Wait returns only once
// some other goroutine calls Set. Callers needing an escape hatch should
// use WaitTimeout with a large bound.
func (f *Flag) Wait() bool {
	if f.set.Load() {
		return true
	}

	id, wake, ok := f.register()
	if !ok {
		return true
	}
	defer f.deregister(id)

	f.sleepLoop(wake, time.Time{})
	return true
}

// WaitTimeout blocks until the flag is set or timeout elapses, and returns
// the flag value observed on exit.
//
// A timeout of zero or less means "already elapsed": the current flag
// value is returned immediately without registering as a waiter. The wait
// may overshoot the requested timeout by at most one poll slice.
func (f *Flag) WaitTimeout(timeout time.Duration) bool {
	if f.set.Load() {
		return true
	}
	if timeout <= 0 {
		return f.set.Load()
	}

	id, wake, ok := f.register()
	if !ok {
		return true
	}
	defer f.deregister(id)

	observability.LogWaitStart(f.logger, f.name, timeout)
	done := observability.TimedOperation()

	start := time.Now()
	f.sleepLoop(wake, start.Add(timeout))

	signaled := f.set.Load()
	elapsed := done()
	observability.LogWaitComplete(f.logger, f.name, timeout, elapsed, signaled)
	f.metrics.RecordWait(context.Background(), f.name, elapsed, signaled)

	if f.sink != nil {
		kind := probe.KindWait
		if !signaled {
			kind = probe.KindTimeout
		}
		rec := probe.NewRecord(f.name, kind)
		rec.Requested = timeout
		rec.Elapsed = elapsed
		rec.Overshoot = elapsed - timeout
		f.sink.Observe(rec)
	}

	return signaled
}

// Waiters returns the number of goroutines currently registered in a
// bounded or unbounded wait.
func (f *Flag) Waiters() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters)
}

// register atomically re-checks the flag and, only if still clear, adds a
// wake channel to the registry. The check and insert share the registry
// lock with Set's snapshot, so a Set that stored true before our check is
// observed here, and a registration that wins the lock first is part of
// that Set's snapshot. Either way the wakeup cannot be missed.
func (f *Flag) register() (uint64, chan struct{}, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.set.Load() {
		return 0, nil, false
	}

	id := f.nextID
	f.nextID++
	ch := make(chan struct{}, 1)
	f.waiters[id] = ch
	return id, ch, true
}

// deregister removes a waiter. Runs on every wait exit path.
func (f *Flag) deregister(id uint64) {
	f.mu.Lock()
	delete(f.waiters, id)
	f.mu.Unlock()
}

// sleepLoop sleeps in poll-slice increments until the flag is set or the
// deadline passes. A zero deadline means no deadline. A nudge on the wake
// channel aborts the current slice and re-checks immediately.
func (f *Flag) sleepLoop(wake <-chan struct{}, deadline time.Time) {
	for {
		if f.set.Load() {
			return
		}

		slice := f.poll
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return
			}
			if remaining < slice {
				slice = remaining
			}
		}

		timer := time.NewTimer(slice)
		select {
		case <-wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

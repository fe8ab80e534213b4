/*
Package eventflag provides a reusable boolean event flag for cross-goroutine
coordination, plus one-shot result latches and a correlation-keyed wait pool.

# Overview

A Flag models a single boolean shared by many observers. Setters raise or
reset it; waiters block until it is raised, with or without a timeout. The
flag is reusable indefinitely across clear/set cycles, and the whole set of
waiters is woken by a single Set.

The design favors a small, lock-light core:
  - The flag cell is an atomic boolean with sequentially consistent access
  - Waiters register a wake channel in a mutex-guarded registry
  - Set snapshots the registry under the lock, then signals outside it
  - Bounded waits sleep in poll slices, so a lost nudge only costs latency

# Basic Usage

Create a flag, wait on it from any number of goroutines, set it from one:

	flag := eventflag.New(eventflag.WithName("ready"))

	go func() {
	    if flag.WaitTimeout(5 * time.Second) {
	        fmt.Println("ready")
	    } else {
	        fmt.Println("gave up")
	    }
	}()

	// ... later, from any goroutine ...
	flag.Set()

WaitTimeout returns the flag value observed on exit: true when the flag was
set (whether before or during the wait), false when the timeout elapsed
first. Overshoot beyond the requested timeout is bounded by one poll slice.

# Keyed Waits

Pool tracks request/reply style waits by correlation uid:

	pool := eventflag.NewPool()
	uid := eventflag.NewUID()
	latch, _ := pool.Register(uid)

	go func() {
	    payload, err := latch.Wait(ctx)
	    // ...
	}()

	// ... whoever sees the reply ...
	pool.Resolve(uid, payload)

# Diagnostics

Flags accept an optional slog logger, an OpenTelemetry metrics recorder,
and a probe sink that records wait latencies and timeout overshoot to an
in-memory or SQLite store. All three default to no-ops.
*/
package eventflag

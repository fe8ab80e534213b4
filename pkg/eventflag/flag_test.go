package eventflag_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/eventflag/pkg/eventflag"
	"github.com/randalmurphal/eventflag/pkg/eventflag/probe"
)

func TestNew_Defaults(t *testing.T) {
	flag := eventflag.New()

	assert.Equal(t, "flag", flag.Name())
	assert.False(t, flag.IsSet())
	assert.Zero(t, flag.Waiters())
}

func TestFlag_SetClear(t *testing.T) {
	flag := eventflag.New(eventflag.WithName("ready"))

	assert.False(t, flag.IsSet())

	flag.Set()
	assert.True(t, flag.IsSet())

	flag.Clear()
	assert.False(t, flag.IsSet())
}

func TestFlag_SetClear_Idempotent(t *testing.T) {
	flag := eventflag.New()

	flag.Set()
	flag.Set()
	assert.True(t, flag.IsSet())

	flag.Clear()
	flag.Clear()
	assert.False(t, flag.IsSet())
}

func TestFlag_Set_NoWaiters(t *testing.T) {
	flag := eventflag.New()

	// Must not block or panic when nobody is waiting.
	assert.NotPanics(t, func() {
		flag.Set()
		flag.Set()
	})
}

func TestFlag_Reuse(t *testing.T) {
	flag := eventflag.New()

	for i := 0; i < 5; i++ {
		flag.Set()
		assert.True(t, flag.IsSet())
		assert.True(t, flag.WaitTimeout(time.Second))

		flag.Clear()
		assert.False(t, flag.IsSet())
		assert.False(t, flag.WaitTimeout(10*time.Millisecond))
	}
}

func TestFlag_WaitTimeout_FastPath(t *testing.T) {
	flag := eventflag.New()
	flag.Set()

	// Already-set flag returns without consuming a sleep slice, no matter
	// how large the requested timeout is.
	start := time.Now()
	got := flag.WaitTimeout(10 * time.Second)
	elapsed := time.Since(start)

	assert.True(t, got)
	assert.Less(t, elapsed, 50*time.Millisecond)
	assert.Zero(t, flag.Waiters())
}

func TestFlag_WaitTimeout_ZeroOrNegative(t *testing.T) {
	flag := eventflag.New()

	t.Run("zero timeout, clear flag", func(t *testing.T) {
		start := time.Now()
		got := flag.WaitTimeout(0)
		assert.False(t, got)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("negative timeout, clear flag", func(t *testing.T) {
		got := flag.WaitTimeout(-time.Second)
		assert.False(t, got)
	})

	t.Run("zero timeout, set flag", func(t *testing.T) {
		flag.Set()
		defer flag.Clear()
		assert.True(t, flag.WaitTimeout(0))
	})
}

func TestFlag_WaitTimeout_TimesOut(t *testing.T) {
	flag := eventflag.New(eventflag.WithPollInterval(100 * time.Millisecond))

	// No Set ever happens: the wait must last at least the requested
	// timeout and overshoot by at most one poll slice (plus scheduling
	// slack).
	start := time.Now()
	got := flag.WaitTimeout(300 * time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, got)
	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
	assert.Less(t, elapsed, 550*time.Millisecond)
	assert.Zero(t, flag.Waiters())
}

func TestFlag_WaitTimeout_WokenBySet(t *testing.T) {
	flag := eventflag.New()

	type result struct {
		got     bool
		elapsed time.Duration
	}
	done := make(chan result, 1)

	go func() {
		start := time.Now()
		got := flag.WaitTimeout(5 * time.Second)
		done <- result{got: got, elapsed: time.Since(start)}
	}()

	time.Sleep(200 * time.Millisecond)
	flag.Set()

	select {
	case res := <-done:
		assert.True(t, res.got)
		assert.GreaterOrEqual(t, res.elapsed, 200*time.Millisecond)
		// Well before the 5s deadline: the Set nudge or the next poll
		// slice must end the wait.
		assert.Less(t, res.elapsed, time.Second)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter did not return after Set")
	}

	assert.Zero(t, flag.Waiters())
}

func TestFlag_WaitTimeout_SetImmediatelyAfterRegistration(t *testing.T) {
	// Hammers the check-then-register vs. snapshot-and-signal race: the
	// setter fires as soon as the waiter is observable. Every wait must
	// still return true quickly.
	flag := eventflag.New(eventflag.WithPollInterval(50 * time.Millisecond))

	for i := 0; i < 20; i++ {
		flag.Clear()

		ready := make(chan struct{})
		done := make(chan bool, 1)
		go func() {
			close(ready)
			done <- flag.WaitTimeout(5 * time.Second)
		}()

		<-ready
		flag.Set()

		select {
		case got := <-done:
			require.True(t, got, "iteration %d", i)
		case <-time.After(time.Second):
			t.Fatalf("iteration %d: wait missed the wakeup", i)
		}
	}
}

func TestFlag_Clear_DoesNotWake(t *testing.T) {
	flag := eventflag.New(eventflag.WithPollInterval(50 * time.Millisecond))

	done := make(chan bool, 1)
	go func() {
		done <- flag.WaitTimeout(400 * time.Millisecond)
	}()

	time.Sleep(100 * time.Millisecond)
	flag.Clear()

	select {
	case got := <-done:
		// Returned only via its own timeout, with the flag still clear.
		assert.False(t, got)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter did not return")
	}
}

func TestFlag_Wait_Unbounded(t *testing.T) {
	flag := eventflag.New(eventflag.WithPollInterval(20 * time.Millisecond))

	done := make(chan bool, 1)
	go func() {
		done <- flag.Wait()
	}()

	time.Sleep(100 * time.Millisecond)
	flag.Set()

	select {
	case got := <-done:
		assert.True(t, got)
	case <-time.After(2 * time.Second):
		t.Fatal("unbounded wait did not return after Set")
	}

	assert.Zero(t, flag.Waiters())
}

func TestFlag_Wait_AlreadySet(t *testing.T) {
	flag := eventflag.New()
	flag.Set()

	start := time.Now()
	assert.True(t, flag.Wait())
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestFlag_Registry_CleanAfterStress(t *testing.T) {
	flag := eventflag.New(eventflag.WithPollInterval(10 * time.Millisecond))

	var eg errgroup.Group
	for i := 0; i < 50; i++ {
		timeout := time.Duration(10+i%5*10) * time.Millisecond
		eg.Go(func() error {
			flag.WaitTimeout(timeout)
			return nil
		})
	}

	// Toggle the flag while waits are in flight.
	eg.Go(func() error {
		for i := 0; i < 10; i++ {
			flag.Set()
			time.Sleep(5 * time.Millisecond)
			flag.Clear()
			time.Sleep(5 * time.Millisecond)
		}
		return nil
	})

	require.NoError(t, eg.Wait())
	assert.Zero(t, flag.Waiters(), "registry must be empty after all waits return")
}

func TestFlag_ManyWaiters_OneSet(t *testing.T) {
	flag := eventflag.New()

	const waiters = 20
	results := make(chan bool, waiters)

	var eg errgroup.Group
	for i := 0; i < waiters; i++ {
		eg.Go(func() error {
			results <- flag.WaitTimeout(5 * time.Second)
			return nil
		})
	}

	time.Sleep(100 * time.Millisecond)
	flag.Set()

	require.NoError(t, eg.Wait())
	close(results)
	for got := range results {
		assert.True(t, got)
	}
	assert.Zero(t, flag.Waiters())
}

func TestFlag_WithProbe_RecordsWaits(t *testing.T) {
	store := probe.NewMemoryStore()
	flag := eventflag.New(
		eventflag.WithName("probed"),
		eventflag.WithPollInterval(20*time.Millisecond),
		eventflag.WithProbe(probe.NewStoreRecorder(store, nil)),
	)

	// One timeout, one set sweep, one signaled wait.
	assert.False(t, flag.WaitTimeout(50*time.Millisecond))
	flag.Set()
	assert.True(t, flag.WaitTimeout(time.Second))

	records, err := store.List("probed")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, probe.KindTimeout, records[0].Kind)
	assert.Equal(t, 50*time.Millisecond, records[0].Requested)
	assert.GreaterOrEqual(t, records[0].Elapsed, 50*time.Millisecond)
	assert.Equal(t, records[0].Elapsed-records[0].Requested, records[0].Overshoot)

	assert.Equal(t, probe.KindSet, records[1].Kind)
	assert.Equal(t, 0, records[1].Notified)

	// The signaled wait took the fast path, so it produced no record.
	for _, rec := range records {
		assert.NotEqual(t, probe.KindWait, rec.Kind)
	}
}

func TestFlag_Waiters_WhileWaiting(t *testing.T) {
	flag := eventflag.New(eventflag.WithPollInterval(20 * time.Millisecond))

	done := make(chan struct{})
	go func() {
		flag.WaitTimeout(time.Second)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return flag.Waiters() == 1
	}, time.Second, 5*time.Millisecond)

	flag.Set()
	<-done
	assert.Zero(t, flag.Waiters())
}

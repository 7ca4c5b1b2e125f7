package metrics_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
	"github.com/jrsteele09/go-crm/metrics"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// safeBuffer lets the poller goroutine and the test share log output
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func constant(n int) metrics.CountFetcherFunc {
	return func(context.Context) (int, error) { return n, nil }
}

func failing(err error) metrics.CountFetcherFunc {
	return func(context.Context) (int, error) { return 0, err }
}

// switchable returns its current value or error and counts calls
type switchable struct {
	mu    sync.Mutex
	value int
	err   error
	calls atomic.Int32
}

func (s *switchable) Count(context.Context) (int, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.err
}

func (s *switchable) set(value int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value, s.err = value, err
}

func TestNewPollerInitialSnapshot(t *testing.T) {
	p := metrics.NewPoller(constant(1), constant(2))
	snap := p.Snapshot()
	require.Nil(t, snap.LeadsCount)
	require.Nil(t, snap.EmployeesCount)
	require.True(t, snap.Loading)
	require.NoError(t, snap.LastError)
}

func TestRefreshBothSucceed(t *testing.T) {
	p := metrics.NewPoller(constant(5), constant(9))

	snap := p.Refresh(context.Background())
	require.NotNil(t, snap.LeadsCount)
	require.NotNil(t, snap.EmployeesCount)
	require.Equal(t, 5, *snap.LeadsCount)
	require.Equal(t, 9, *snap.EmployeesCount)
	require.False(t, snap.Loading)
	require.NoError(t, snap.LastError)
	require.Equal(t, snap, p.Snapshot())
}

func TestRefreshLeadsFailureOnFirstCycle(t *testing.T) {
	logs := &safeBuffer{}
	leadsErr := errors.New("leads endpoint down")
	p := metrics.NewPoller(failing(leadsErr), constant(9), metrics.WithLogger(zerolog.New(logs)))

	snap := p.Refresh(context.Background())
	require.Nil(t, snap.LeadsCount)
	require.Nil(t, snap.EmployeesCount, "employees must not update when leads fails")
	require.False(t, snap.Loading)

	require.ErrorIs(t, snap.LastError, crmerrors.ErrPartialSnapshot)
	require.ErrorIs(t, snap.LastError, leadsErr)
	require.True(t, metrics.IsPartialSnapshotFailure(snap.LastError))

	var failure *metrics.PartialSnapshotFailure
	require.ErrorAs(t, snap.LastError, &failure)
	require.Equal(t, leadsErr, failure.Leads)
	require.NoError(t, failure.Employees)

	require.Contains(t, logs.String(), "Failed to fetch counts")
	require.Contains(t, logs.String(), "leads endpoint down")
}

func TestRefreshFailureKeepsPreviousCounts(t *testing.T) {
	leads := &switchable{value: 3}
	employees := &switchable{value: 4}
	p := metrics.NewPoller(leads, employees, metrics.WithLogger(zerolog.Nop()))

	p.Refresh(context.Background())

	leads.set(30, nil)
	employees.set(0, errors.New("employees endpoint down"))
	snap := p.Refresh(context.Background())
	require.Equal(t, 3, *snap.LeadsCount)
	require.Equal(t, 4, *snap.EmployeesCount)
	require.False(t, snap.Loading)
	require.Error(t, snap.LastError)

	employees.set(40, nil)
	snap = p.Refresh(context.Background())
	require.Equal(t, 30, *snap.LeadsCount)
	require.Equal(t, 40, *snap.EmployeesCount)
	require.NoError(t, snap.LastError)
}

func TestRefreshIssuesRequestsConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(2)
	bothStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(bothStarted)
	}()

	waitForPeer := func(n int) metrics.CountFetcherFunc {
		return func(context.Context) (int, error) {
			started.Done()
			select {
			case <-bothStarted:
				return n, nil
			case <-time.After(2 * time.Second):
				return 0, errors.New("peer request never started")
			}
		}
	}

	p := metrics.NewPoller(waitForPeer(1), waitForPeer(2))
	snap := p.Refresh(context.Background())
	require.NoError(t, snap.LastError)
	require.Equal(t, 1, *snap.LeadsCount)
	require.Equal(t, 2, *snap.EmployeesCount)
}

func TestRefreshWaitsForBothRequests(t *testing.T) {
	release := make(chan struct{})
	slow := metrics.CountFetcherFunc(func(context.Context) (int, error) {
		<-release
		return 9, nil
	})
	p := metrics.NewPoller(constant(5), slow)

	done := make(chan metrics.Snapshot)
	go func() { done <- p.Refresh(context.Background()) }()

	// The fast request settles but nothing is published until the slow one does
	time.Sleep(50 * time.Millisecond)
	snap := p.Snapshot()
	require.True(t, snap.Loading)
	require.Nil(t, snap.LeadsCount)

	close(release)
	snap = <-done
	require.False(t, snap.Loading)
	require.Equal(t, 5, *snap.LeadsCount)
	require.Equal(t, 9, *snap.EmployeesCount)
}

func TestStartRunsFirstCycleImmediately(t *testing.T) {
	leads := &switchable{value: 1}
	p := metrics.NewPoller(leads, constant(2), metrics.WithInterval(time.Hour))
	defer p.Stop()

	p.Start(context.Background())
	require.Eventually(t, func() bool { return !p.Snapshot().Loading }, time.Second, 5*time.Millisecond)
	require.Equal(t, int32(1), leads.calls.Load())
}

func TestStartPollsOnInterval(t *testing.T) {
	leads := &switchable{value: 1}
	employees := &switchable{value: 2}
	p := metrics.NewPoller(leads, employees, metrics.WithInterval(40*time.Millisecond))

	p.Start(context.Background())
	require.Eventually(t, func() bool { return leads.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	p.Stop()
	calls := leads.calls.Load()
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, calls, leads.calls.Load(), "no requests after Stop")
	require.Equal(t, leads.calls.Load(), employees.calls.Load())
}

func TestStopIsIdempotent(t *testing.T) {
	p := metrics.NewPoller(constant(1), constant(2), metrics.WithInterval(10*time.Millisecond))
	p.Start(context.Background())

	assert.NotPanics(t, func() {
		p.Stop()
		p.Stop()
		p.Stop()
	})
}

func TestStopBeforeStart(t *testing.T) {
	leads := &switchable{}
	p := metrics.NewPoller(leads, constant(2), metrics.WithInterval(10*time.Millisecond))

	p.Stop()
	p.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	require.Zero(t, leads.calls.Load())
}

func TestStopCancelsInFlightCycle(t *testing.T) {
	blocking := metrics.CountFetcherFunc(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	p := metrics.NewPoller(blocking, constant(2), metrics.WithRequestTimeout(0), metrics.WithLogger(zerolog.Nop()))
	p.Start(context.Background())
	time.Sleep(20 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return while a cycle was in flight")
	}
	snap := p.Snapshot()
	require.False(t, snap.Loading)
	require.NoError(t, snap.LastError)
}

func TestRequestTimeoutFailsCycle(t *testing.T) {
	hanging := metrics.CountFetcherFunc(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	p := metrics.NewPoller(constant(1), hanging, metrics.WithRequestTimeout(20*time.Millisecond), metrics.WithLogger(zerolog.Nop()))

	snap := p.Refresh(context.Background())
	require.ErrorIs(t, snap.LastError, context.DeadlineExceeded)
	require.Nil(t, snap.LeadsCount)
}

func TestSubscribe(t *testing.T) {
	p := metrics.NewPoller(constant(5), constant(9), metrics.WithInterval(time.Hour))
	updates := p.Subscribe()

	p.Start(context.Background())

	var last metrics.Snapshot
	require.Eventually(t, func() bool {
		select {
		case snap := <-updates:
			last = snap
		default:
		}
		return !last.Loading && last.LeadsCount != nil
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, 9, *last.EmployeesCount)

	p.Stop()
	for range updates {
	}
}

func TestSubscribeAfterStopReturnsClosedChannel(t *testing.T) {
	p := metrics.NewPoller(constant(1), constant(2), metrics.WithInterval(time.Hour))
	p.Start(context.Background())
	p.Stop()

	updates := p.Subscribe()
	select {
	case _, ok := <-updates:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription made after Stop was left open")
	}
}

func TestNonPositiveIntervalFallsBackToDefault(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		leads := &switchable{value: 1}
		p := metrics.NewPoller(leads, constant(2), metrics.WithInterval(interval))

		p.Start(context.Background())
		require.Eventually(t, func() bool { return !p.Snapshot().Loading }, time.Second, 5*time.Millisecond)
		time.Sleep(30 * time.Millisecond)
		p.Stop()

		require.Equal(t, int32(1), leads.calls.Load(), "next cycle waits for the default interval")
	}
}

func TestBackoffPolicies(t *testing.T) {
	base := 30 * time.Second

	require.Equal(t, base, metrics.FixedInterval{}.Next(base, 0))
	require.Equal(t, base, metrics.FixedInterval{}.Next(base, 10))

	exp := metrics.ExponentialBackoff{Max: 5 * time.Minute}
	require.Equal(t, base, exp.Next(base, 0))
	require.Equal(t, time.Minute, exp.Next(base, 1))
	require.Equal(t, 2*time.Minute, exp.Next(base, 2))
	require.Equal(t, 4*time.Minute, exp.Next(base, 3))
	require.Equal(t, 5*time.Minute, exp.Next(base, 4))
	require.Equal(t, 5*time.Minute, exp.Next(base, 100))

	uncapped := metrics.ExponentialBackoff{}
	require.Equal(t, 2*time.Minute, uncapped.Next(base, 2))
	require.Positive(t, uncapped.Next(base, 1000))
	require.Positive(t, uncapped.Next(time.Nanosecond, 100))
}

func TestPollerAppliesBackoffAfterFailures(t *testing.T) {
	leads := &switchable{err: errors.New("down")}
	p := metrics.NewPoller(leads, constant(1),
		metrics.WithInterval(20*time.Millisecond),
		metrics.WithBackoff(metrics.ExponentialBackoff{Max: time.Hour}),
		metrics.WithLogger(zerolog.Nop()),
	)
	p.Start(context.Background())
	defer p.Stop()

	// Delays grow 40ms, 80ms, 160ms... so only a handful of cycles fit in 400ms
	time.Sleep(400 * time.Millisecond)
	calls := leads.calls.Load()
	require.GreaterOrEqual(t, calls, int32(2))
	require.LessOrEqual(t, calls, int32(6))
}

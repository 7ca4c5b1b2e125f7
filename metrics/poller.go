// Package metrics keeps the dashboard counters fresh by polling two count
// endpoints on a fixed interval.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-crm/internal/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultInterval between refresh cycles
	DefaultInterval = 30 * time.Second

	defaultRequestTimeout = 10 * time.Second
)

// CountFetcher returns one counter value.
type CountFetcher interface {
	Count(ctx context.Context) (int, error)
}

// CountFetcherFunc adapts a function to CountFetcher.
type CountFetcherFunc func(ctx context.Context) (int, error)

func (f CountFetcherFunc) Count(ctx context.Context) (int, error) { return f(ctx) }

// Poller refreshes the lead and employee counts. Both requests of a cycle run
// concurrently and the snapshot changes only once both have settled; if either
// fails neither count is updated.
type Poller struct {
	leads     CountFetcher
	employees CountFetcher

	interval       time.Duration
	requestTimeout time.Duration
	backoff        BackoffPolicy
	logger         zerolog.Logger

	cycleMu  sync.Mutex // serialises refresh cycles
	mu       sync.RWMutex
	snapshot Snapshot
	failures int
	subs     []chan Snapshot
	stopped  bool

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval overrides the 30 second cycle interval. Non-positive values keep
// the default.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.interval = d
	}
}

// WithRequestTimeout bounds each count request. Zero disables the bound.
func WithRequestTimeout(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.requestTimeout = d
	}
}

// WithBackoff sets the policy applied after failed cycles.
func WithBackoff(policy BackoffPolicy) PollerOption {
	return func(p *Poller) {
		p.backoff = policy
	}
}

// WithLogger sets the logger, defaulting to the global zerolog logger.
func WithLogger(logger zerolog.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// NewPoller creates a Poller whose snapshot starts with both counts absent and
// Loading set.
func NewPoller(leads, employees CountFetcher, options ...PollerOption) *Poller {
	p := &Poller{
		leads:          leads,
		employees:      employees,
		interval:       DefaultInterval,
		requestTimeout: defaultRequestTimeout,
		backoff:        FixedInterval{},
		logger:         log.Logger,
		snapshot:       Snapshot{Loading: true},
	}
	for _, opt := range options {
		opt(p)
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	return p
}

// Snapshot returns the current state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// Subscribe returns a channel receiving the snapshot after every change. Slow
// readers only see the latest value. The channel is closed by Stop; after Stop
// it is returned already closed.
func (p *Poller) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		close(ch)
		return ch
	}
	p.subs = append(p.subs, ch)
	return ch
}

// Start runs one cycle immediately and then one per interval until Stop is
// called or ctx is cancelled. Later calls are ignored.
func (p *Poller) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		ctx, p.cancel = context.WithCancel(ctx)
		p.done = make(chan struct{})
		go p.run(ctx)
	})
}

// Stop cancels the timer and any in-flight cycle, waits for the loop to exit
// and closes subscriber channels. Calling it again has no effect.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		// Prevent a later Start from launching a loop nobody will stop
		p.startOnce.Do(func() {})

		if p.cancel != nil {
			p.cancel()
			<-p.done
		}

		p.mu.Lock()
		p.stopped = true
		for _, ch := range p.subs {
			close(ch)
		}
		p.subs = nil
		p.mu.Unlock()
	})
}

// Refresh runs a single cycle and returns the resulting snapshot.
func (p *Poller) Refresh(ctx context.Context) Snapshot {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	p.update(func(s *Snapshot) { s.Loading = true })

	var (
		wg                 sync.WaitGroup
		leads, employees   int
		leadsErr, emplsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		leads, leadsErr = p.fetch(ctx, p.leads)
	}()
	go func() {
		defer wg.Done()
		employees, emplsErr = p.fetch(ctx, p.employees)
	}()
	wg.Wait()

	if ctx.Err() != nil {
		// Torn down mid-cycle: settle without recording a failure
		return p.update(func(s *Snapshot) { s.Loading = false })
	}

	if leadsErr != nil || emplsErr != nil {
		failure := &PartialSnapshotFailure{Leads: leadsErr, Employees: emplsErr}
		p.logger.Err(failure).Msg("Failed to fetch counts")
		return p.update(func(s *Snapshot) {
			p.failures++
			s.Loading = false
			s.LastError = failure
		})
	}

	return p.update(func(s *Snapshot) {
		p.failures = 0
		s.LeadsCount = utils.Ptr(leads)
		s.EmployeesCount = utils.Ptr(employees)
		s.Loading = false
		s.LastError = nil
		s.UpdatedAt = time.Now()
	})
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	p.Refresh(ctx)

	current := p.nextDelay()
	ticker := time.NewTicker(current)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
			if next := p.nextDelay(); next != current {
				ticker.Reset(next)
				current = next
			}
		}
	}
}

func (p *Poller) nextDelay() time.Duration {
	p.mu.RLock()
	failures := p.failures
	p.mu.RUnlock()
	if next := p.backoff.Next(p.interval, failures); next > 0 {
		return next
	}
	return p.interval
}

func (p *Poller) fetch(ctx context.Context, f CountFetcher) (int, error) {
	if p.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.requestTimeout)
		defer cancel()
	}
	return f.Count(ctx)
}

// update applies fn under the lock and publishes the result.
func (p *Poller) update(fn func(s *Snapshot)) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	fn(&p.snapshot)
	snap := p.snapshot
	for _, ch := range p.subs {
		select {
		case ch <- snap:
		default:
			// Replace the stale value the reader has not consumed yet
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

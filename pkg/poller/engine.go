// Package poller implements the adaptive sampling engine that decides
// when to collect a live-state snapshot.
//
// The engine alternates between an idle and an active cadence based on
// recent user interaction, and takes one extra debounced sample after
// bursts of structural page mutations. Every sampling tick first lets
// async-refresh-capable providers update their caches, then collects a
// synchronous snapshot across all categories.
//
// Concurrency model: one run-loop goroutine serializes timer expiry,
// activity events, mutation events and shutdown. The sampling tick runs
// on its own goroutine because it awaits provider refreshes; ticks never
// overlap — a tick arriving while one is in flight is skipped and
// counted in Stats.
package poller

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pagepulse/pagepulse/pkg/dom"
	"github.com/pagepulse/pagepulse/pkg/livestate"
	"github.com/pagepulse/pagepulse/pkg/logging"
)

// Default scheduling parameters.
const (
	DefaultInterval         = 5 * time.Second
	DefaultActiveInterval   = 1 * time.Second
	DefaultActivityCooldown = 3 * time.Second
	DefaultMutationDebounce = 100 * time.Millisecond
)

// Config holds the engine's scheduling parameters. Immutable for the
// engine's lifetime.
type Config struct {
	// Interval is the idle sampling period.
	Interval time.Duration

	// ActiveInterval is the sampling period while the user is active.
	// Must not exceed Interval.
	ActiveInterval time.Duration

	// ActivityCooldown is how long after the last interaction the page
	// still counts as active.
	ActivityCooldown time.Duration

	// MutationDebounce is how long a mutation burst must quiesce before
	// it triggers one extra sample.
	MutationDebounce time.Duration
}

// DefaultConfig returns the stock scheduling parameters.
func DefaultConfig() Config {
	return Config{
		Interval:         DefaultInterval,
		ActiveInterval:   DefaultActiveInterval,
		ActivityCooldown: DefaultActivityCooldown,
		MutationDebounce: DefaultMutationDebounce,
	}
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("polling interval must be positive, got %v", c.Interval)
	}
	if c.ActiveInterval <= 0 {
		return fmt.Errorf("active polling interval must be positive, got %v", c.ActiveInterval)
	}
	if c.ActiveInterval > c.Interval {
		return fmt.Errorf("active interval %v must not exceed idle interval %v", c.ActiveInterval, c.Interval)
	}
	if c.ActivityCooldown <= 0 {
		return fmt.Errorf("activity cooldown must be positive, got %v", c.ActivityCooldown)
	}
	if c.MutationDebounce <= 0 {
		return fmt.Errorf("mutation debounce must be positive, got %v", c.MutationDebounce)
	}
	return nil
}

// Stats are the engine's runtime counters, readable at any time.
type Stats struct {
	// TicksRun counts completed sampling ticks.
	TicksRun int64

	// TicksSkipped counts ticks dropped because one was still in flight.
	TicksSkipped int64
}

type lifecycleState int

const (
	stateStopped lifecycleState = iota
	stateRunning
	stateDisposed
)

// Engine drives snapshot collection for one observed document.
type Engine struct {
	cfg     Config
	mgr     *livestate.Manager
	root    dom.Document
	signals SignalSource
	log     *logging.Logger

	mu         sync.Mutex
	state      lifecycleState
	stopCh     chan struct{}
	onSnapshot func(*livestate.Snapshot)
	wg         sync.WaitGroup

	tickInFlight atomic.Bool
	ticksRun     atomic.Int64
	ticksSkipped atomic.Int64
}

// NewEngine creates a stopped engine. The manager's registry must be
// fully assembled before Start; providers are not added or removed while
// the engine runs. signals may be nil, leaving the engine purely
// timer-driven.
func NewEngine(cfg Config, mgr *livestate.Manager, root dom.Document, signals SignalSource, log *logging.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:     cfg,
		mgr:     mgr,
		root:    root,
		signals: signals,
		log:     log,
	}, nil
}

// OnSnapshot sets the consumer callback invoked with each collected
// snapshot. Set it before Start; snapshots completing after Stop are
// dropped rather than delivered.
func (e *Engine) OnSnapshot(fn func(*livestate.Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSnapshot = fn
}

// Start transitions the engine to running: it attaches the signal
// source and schedules the recurring timer at the idle interval.
// Starting a running or disposed engine is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateStopped {
		if e.log != nil && e.state == stateDisposed {
			e.log.Warnf("start ignored: engine is disposed")
		}
		return
	}

	if e.signals != nil {
		if err := e.signals.Attach(); err != nil {
			// Degrade to timer-only sampling rather than failing start.
			if e.log != nil {
				e.log.Warnf("signal source attach failed, continuing timer-driven only: %v", err)
			}
		}
	}

	e.state = stateRunning
	e.stopCh = make(chan struct{})
	e.wg.Add(1)
	go e.run(e.stopCh)

	if e.log != nil {
		e.log.Infof("polling engine started (idle=%v active=%v)", e.cfg.Interval, e.cfg.ActiveInterval)
	}
}

// Stop transitions the engine to stopped: it cancels the recurring
// timer and any pending debounced tick, and detaches the signal source.
// Idempotent. An in-flight sampling tick is not cancelled; its result
// is dropped instead of delivered.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.state != stateRunning {
		e.mu.Unlock()
		return
	}
	e.state = stateStopped
	close(e.stopCh)
	e.mu.Unlock()

	e.wg.Wait()

	if e.signals != nil {
		if err := e.signals.Detach(); err != nil && e.log != nil {
			e.log.Warnf("signal source detach failed: %v", err)
		}
	}

	if e.log != nil {
		e.log.Infof("polling engine stopped")
	}
}

// Dispose stops the engine and makes the stop terminal: a disposed
// engine cannot be restarted. Idempotent.
func (e *Engine) Dispose() {
	e.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == stateDisposed {
		return
	}
	e.state = stateDisposed
	e.signals = nil
	e.onSnapshot = nil
}

// Stats returns the engine's runtime counters.
func (e *Engine) Stats() Stats {
	return Stats{
		TicksRun:     e.ticksRun.Load(),
		TicksSkipped: e.ticksSkipped.Load(),
	}
}

// run is the engine's event loop. It owns the cadence timer, the
// mutation debounce timer and the activity clock; nothing else touches
// them. All timers are released on every exit path.
func (e *Engine) run(stop <-chan struct{}) {
	defer e.wg.Done()

	cadence := time.NewTimer(e.cfg.Interval)
	defer cadence.Stop()
	activeCadence := false

	var debounce *time.Timer
	var debounceC <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	var activityC <-chan ActivityKind
	var mutationC <-chan struct{}
	if e.signals != nil {
		activityC = e.signals.Activity()
		mutationC = e.signals.Mutations()
	}

	var lastActivity time.Time

	for {
		select {
		case <-stop:
			return

		case kind := <-activityC:
			now := time.Now()
			wasActive := e.isActive(lastActivity, now)
			lastActivity = now

			// The idle→active switch is event-driven and immediate.
			// Repeated activity while already active leaves the timer
			// alone — no churn.
			if !wasActive && !activeCadence {
				resetTimer(cadence, e.cfg.ActiveInterval)
				activeCadence = true
				if e.log != nil {
					e.log.Debugf("activity (%s): switching to active cadence %v", kind, e.cfg.ActiveInterval)
				}
			}

		case <-mutationC:
			// Debounce: every mutation pushes the pending tick out.
			if debounce == nil {
				debounce = time.NewTimer(e.cfg.MutationDebounce)
				debounceC = debounce.C
			} else {
				resetTimer(debounce, e.cfg.MutationDebounce)
			}

		case <-debounceC:
			debounce = nil
			debounceC = nil
			e.sample()

		case <-cadence.C:
			e.sample()

			// The active→idle switch is detected lazily on the tick.
			next := e.cfg.Interval
			if e.isActive(lastActivity, time.Now()) {
				next = e.cfg.ActiveInterval
			}
			if activeCadence && next == e.cfg.Interval && e.log != nil {
				e.log.Debugf("cooldown elapsed: back to idle cadence %v", next)
			}
			activeCadence = next == e.cfg.ActiveInterval
			cadence.Reset(next)
		}
	}
}

// isActive reports whether the page counts as active at time now.
func (e *Engine) isActive(lastActivity, now time.Time) bool {
	if lastActivity.IsZero() {
		return false
	}
	return now.Sub(lastActivity) < e.cfg.ActivityCooldown
}

// sample launches one sampling tick unless a previous tick is still in
// flight, in which case the tick is skipped. Skipping (rather than
// queueing) keeps a slow provider refresh from building a backlog of
// overlapping page reads.
func (e *Engine) sample() {
	if !e.tickInFlight.CompareAndSwap(false, true) {
		e.ticksSkipped.Add(1)
		if e.log != nil {
			e.log.Debugf("tick skipped: previous tick still in flight")
		}
		return
	}

	go func() {
		defer e.tickInFlight.Store(false)
		e.tick()
	}()
}

// tick refreshes every async-capable provider, then collects one
// snapshot. The refresh strictly precedes the collect, so the snapshot
// observes the just-updated caches. A refresh failure leaves that
// category stale; the tick itself never fails.
func (e *Engine) tick() {
	ctx := context.Background()
	for _, r := range e.mgr.Refreshables() {
		if err := r.Refresh(ctx, e.root); err != nil {
			if e.log != nil {
				e.log.Warnf("refresh failed for category %q, collecting stale state: %v", r.Category(), err)
			}
		}
	}

	snapshot := e.mgr.CollectSnapshot(e.root)
	e.ticksRun.Add(1)
	e.deliver(snapshot)
}

// deliver hands the snapshot to the consumer callback, unless the
// engine stopped while the tick was in flight.
func (e *Engine) deliver(snapshot *livestate.Snapshot) {
	e.mu.Lock()
	fn := e.onSnapshot
	running := e.state == stateRunning
	e.mu.Unlock()

	if running && fn != nil {
		fn(snapshot)
	}
}

// resetTimer safely re-arms a loop-owned timer, draining a stale expiry
// if the timer already fired.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

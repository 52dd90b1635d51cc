package countdown

import (
	"sync"
	"time"
)

const defaultTickInterval = time.Second / 60

// Config contains runtime options for Timer.
type Config struct {
	TickInterval time.Duration
	Clock        Clock
}

// Timer tracks elapsed time against an optional limit. Progress accumulated
// across run segments survives Stop/Start pairs; only Reset discards it.
type Timer struct {
	mu           sync.Mutex
	clock        Clock
	tickInterval time.Duration
	limit        time.Duration
	accumulated  time.Duration
	runStart     time.Time // zero while stopped
	generation   uint64    // bumped by Reset
	stopCh       chan struct{}
	listeners    []Listener
}

// New creates a stopped Timer with no limit.
func New(options Config) *Timer {
	if options.TickInterval <= 0 {
		options.TickInterval = defaultTickInterval
	}
	if options.Clock == nil {
		options.Clock = systemClock{}
	}
	return &Timer{
		clock:        options.Clock,
		tickInterval: options.TickInterval,
	}
}

// AddListener registers a listener for timer events.
func (timer *Timer) AddListener(listener Listener) {
	timer.mu.Lock()
	timer.listeners = append(timer.listeners, listener)
	timer.mu.Unlock()
}

// SetLimit sets the countdown limit. Zero means no limit: the timer counts up
// indefinitely and never completes. A limit set while running applies to the
// ongoing comparison on the next tick.
func (timer *Timer) SetLimit(limit time.Duration) {
	if limit < 0 {
		limit = 0
	}
	timer.mu.Lock()
	timer.limit = limit
	timer.mu.Unlock()
}

// Limit returns the configured limit.
func (timer *Timer) Limit() time.Duration {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.limit
}

// Running reports whether a run segment is in progress.
func (timer *Timer) Running() bool {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return !timer.runStart.IsZero()
}

// Start begins a new run segment. Starting a running timer is a no-op.
func (timer *Timer) Start() {
	timer.mu.Lock()
	if !timer.runStart.IsZero() {
		timer.mu.Unlock()
		return
	}
	timer.runStart = timer.clock.Now()
	timer.stopCh = make(chan struct{})
	stopCh := timer.stopCh
	timer.mu.Unlock()

	go timer.run(stopCh)
}

// Stop folds the current run segment into accumulated progress and cancels
// future ticks. Stopping a stopped timer is a no-op. No tick mutates state
// after Stop returns.
func (timer *Timer) Stop() {
	timer.mu.Lock()
	if timer.runStart.IsZero() {
		timer.mu.Unlock()
		return
	}
	timer.accumulated += timer.clock.Now().Sub(timer.runStart)
	timer.runStart = time.Time{}
	close(timer.stopCh)
	timer.stopCh = nil
	timer.mu.Unlock()
}

// Reset discards accumulated progress and begins a new generation. A running
// timer stays running and its current segment restarts from now; a stopped
// timer stays stopped.
func (timer *Timer) Reset() {
	timer.mu.Lock()
	timer.accumulated = 0
	timer.generation++
	if !timer.runStart.IsZero() {
		timer.runStart = timer.clock.Now()
	}
	timer.mu.Unlock()
}

// Generation returns the current run generation.
func (timer *Timer) Generation() uint64 {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.generation
}

// Elapsed returns the current elapsed time. While running it grows with the
// wall clock; once a limit is set it never exceeds the limit, even between
// ticks.
func (timer *Timer) Elapsed() time.Duration {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.elapsedLocked(timer.clock.Now())
}

func (timer *Timer) elapsedLocked(now time.Time) time.Duration {
	elapsed := timer.accumulated
	if !timer.runStart.IsZero() {
		elapsed += now.Sub(timer.runStart)
	}
	if timer.limit > 0 && elapsed > timer.limit {
		elapsed = timer.limit
	}
	return elapsed
}

func (timer *Timer) run(stopCh chan struct{}) {
	ticker := time.NewTicker(timer.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			timer.tick(timer.clock.Now())
		}
	}
}

// tick recomputes elapsed time and checks the limit. Reaching the limit
// clamps elapsed, stops the timer and emits LimitReached, all under a single
// critical section so no observer sees a torn state. A completed run cannot
// tick again, so LimitReached fires at most once per run.
func (timer *Timer) tick(now time.Time) {
	timer.mu.Lock()
	if timer.runStart.IsZero() {
		timer.mu.Unlock()
		return
	}
	elapsed := timer.elapsedLocked(now)
	limit := timer.limit
	gen := timer.generation
	reached := limit > 0 && elapsed >= limit
	if reached {
		timer.accumulated = limit
		timer.runStart = time.Time{}
		close(timer.stopCh)
		timer.stopCh = nil
	}
	listeners := append([]Listener(nil), timer.listeners...)
	timer.mu.Unlock()

	events := []Event{{Type: EventElapsed, Elapsed: elapsed, Limit: limit, Gen: gen, At: now}}
	if reached {
		events = append(events, Event{Type: EventLimitReached, Elapsed: elapsed, Limit: limit, Gen: gen, At: now})
	}
	for _, event := range events {
		for _, listener := range listeners {
			listener(event)
		}
	}
}

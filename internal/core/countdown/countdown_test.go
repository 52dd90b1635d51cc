package countdown

import (
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// fakeClock lets tests advance wall-clock time by hand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(delta time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(delta)
	clock.mu.Unlock()
}

// newTestTimer returns a timer whose ticker goroutine never fires, so tests
// drive tick() deterministically.
func newTestTimer(clock *fakeClock) *Timer {
	return New(Config{TickInterval: time.Hour, Clock: clock})
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (recorder *eventRecorder) listener(event Event) {
	recorder.mu.Lock()
	recorder.events = append(recorder.events, event)
	recorder.mu.Unlock()
}

func (recorder *eventRecorder) count(eventType EventType) int {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	n := 0
	for _, event := range recorder.events {
		if event.Type == eventType {
			n++
		}
	}
	return n
}

func TestTimer_AccumulatesAcrossPauseResume(t *testing.T) {
	clock := newFakeClock()
	timer := newTestTimer(clock)

	timer.Start()
	clock.Advance(3 * time.Second)
	timer.Stop()

	if got := timer.Elapsed(); got != 3*time.Second {
		t.Fatalf("elapsed after stop = %v, want 3s", got)
	}

	// Time passing while stopped must not count.
	clock.Advance(10 * time.Second)
	if got := timer.Elapsed(); got != 3*time.Second {
		t.Fatalf("elapsed while stopped = %v, want 3s", got)
	}

	timer.Start()
	clock.Advance(2 * time.Second)
	if got := timer.Elapsed(); got != 5*time.Second {
		t.Fatalf("elapsed after resume = %v, want 5s", got)
	}
	timer.Stop()
}

func TestTimer_StartIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	timer := newTestTimer(clock)

	timer.Start()
	firstStart := timer.runStart
	clock.Advance(4 * time.Second)
	timer.Start()

	if !timer.runStart.Equal(firstStart) {
		t.Fatalf("second Start moved runStart from %v to %v", firstStart, timer.runStart)
	}
	if got := timer.Elapsed(); got != 4*time.Second {
		t.Fatalf("elapsed after double start = %v, want 4s", got)
	}
	timer.Stop()
}

func TestTimer_StopIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	timer := newTestTimer(clock)

	timer.Start()
	clock.Advance(time.Second)
	timer.Stop()
	timer.Stop()

	if got := timer.Elapsed(); got != time.Second {
		t.Fatalf("elapsed after double stop = %v, want 1s", got)
	}
}

func TestTimer_ResetWhileRunningKeepsRunning(t *testing.T) {
	clock := newFakeClock()
	timer := newTestTimer(clock)

	timer.Start()
	clock.Advance(7 * time.Second)
	timer.Reset()

	if !timer.Running() {
		t.Fatal("Reset stopped a running timer")
	}
	if got := timer.Elapsed(); got != 0 {
		t.Fatalf("elapsed right after Reset = %v, want 0", got)
	}

	clock.Advance(2 * time.Second)
	if got := timer.Elapsed(); got != 2*time.Second {
		t.Fatalf("elapsed after Reset+2s = %v, want 2s", got)
	}
	timer.Stop()
}

func TestTimer_ResetWhileStoppedStaysStopped(t *testing.T) {
	clock := newFakeClock()
	timer := newTestTimer(clock)

	timer.Start()
	clock.Advance(5 * time.Second)
	timer.Stop()
	timer.Reset()

	if timer.Running() {
		t.Fatal("Reset started a stopped timer")
	}
	if got := timer.Elapsed(); got != 0 {
		t.Fatalf("elapsed after Reset = %v, want 0", got)
	}
}

func TestTimer_LimitClampAndSingleCompletion(t *testing.T) {
	clock := newFakeClock()
	timer := newTestTimer(clock)
	recorder := &eventRecorder{}
	timer.AddListener(recorder.listener)

	timer.SetLimit(10 * time.Second)
	timer.Start()

	clock.Advance(4 * time.Second)
	timer.tick(clock.Now())
	if got := recorder.count(EventLimitReached); got != 0 {
		t.Fatalf("LimitReached before limit: %d events", got)
	}

	clock.Advance(7 * time.Second) // 11s total, past the 10s limit
	timer.tick(clock.Now())

	if got := timer.Elapsed(); got != 10*time.Second {
		t.Fatalf("elapsed after limit = %v, want exactly 10s", got)
	}
	if timer.Running() {
		t.Fatal("timer still running after reaching limit")
	}
	if got := recorder.count(EventLimitReached); got != 1 {
		t.Fatalf("LimitReached fired %d times, want 1", got)
	}

	// Further ticks on the stopped timer must not re-fire or mutate.
	clock.Advance(time.Minute)
	timer.tick(clock.Now())
	if got := recorder.count(EventLimitReached); got != 1 {
		t.Fatalf("LimitReached re-fired while stopped: %d events", got)
	}
	if got := timer.Elapsed(); got != 10*time.Second {
		t.Fatalf("elapsed mutated while stopped: %v", got)
	}
}

func TestTimer_ElapsedClampsBetweenTicks(t *testing.T) {
	clock := newFakeClock()
	timer := newTestTimer(clock)
	timer.SetLimit(10 * time.Second)
	timer.Start()

	// The wall clock crosses the limit but no tick has sampled it yet.
	clock.Advance(25 * time.Second)
	if got := timer.Elapsed(); got != 10*time.Second {
		t.Fatalf("elapsed between ticks = %v, want clamped 10s", got)
	}
	timer.Stop()
}

func TestTimer_ZeroLimitCountsUpForever(t *testing.T) {
	clock := newFakeClock()
	timer := newTestTimer(clock)
	recorder := &eventRecorder{}
	timer.AddListener(recorder.listener)

	timer.Start()
	clock.Advance(48 * time.Hour)
	timer.tick(clock.Now())

	if got := recorder.count(EventLimitReached); got != 0 {
		t.Fatalf("LimitReached fired %d times with no limit set", got)
	}
	if !timer.Running() {
		t.Fatal("unbounded timer stopped itself")
	}
	if got := timer.Elapsed(); got != 48*time.Hour {
		t.Fatalf("elapsed = %v, want 48h", got)
	}
	timer.Stop()
}

func TestTimer_LimitLoweredWhileRunningAppliesOnNextTick(t *testing.T) {
	clock := newFakeClock()
	timer := newTestTimer(clock)
	recorder := &eventRecorder{}
	timer.AddListener(recorder.listener)

	timer.SetLimit(time.Hour)
	timer.Start()
	clock.Advance(30 * time.Second)
	timer.tick(clock.Now())

	timer.SetLimit(20 * time.Second)
	timer.tick(clock.Now())

	if got := recorder.count(EventLimitReached); got != 1 {
		t.Fatalf("LimitReached fired %d times after lowering limit, want 1", got)
	}
	if got := timer.Elapsed(); got != 20*time.Second {
		t.Fatalf("elapsed = %v, want clamped 20s", got)
	}
}

func TestTimer_ElapsedEventEveryTick(t *testing.T) {
	clock := newFakeClock()
	timer := newTestTimer(clock)
	recorder := &eventRecorder{}
	timer.AddListener(recorder.listener)

	timer.Start()
	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		timer.tick(clock.Now())
	}
	timer.Stop()

	if got := recorder.count(EventElapsed); got != 5 {
		t.Fatalf("got %d elapsed events, want 5", got)
	}
}

func TestTimer_ResetBumpsGeneration(t *testing.T) {
	clock := newFakeClock()
	timer := newTestTimer(clock)
	recorder := &eventRecorder{}
	timer.AddListener(recorder.listener)

	if got := timer.Generation(); got != 0 {
		t.Fatalf("fresh timer generation = %d, want 0", got)
	}
	timer.Reset()
	timer.Reset()
	if got := timer.Generation(); got != 2 {
		t.Fatalf("generation after two resets = %d, want 2", got)
	}

	timer.Start()
	clock.Advance(time.Second)
	timer.tick(clock.Now())
	timer.Stop()

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.events) != 1 {
		t.Fatalf("got %d events, want 1", len(recorder.events))
	}
	if got := recorder.events[0].Gen; got != 2 {
		t.Fatalf("event generation = %d, want 2", got)
	}
}

// TestTimer_TickerCompletesRun exercises the real ticker goroutine end to end.
func TestTimer_TickerCompletesRun(t *testing.T) {
	timer := New(Config{TickInterval: 5 * time.Millisecond})
	done := make(chan Event, 1)
	timer.AddListener(func(event Event) {
		if event.Type == EventLimitReached {
			select {
			case done <- event:
			default:
			}
		}
	})

	timer.SetLimit(30 * time.Millisecond)
	timer.Start()

	select {
	case event := <-done:
		if event.Elapsed != 30*time.Millisecond {
			t.Fatalf("completion elapsed = %v, want 30ms", event.Elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for LimitReached")
	}
	if timer.Running() {
		t.Fatal("timer running after completion")
	}
}

// Property: for any sequence of start/stop/reset/advance steps with no limit
// set, elapsed is monotonically non-decreasing while running, frozen while
// stopped, and stop/start pairs never lose or invent time.
func TestTimer_AccumulatorProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		clock := newFakeClock()
		timer := newTestTimer(clock)

		var expected time.Duration // model accumulator
		var running bool
		var segmentStart time.Time

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.SampledFrom([]string{"start", "stop", "reset", "advance"}).Draw(t, "op") {
			case "start":
				if !running {
					running = true
					segmentStart = clock.Now()
				}
				timer.Start()
			case "stop":
				if running {
					expected += clock.Now().Sub(segmentStart)
					running = false
				}
				timer.Stop()
			case "reset":
				expected = 0
				if running {
					segmentStart = clock.Now()
				}
				timer.Reset()
			case "advance":
				delta := time.Duration(rapid.Int64Range(0, int64(90*time.Second)).Draw(t, "delta"))
				before := timer.Elapsed()
				clock.Advance(delta)
				after := timer.Elapsed()
				if running && after < before {
					t.Fatalf("elapsed decreased while running: %v -> %v", before, after)
				}
				if !running && after != before {
					t.Fatalf("elapsed moved while stopped: %v -> %v", before, after)
				}
			}

			want := expected
			if running {
				want += clock.Now().Sub(segmentStart)
			}
			if got := timer.Elapsed(); got != want {
				t.Fatalf("step %d: elapsed = %v, want %v", i, got, want)
			}
		}
	})
}

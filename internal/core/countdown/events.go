package countdown

import "time"

// EventType defines the type of timer event.
type EventType string

const (
	EventElapsed      EventType = "elapsed"
	EventLimitReached EventType = "limit_reached"
)

// Event represents a timer update for listeners. Gen identifies the run the
// event belongs to, so an owner restarting the timer can discard events that
// raced the restart.
type Event struct {
	Type    EventType
	Elapsed time.Duration
	Limit   time.Duration
	Gen     uint64
	At      time.Time
}

// Listener receives timer events. Listeners are invoked in registration
// order, outside the timer lock.
type Listener func(Event)

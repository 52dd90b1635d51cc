package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyclock/internal/core/countdown"
	"studyclock/internal/core/model"
)

// ErrInvalidState indicates a control call issued from a state that forbids it.
var ErrInvalidState = errors.New("invalid sequencer state")

// Config contains runtime options for Sequencer.
type Config struct {
	TickInterval time.Duration
	Clock        countdown.Clock
}

// Sequencer is a state machine chaining alternating study and break intervals.
// It exclusively owns one countdown timer and reacts to its completion events
// to advance the chain.
type Sequencer struct {
	mu        sync.Mutex
	timer     *countdown.Timer
	config    model.ChainConfig
	kind      Kind
	remaining int
	chainID   uuid.UUID
	timerGen  uint64 // generation of the interval in progress
	events    []chan Event
}

// New creates an idle Sequencer.
func New(options Config) *Sequencer {
	sequencer := &Sequencer{kind: KindIdle}
	sequencer.timer = countdown.New(countdown.Config{
		TickInterval: options.TickInterval,
		Clock:        options.Clock,
	})
	sequencer.timer.AddListener(sequencer.onTimerEvent)
	return sequencer
}

// Subscribe registers a new observer channel. Events are dropped rather than
// blocking when the buffer is full.
func (sequencer *Sequencer) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	sequencer.mu.Lock()
	sequencer.events = append(sequencer.events, ch)
	sequencer.mu.Unlock()
	return ch
}

// Kind returns the current session kind.
func (sequencer *Sequencer) Kind() Kind {
	sequencer.mu.Lock()
	defer sequencer.mu.Unlock()
	return sequencer.kind
}

// SessionsRemaining returns the number of study+break pairs left, including
// the pair in progress.
func (sequencer *Sequencer) SessionsRemaining() int {
	sequencer.mu.Lock()
	defer sequencer.mu.Unlock()
	return sequencer.remaining
}

// ChainID returns the identifier of the chain begun by the last Begin call.
func (sequencer *Sequencer) ChainID() uuid.UUID {
	sequencer.mu.Lock()
	defer sequencer.mu.Unlock()
	return sequencer.chainID
}

// Elapsed returns the elapsed time of the current interval.
func (sequencer *Sequencer) Elapsed() time.Duration {
	return sequencer.timer.Elapsed()
}

// Limit returns the limit of the current interval.
func (sequencer *Sequencer) Limit() time.Duration {
	return sequencer.timer.Limit()
}

// Begin validates the configuration and starts a new chain with a fresh chain
// ID. Valid only while idle; rejected calls leave the sequencer untouched.
func (sequencer *Sequencer) Begin(config model.ChainConfig) error {
	sequencer.mu.Lock()
	if sequencer.kind != KindIdle {
		sequencer.mu.Unlock()
		return ErrInvalidState
	}
	if err := config.Validate(); err != nil {
		sequencer.mu.Unlock()
		return err
	}
	sequencer.config = config
	sequencer.remaining = config.TotalSessions
	sequencer.kind = KindStudy
	sequencer.chainID = uuid.New()
	sequencer.startIntervalLocked(config.StudyLimit)
	event := sequencer.eventLocked(EventSessionChange)
	event.Limit = config.StudyLimit
	sequencer.emitLocked(event)
	sequencer.mu.Unlock()
	return nil
}

// HaltAll stops the chain from any state and returns to idle. Partial
// progress of the current interval is discarded.
func (sequencer *Sequencer) HaltAll() {
	sequencer.mu.Lock()
	sequencer.timer.Stop()
	if sequencer.kind == KindIdle {
		sequencer.mu.Unlock()
		return
	}
	sequencer.kind = KindIdle
	sequencer.remaining = 0
	sequencer.emitLocked(sequencer.eventLocked(EventSessionChange))
	sequencer.mu.Unlock()
}

// Pause freezes the current interval without advancing the chain. Valid only
// while a study or break interval is active.
func (sequencer *Sequencer) Pause() error {
	sequencer.mu.Lock()
	defer sequencer.mu.Unlock()
	if sequencer.kind == KindIdle {
		return ErrInvalidState
	}
	sequencer.timer.Stop()
	return nil
}

// Resume continues a paused interval with its accumulated progress intact.
// Valid only while a study or break interval is active.
func (sequencer *Sequencer) Resume() error {
	sequencer.mu.Lock()
	defer sequencer.mu.Unlock()
	if sequencer.kind == KindIdle {
		return ErrInvalidState
	}
	sequencer.timer.Start()
	return nil
}

// Close halts the chain and closes all observer channels.
func (sequencer *Sequencer) Close() {
	sequencer.HaltAll()

	sequencer.mu.Lock()
	events := sequencer.events
	sequencer.events = nil
	sequencer.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (sequencer *Sequencer) onTimerEvent(event countdown.Event) {
	switch event.Type {
	case countdown.EventElapsed:
		sequencer.mu.Lock()
		forwarded := sequencer.eventLocked(EventElapsed)
		forwarded.Elapsed = event.Elapsed
		forwarded.Limit = event.Limit
		forwarded.At = event.At
		sequencer.emitLocked(forwarded)
		sequencer.mu.Unlock()
	case countdown.EventLimitReached:
		sequencer.advance(event)
	}
}

// advance reacts to the owned timer completing an interval. A study interval
// chains into a break; a completed break counts one study+break pair down and
// either chains into the next study interval or ends the chain. Completions
// carrying a stale generation raced a restart of the timer and are discarded.
func (sequencer *Sequencer) advance(event countdown.Event) {
	sequencer.mu.Lock()
	defer sequencer.mu.Unlock()

	if event.Gen != sequencer.timerGen {
		return
	}

	completed := sequencer.eventLocked(EventLimitReached)
	completed.Elapsed = event.Elapsed
	completed.Limit = event.Limit
	completed.At = event.At

	switch sequencer.kind {
	case KindStudy:
		sequencer.kind = KindBreak
		sequencer.startIntervalLocked(sequencer.config.BreakLimit)
		sequencer.emitLocked(completed)
		change := sequencer.eventLocked(EventSessionChange)
		change.Limit = sequencer.config.BreakLimit
		sequencer.emitLocked(change)
	case KindBreak:
		sequencer.remaining--
		if sequencer.remaining > 0 {
			sequencer.kind = KindStudy
			sequencer.startIntervalLocked(sequencer.config.StudyLimit)
			sequencer.emitLocked(completed)
			change := sequencer.eventLocked(EventSessionChange)
			change.Limit = sequencer.config.StudyLimit
			sequencer.emitLocked(change)
		} else {
			sequencer.kind = KindIdle
			sequencer.emitLocked(completed)
			sequencer.emitLocked(sequencer.eventLocked(EventSessionChange))
			sequencer.emitLocked(sequencer.eventLocked(EventChainComplete))
		}
	default:
		// Completion from a halted chain; nothing to advance.
	}
}

func (sequencer *Sequencer) startIntervalLocked(limit time.Duration) {
	sequencer.timer.SetLimit(limit)
	sequencer.timer.Reset()
	sequencer.timer.Start()
	sequencer.timerGen = sequencer.timer.Generation()
}

func (sequencer *Sequencer) eventLocked(eventType EventType) Event {
	return Event{
		Type:      eventType,
		Kind:      sequencer.kind,
		ChainID:   sequencer.chainID,
		Remaining: sequencer.remaining,
		At:        time.Now(),
	}
}

// emitLocked delivers an event to every subscriber while mu is held. Sending
// under the lock keeps emission mutually exclusive with Close, which detaches
// the channels under the same lock before closing them, and gives all
// subscribers one total event order.
func (sequencer *Sequencer) emitLocked(event Event) {
	for _, ch := range sequencer.events {
		select {
		case ch <- event:
		default:
		}
	}
}

package session

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies the active session interval.
type Kind string

const (
	KindIdle  Kind = "idle"
	KindStudy Kind = "study"
	KindBreak Kind = "break"
)

// EventType defines the type of sequencer event.
type EventType string

const (
	// EventElapsed reports elapsed progress of the current interval, once
	// per tick while its timer runs.
	EventElapsed EventType = "elapsed"
	// EventSessionChange reports a transition between session kinds.
	EventSessionChange EventType = "session_change"
	// EventLimitReached reports that an interval ran to its limit. Kind
	// names the interval that completed.
	EventLimitReached EventType = "limit_reached"
	// EventChainComplete reports that the final break of a chain completed.
	EventChainComplete EventType = "chain_complete"
)

// Event represents a sequencer update for observers.
type Event struct {
	Type      EventType
	Kind      Kind
	ChainID   uuid.UUID
	Elapsed   time.Duration
	Limit     time.Duration
	Remaining int
	At        time.Time
}

package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfiguration indicates a rejected duration or repeat count.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ChainConfig defines one chain of alternating study and break intervals.
type ChainConfig struct {
	StudyLimit    time.Duration
	BreakLimit    time.Duration
	TotalSessions int
}

// DefaultChainConfig returns the stock 25/5 study chain.
func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		StudyLimit:    25 * time.Minute,
		BreakLimit:    5 * time.Minute,
		TotalSessions: 4,
	}
}

// Validate rejects negative durations and a non-positive session count.
// A zero duration is accepted: the affected interval counts up without limit.
func (config ChainConfig) Validate() error {
	if config.StudyLimit < 0 {
		return fmt.Errorf("%w: study duration must not be negative", ErrInvalidConfiguration)
	}
	if config.BreakLimit < 0 {
		return fmt.Errorf("%w: break duration must not be negative", ErrInvalidConfiguration)
	}
	if config.TotalSessions < 1 {
		return fmt.Errorf("%w: session count must be at least 1", ErrInvalidConfiguration)
	}
	return nil
}

package countdown

import "time"

// Clock abstracts wall-clock sampling so tests can drive the timer
// deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

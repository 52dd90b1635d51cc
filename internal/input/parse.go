package input

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"studyclock/internal/core/model"
)

// maxSpanMinutes bounds bare-minute input so the duration conversion cannot
// overflow. ParseFloat also accepts "inf" and "nan"; both fall outside this
// bound or fail the comparisons below and are rejected.
const maxSpanMinutes = float64(math.MaxInt64) / float64(time.Minute)

// ParseSpan converts free-form duration text into a duration. Accepted forms
// are "M:S" and a bare number of minutes ("25", "2.5"). Anything else is
// rejected with ErrInvalidConfiguration rather than silently defaulted.
func ParseSpan(text string) (time.Duration, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty duration", model.ErrInvalidConfiguration)
	}

	if minutesText, secondsText, found := strings.Cut(trimmed, ":"); found {
		minutes, err := strconv.Atoi(strings.TrimSpace(minutesText))
		if err != nil || minutes < 0 {
			return 0, fmt.Errorf("%w: bad minutes in %q", model.ErrInvalidConfiguration, text)
		}
		seconds, err := strconv.Atoi(strings.TrimSpace(secondsText))
		if err != nil || seconds < 0 {
			return 0, fmt.Errorf("%w: bad seconds in %q", model.ErrInvalidConfiguration, text)
		}
		return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, nil
	}

	minutes, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(minutes) || minutes < 0 || minutes > maxSpanMinutes {
		return 0, fmt.Errorf("%w: bad duration %q", model.ErrInvalidConfiguration, text)
	}
	return time.Duration(minutes * float64(time.Minute)), nil
}

// ParseCount converts repeat-count text into a positive integer.
func ParseCount(text string) (int, error) {
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || count < 1 {
		return 0, fmt.Errorf("%w: bad session count %q", model.ErrInvalidConfiguration, text)
	}
	return count, nil
}

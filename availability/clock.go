package availability

import (
	"fmt"
	"time"
)

// Clock is a wall-clock time of day in minutes since midnight.
type Clock int

const minutesPerDay = 24 * 60

// ParseClock parses an "HH:MM" (24h) time of day. Seconds are accepted and
// dropped so values read back from TIME columns still parse.
func ParseClock(s string) (Clock, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock(t.Hour()*60 + t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
}

// MustParseClock is ParseClock for constants and tests.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Add shifts the clock by d. The result is not wrapped at midnight.
func (c Clock) Add(d time.Duration) Clock {
	return c + Clock(d/time.Minute)
}

// Window is the half-open interval [Start, End) a booking holds its table.
type Window struct {
	Start Clock
	End   Clock
}

// WindowAt returns the occupancy window of a booking starting at start.
func WindowAt(start Clock, d time.Duration) Window {
	return Window{Start: start, End: start.Add(d)}
}

// Overlaps reports whether two windows share any minute. Touching windows
// (one ends exactly when the other starts) do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

// Within reports whether c falls in [open, close). A zero-length or inverted
// range means the restaurant closes after midnight and is handled as a wrap.
func Within(c, open, close Clock) bool {
	if open < close {
		return open <= c && c < close
	}
	if open == close {
		return true
	}
	return c >= open || c < close
}

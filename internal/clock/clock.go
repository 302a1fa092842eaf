// Package clock holds the simulated current date. The date only moves when the
// end-of-day evaluation advances it, never from wall-clock time, so every
// operation sees a stable "today" and tests can start the clock anywhere.
package clock

import (
	"sync"
	"time"
)

// SimClock is the process-wide simulated date.
type SimClock struct {
	mu    sync.Mutex
	today time.Time
}

// New returns a clock whose first day is the date of start.
func New(start time.Time) *SimClock {
	return &SimClock{today: Midnight(start)}
}

// Today returns the current simulated date (UTC midnight).
func (c *SimClock) Today() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.today
}

// Advance moves the simulated date one day forward and returns the new date.
func (c *SimClock) Advance() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = c.today.AddDate(0, 0, 1)
	return c.today
}

// Midnight normalizes t to its date at UTC midnight.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same date.
func SameDay(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTodayIsNormalizedToMidnight(t *testing.T) {
	c := New(time.Date(2024, 3, 1, 17, 42, 9, 0, time.Local))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), c.Today())
}

func TestAdvanceMovesOneDay(t *testing.T) {
	c := New(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC))

	next := c.Advance()
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), next, "2024 is a leap year")
	assert.Equal(t, next, c.Today())

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), c.Advance())
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)
	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, a.AddDate(0, 0, 1)))
}

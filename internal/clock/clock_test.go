package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	c := RealClock{}

	before := time.Now()
	got := c.Now()
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestFixed_Now(t *testing.T) {
	pinned := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	c := Fixed(pinned)

	assert.Equal(t, pinned, c.Now())
	assert.Equal(t, pinned, c.Now(), "repeated calls return the same instant")
}

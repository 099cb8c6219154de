package time

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemClockIsUTC(t *testing.T) {
	now := NewRealTimeProvider().Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	c := FixedClock{At: at}

	assert.Equal(t, at, c.Now())
	assert.Equal(t, 90*time.Minute, c.Since(at.Add(-90*time.Minute)))
	assert.NotPanics(t, func() { c.Sleep(time.Hour) })
}

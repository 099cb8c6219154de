package time

import (
	"time"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
)

// SystemClock reads the wall clock. Instants are UTC so stored timestamps compare cleanly
// regardless of the host zone.
type SystemClock struct{}

var _ core.TimeProvider = SystemClock{}

// NewRealTimeProvider returns the system clock
func NewRealTimeProvider() core.TimeProvider {
	return SystemClock{}
}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

func (SystemClock) Since(t time.Time) time.Duration { return time.Since(t) }

func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// FixedClock always reports the same instant. Sleep returns immediately.
type FixedClock struct {
	At time.Time
}

var _ core.TimeProvider = FixedClock{}

func (c FixedClock) Now() time.Time { return c.At }

func (c FixedClock) Since(t time.Time) time.Duration { return c.At.Sub(t) }

func (FixedClock) Sleep(time.Duration) {}

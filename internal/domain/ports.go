package domain

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts wall-clock time so delays can be driven by tests
type Clock interface {
	Now() time.Time
	// After delivers the current time once d has elapsed
	After(d time.Duration) <-chan time.Time
}

// RandomSource is satisfied by *math/rand/v2.Rand
type RandomSource interface {
	Float64() float64
	IntN(n int) int
}

// SettlementGateway completes a confirmed transfer.
// Failures are reported as *SettlementError.
type SettlementGateway interface {
	Settle(ctx context.Context, view ConfirmationView) error
}

// CapabilityChecker answers whether the bank behind a routing number
// accepts instant (FedNow) payments
type CapabilityChecker interface {
	SupportsInstant(ctx context.Context, routingNumber string) (bool, error)
}

// SystemClock is the real Clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// LockedRandom makes a RandomSource safe for concurrent use
type LockedRandom struct {
	mu  sync.Mutex
	src RandomSource
}

// NewLockedRandom wraps src with a mutex
func NewLockedRandom(src RandomSource) *LockedRandom {
	return &LockedRandom{src: src}
}

func (r *LockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Float64()
}

func (r *LockedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.IntN(n)
}

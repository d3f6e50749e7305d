package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/simaogato/transferflow-backend/internal/domain"
)

// ErrLookupUnavailable is returned while the breaker rejects lookups
var ErrLookupUnavailable = errors.New("bank capability lookup unavailable")

// BreakerConfig controls when lookups are short-circuited
type BreakerConfig struct {
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again
	OpenTimeout time.Duration
}

// DefaultBreakerConfig trips after 5 consecutive failures and retries after 30s
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
	}
}

// GuardedChecker wraps a CapabilityChecker with a circuit breaker so a failing
// lookup backend is not hammered by every keystroke on the routing field
type GuardedChecker struct {
	next    domain.CapabilityChecker
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewGuardedChecker creates a new GuardedChecker instance
func NewGuardedChecker(next domain.CapabilityChecker, cfg BreakerConfig, logger *zap.Logger) *GuardedChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:        "bank-capability",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &GuardedChecker{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// SupportsInstant implements domain.CapabilityChecker
func (g *GuardedChecker) SupportsInstant(ctx context.Context, routingNumber string) (bool, error) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.SupportsInstant(ctx, routingNumber)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return false, fmt.Errorf("%w: %v", ErrLookupUnavailable, err)
		}
		return false, err
	}
	return result.(bool), nil
}

// State reports the breaker state, e.g. "closed" or "open"
func (g *GuardedChecker) State() string {
	return g.breaker.State().String()
}

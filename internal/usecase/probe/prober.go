package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/simaogato/transferflow-backend/internal/domain"
)

// ErrLookupFailed is returned when the simulated bank directory does not answer
var ErrLookupFailed = errors.New("bank capability lookup failed")

// Config holds the simulated capability lookup parameters
type Config struct {
	Delay time.Duration
	// InstantSupportRate is the probability in [0,1] that a bank supports FedNow
	InstantSupportRate float64
	// LookupFailureRate is the probability in [0,1] that a lookup errors out
	LookupFailureRate float64
}

// DefaultConfig answers after 1.5s with a 70% chance of instant support, never failing
func DefaultConfig() Config {
	return Config{
		Delay:              1500 * time.Millisecond,
		InstantSupportRate: 0.7,
	}
}

// BankProber simulates asking the recipient bank whether it accepts instant payments
type BankProber struct {
	Clock  domain.Clock
	Random domain.RandomSource
	Config Config
	Logger *zap.Logger
}

// NewBankProber creates a new BankProber instance
func NewBankProber(clock domain.Clock, random domain.RandomSource, cfg Config, logger *zap.Logger) *BankProber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BankProber{
		Clock:  clock,
		Random: random,
		Config: cfg,
		Logger: logger,
	}
}

// SupportsInstant implements domain.CapabilityChecker
func (p *BankProber) SupportsInstant(ctx context.Context, routingNumber string) (bool, error) {
	select {
	case <-p.Clock.After(p.Config.Delay):
	case <-ctx.Done():
		return false, fmt.Errorf("capability lookup interrupted: %w", ctx.Err())
	}

	if p.Config.LookupFailureRate > 0 && p.Random.Float64() < p.Config.LookupFailureRate {
		p.Logger.Warn("simulated bank capability lookup failed")
		return false, ErrLookupFailed
	}

	supported := p.Random.Float64() < p.Config.InstantSupportRate
	p.Logger.Debug("bank capability checked",
		zap.Bool("supports_instant", supported),
		zap.Int("routing_length", len(routingNumber)),
	)
	return supported, nil
}

package settlement

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/simaogato/transferflow-backend/internal/domain"
)

const tracerName = "github.com/simaogato/transferflow-backend/internal/usecase/settlement"

// Config holds the simulated settlement parameters
type Config struct {
	InstantDelay  time.Duration
	StandardDelay time.Duration
	// FailureRate is the probability in [0,1] that a settlement fails
	FailureRate float64
}

// DefaultConfig settles instant payments in 1.5s and standard payments in 3s, never failing
func DefaultConfig() Config {
	return Config{
		InstantDelay:  1500 * time.Millisecond,
		StandardDelay: 3 * time.Second,
	}
}

// Simulator stands in for a payment network. It waits a per-speed delay and
// then succeeds, or fails with the configured probability.
type Simulator struct {
	Clock  domain.Clock
	Random domain.RandomSource
	Config Config
	Logger *zap.Logger
	Tracer trace.Tracer
}

// NewSimulator creates a new Simulator instance
func NewSimulator(clock domain.Clock, random domain.RandomSource, cfg Config, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		Clock:  clock,
		Random: random,
		Config: cfg,
		Logger: logger,
		Tracer: otel.Tracer(tracerName),
	}
}

// Delay returns how long settlement takes at the given speed
func (s *Simulator) Delay(speed domain.DeliverySpeed) time.Duration {
	if speed == domain.SpeedInstant {
		return s.Config.InstantDelay
	}
	return s.Config.StandardDelay
}

// Settle implements domain.SettlementGateway
func (s *Simulator) Settle(ctx context.Context, view domain.ConfirmationView) error {
	ctx, span := s.Tracer.Start(ctx, "settlement.Settle")
	defer span.End()

	delay := s.Delay(view.Speed)
	span.SetAttributes(
		attribute.String("transfer.speed", string(view.Speed)),
		attribute.Int64("settlement.delay_ms", delay.Milliseconds()),
	)

	select {
	case <-s.Clock.After(delay):
	case <-ctx.Done():
		return fmt.Errorf("settlement interrupted: %w", ctx.Err())
	}

	if s.Config.FailureRate > 0 && s.Random.Float64() < s.Config.FailureRate {
		err := &domain.SettlementError{Reason: "payment network declined the transfer"}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.Logger.Warn("simulated settlement failed",
			zap.String("speed", string(view.Speed)),
			zap.String("total", view.Quote.Total.StringFixed(2)),
		)
		return err
	}

	s.Logger.Debug("simulated settlement completed",
		zap.String("speed", string(view.Speed)),
		zap.Duration("delay", delay),
	)
	return nil
}

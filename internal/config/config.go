// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/simaogato/transferflow-backend/internal/logging"
	"github.com/simaogato/transferflow-backend/internal/usecase/probe"
	"github.com/simaogato/transferflow-backend/internal/usecase/settlement"
	"github.com/simaogato/transferflow-backend/internal/usecase/workflow"
)

const (
	defaultGRPCAddr = ":8080"
	defaultHTTPAddr = ":8081"
	defaultAPIToken = "dev-token"
)

// Config holds everything cmd/server needs to start
type Config struct {
	GRPCAddr    string
	HTTPAddr    string
	APIToken    string
	Environment logging.Environment
	// LogLevel is empty unless set; logging.New then picks one for Environment
	LogLevel string
	// CollectorEndpoint is the OTLP/gRPC trace collector; empty disables export
	CollectorEndpoint string

	Settlement settlement.Config
	Probe      probe.Config
	Breaker    probe.BreakerConfig
	Workflow   workflow.Config
}

// Load reads the environment. Unset variables take their defaults; a set
// but malformed variable is an error naming it.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Config{
		GRPCAddr:    stringOr(getenv, "GRPC_ADDR", defaultGRPCAddr),
		HTTPAddr:    stringOr(getenv, "HTTP_ADDR", defaultHTTPAddr),
		APIToken:    stringOr(getenv, "API_TOKEN", defaultAPIToken),
		Environment: logging.Environment(stringOr(getenv, "APP_ENV", string(logging.EnvironmentProduction))),
		LogLevel:    getenv("LOG_LEVEL"),
		Settlement:  settlement.DefaultConfig(),
		Probe:       probe.DefaultConfig(),
		Breaker:     probe.DefaultBreakerConfig(),
		Workflow:    workflow.DefaultConfig(),
	}
	cfg.CollectorEndpoint = getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.Workflow.TransactionIDPrefix = stringOr(getenv, "TRANSACTION_ID_PREFIX", cfg.Workflow.TransactionIDPrefix)

	var err error
	if cfg.Settlement.InstantDelay, err = durationOr(getenv, "INSTANT_SETTLEMENT_DELAY", cfg.Settlement.InstantDelay); err != nil {
		return Config{}, err
	}
	if cfg.Settlement.StandardDelay, err = durationOr(getenv, "STANDARD_SETTLEMENT_DELAY", cfg.Settlement.StandardDelay); err != nil {
		return Config{}, err
	}
	if cfg.Settlement.FailureRate, err = rateOr(getenv, "SETTLEMENT_FAILURE_RATE", cfg.Settlement.FailureRate); err != nil {
		return Config{}, err
	}
	if cfg.Workflow.StartupProbeDelay, err = durationOr(getenv, "STARTUP_PROBE_DELAY", cfg.Workflow.StartupProbeDelay); err != nil {
		return Config{}, err
	}
	if cfg.Probe.Delay, err = durationOr(getenv, "CAPABILITY_PROBE_DELAY", cfg.Probe.Delay); err != nil {
		return Config{}, err
	}
	if cfg.Probe.InstantSupportRate, err = rateOr(getenv, "INSTANT_SUPPORT_RATE", cfg.Probe.InstantSupportRate); err != nil {
		return Config{}, err
	}
	if cfg.Probe.LookupFailureRate, err = rateOr(getenv, "LOOKUP_FAILURE_RATE", cfg.Probe.LookupFailureRate); err != nil {
		return Config{}, err
	}
	if cfg.Breaker.OpenTimeout, err = durationOr(getenv, "PROBE_BREAKER_TIMEOUT", cfg.Breaker.OpenTimeout); err != nil {
		return Config{}, err
	}
	if raw := getenv("PROBE_BREAKER_FAILURES"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || n == 0 {
			return Config{}, fmt.Errorf("PROBE_BREAKER_FAILURES: must be a positive integer, got %q", raw)
		}
		cfg.Breaker.ConsecutiveFailures = uint32(n)
	}

	return cfg, nil
}

func stringOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative, got %s", key, raw)
	}
	return d, nil
}

func rateOr(getenv func(string) string, key string, fallback float64) (float64, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("%s: must be between 0 and 1, got %s", key, raw)
	}
	return f, nil
}

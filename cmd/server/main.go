package main

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/transferflow-backend/internal/adapter/grpc"
	httpadapter "github.com/simaogato/transferflow-backend/internal/adapter/http"
	"github.com/simaogato/transferflow-backend/internal/config"
	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/simaogato/transferflow-backend/internal/logging"
	"github.com/simaogato/transferflow-backend/internal/telemetry"
	"github.com/simaogato/transferflow-backend/internal/usecase/probe"
	"github.com/simaogato/transferflow-backend/internal/usecase/seeder"
	"github.com/simaogato/transferflow-backend/internal/usecase/settlement"
	"github.com/simaogato/transferflow-backend/internal/usecase/workflow"
)

const (
	serviceName     = "transferflow"
	serviceVersion  = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:       serviceName,
		ServiceVersion:    serviceVersion,
		Environment:       string(cfg.Environment),
		CollectorEndpoint: cfg.CollectorEndpoint,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	// 2. Simulated collaborators
	clock := domain.SystemClock{}
	now := uint64(time.Now().UnixNano())
	random := domain.NewLockedRandom(rand.New(rand.NewPCG(now, now>>1)))

	settler := settlement.NewSimulator(clock, random, cfg.Settlement, logger)
	checker := probe.NewGuardedChecker(
		probe.NewBankProber(clock, random, cfg.Probe, logger),
		cfg.Breaker,
		logger,
	)

	// 3. Workflow session, prefilled with the demo draft
	session := workflow.NewSession(settler, checker, clock, random, cfg.Workflow, logger)
	session.Subscribe(func(e workflow.Event) {
		logger.Debug("session event",
			zap.String("kind", string(e.Kind)),
			zap.String("state", string(e.State)),
		)
	})

	seeded, err := seeder.NewDemoSeeder(session).Seed(ctx)
	if err != nil {
		logger.Fatal("Failed to seed demo draft", zap.Error(err))
	}
	session.StartCapabilityProbe()
	logger.Info("Transfer session ready",
		zap.String("session_id", session.ID.String()),
		zap.Bool("demo_draft", seeded),
	)

	// 4. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(logger),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)
	grpcadapter.RegisterTransferServiceServer(grpcServer, grpcadapter.NewServer(session, logger))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("Failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal("Failed to serve gRPC server", zap.Error(err))
		}
	}()

	// 5. Start HTTP Server for the browser UI
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpadapter.NewRouter(httpadapter.NewHandler(session, logger), cfg.APIToken),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to serve HTTP server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	waitForShutdown(logger, tel, grpcServer, httpServer)
}

// waitForShutdown waits for SIGTERM or SIGINT, gracefully shuts down both
// servers and then flushes pending spans
func waitForShutdown(logger *zap.Logger, tel *telemetry.Telemetry, grpcServer *grpclib.Server, httpServer *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("Shutting down gracefully", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	if err := tel.Shutdown(ctx); err != nil {
		logger.Error("Telemetry shutdown failed", zap.Error(err))
	}
}

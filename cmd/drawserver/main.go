// Package main provides the draw server binary exposing DrawService over
// gRPC, plus Prometheus metrics and a storage readiness probe over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/cory-johannsen/deckdraw/internal/config"
	"github.com/cory-johannsen/deckdraw/internal/draw"
	"github.com/cory-johannsen/deckdraw/internal/draw/dice"
	"github.com/cory-johannsen/deckdraw/internal/drawservice"
	"github.com/cory-johannsen/deckdraw/internal/observability"
	"github.com/cory-johannsen/deckdraw/internal/server"
	"github.com/cory-johannsen/deckdraw/internal/storage"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening store", zap.Error(err))
	}
	defer backend.Close()

	store, err := backend.Load(ctx)
	if err != nil {
		logger.Fatal("loading collections", zap.Error(err))
	}
	logger.Info("collections loaded",
		zap.String("backend", backend.Name()),
		zap.Int("collections", store.Len()),
	)

	engine := draw.NewEngine(dice.NewSource(cfg.Engine.Seed), logger, draw.Config{
		MaxDepth:    cfg.Engine.MaxDepth,
		LabelLength: cfg.Engine.LabelLength,
	})
	metrics := observability.NewMetrics()

	grpcServer := grpc.NewServer()
	drawservice.RegisterDrawServiceServer(grpcServer, drawservice.NewServer(engine, store, backend, metrics, logger))

	lis, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		logger.Fatal("listening", zap.String("addr", cfg.Server.Addr()), zap.Error(err))
	}

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("grpc", server.GRPCService(grpcServer, lis))
	if cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/healthz", server.ReadinessHandler(backend.Health, 2*time.Second, logger))
		lifecycle.Add("metrics", server.HTTPService(cfg.Server.MetricsAddr, mux, 5*time.Second))
	}

	logger.Info("draw server ready",
		zap.String("grpc_addr", cfg.Server.Addr()),
		zap.String("metrics_addr", cfg.Server.MetricsAddr),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("draw server stopped with error", zap.Error(err))
	}
}

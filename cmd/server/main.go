package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/light-bringer/roomrate-service/internal/config"
	"github.com/light-bringer/roomrate-service/internal/pkg/logging"
	"github.com/light-bringer/roomrate-service/internal/services"
	"github.com/light-bringer/roomrate-service/internal/transport/grpc/quote"
	httphandler "github.com/light-bringer/roomrate-service/internal/transport/http"
)

var configPath = flag.String("config", os.Getenv("ROOMRATE_CONFIG"), "Optional YAML config file")

func main() {
	flag.Parse()
	if err := run(); err != nil {
		slog.Error("failed to run server", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.Setup(cfg.App.Env, logging.ParseLevel(cfg.Log.Level))

	logger.Info("starting room rate service",
		"env", cfg.App.Env,
		"store", cfg.Store.Driver,
		"cache", cfg.Cache.Driver,
		"grpc_port", cfg.GRPC.Port,
		"http_addr", cfg.HTTP.Addr,
	)

	// 2. Initialize service dependencies (DI container)
	serviceOpts, err := services.NewServiceOptions(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	defer serviceOpts.Close()

	// 3. gRPC server
	grpcServer := grpc.NewServer()
	quote.RegisterQuoteServer(grpcServer, serviceOpts.QuoteHandler)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+strconv.Itoa(cfg.GRPC.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	// 4. HTTP server
	httpServer := httphandler.New(cfg.HTTP.Addr, httphandler.NewHandler(serviceOpts.Gatherer()))
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTP.Addr)
		if err := httpServer.Start(); err != nil {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	// 5. Graceful shutdown
	serveErr := awaitShutdown(ctx, errCh, logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", "error", err)
	}
	grpcServer.GracefulStop()

	return serveErr
}

// awaitShutdown blocks until ctx is done or a server fails, returning the failure.
func awaitShutdown(ctx context.Context, errCh <-chan error, logger *slog.Logger) error {
	select {
	case <-ctx.Done():
		logger.Info("shutting down gracefully")
		return nil
	case err := <-errCh:
		logger.Error("server stopped", "error", err)
		return err
	}
}

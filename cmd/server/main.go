package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/rl1809/smart-pos/internal/adapter/handler"
	"github.com/rl1809/smart-pos/internal/adapter/printer"
	"github.com/rl1809/smart-pos/internal/adapter/storage"
	"github.com/rl1809/smart-pos/internal/config"
	"github.com/rl1809/smart-pos/internal/core/domain"
	"github.com/rl1809/smart-pos/internal/core/service"
	"github.com/rl1809/smart-pos/internal/port"
)

const printTimeout = 5 * time.Second

func main() {
	bootLogger := config.NewLogger("info")
	cfg, err := config.Load(bootLogger)
	if err != nil {
		bootLogger.Fatalf("failed to load configuration: %v", err)
	}
	logger := config.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to open %s store: %v", cfg.StoreBackend, err)
	}

	// Initialize services
	ledger := service.NewLedger(store, logger)
	session := service.NewSessionManager(store, logger)
	pages := service.NewPages(ledger, logger)
	till := service.NewTill(ledger, session, logger, cfg.ReceiptQueue)

	// Start receipt workers
	receiptPrinter := printer.NewLogPrinter(logger)
	var wg sync.WaitGroup
	for i := 0; i < cfg.ReceiptWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(id, till.Receipts(), receiptPrinter, logger)
		}(i)
	}
	logger.Infof("started %d receipt workers", cfg.ReceiptWorkers)

	// Initialize gRPC health server
	grpcServer := grpc.NewServer()
	healthReporter := handler.NewHealthReporter(store, logger)
	healthReporter.Register(grpcServer)
	go healthReporter.Run(ctx, cfg.HealthInterval)

	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}

	go func() {
		logger.Infof("gRPC server listening on %s", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Errorf("gRPC server error: %v", err)
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(ledger, session, pages, till, store, logger)
	httpServer := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: httpHandler.Router(),
	}

	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("HTTP shutdown: %v", err)
	}
	logger.Info("HTTP server stopped")

	healthReporter.Shutdown()
	grpcServer.GracefulStop()
	cancel()
	logger.Info("gRPC server stopped")

	// Close receipt queue and wait for workers to drain it
	till.Close()
	wg.Wait()
	logger.Info("receipt workers stopped")

	closeStore()
	logger.Info("connections closed")
}

func workerLoop(id int, queue <-chan domain.Receipt, p port.ReceiptPrinter, logger *logrus.Logger) {
	for receipt := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), printTimeout)

		if err := p.Print(ctx, receipt); err != nil {
			logger.Errorf("worker %d: failed to print receipt %s: %v", id, receipt.ID, err)
		} else {
			logger.Debugf("worker %d: printed receipt %s", id, receipt.ID)
		}

		cancel()
	}
}

package handler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/smart-pos/internal/port"
)

// StoreServiceName is the health service name that tracks the collection store.
const StoreServiceName = "smartpos.Store"

// HealthReporter publishes store reachability over the standard gRPC health service.
type HealthReporter struct {
	store  port.CollectionStore
	server *health.Server
	log    *logrus.Logger
}

func NewHealthReporter(store port.CollectionStore, logger *logrus.Logger) *HealthReporter {
	if logger == nil {
		logger = logrus.New()
	}
	return &HealthReporter{
		store:  store,
		server: health.NewServer(),
		log:    logger,
	}
}

func (h *HealthReporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Check pings the store once and records the result.
func (h *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(ctx); err != nil {
		h.log.Warnf("store ping failed: %v", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus(StoreServiceName, status)
	h.server.SetServingStatus("", status)
	return status
}

// Run checks the store every interval until ctx is done.
func (h *HealthReporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		h.Check(checkCtx)
		cancel()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Shutdown marks every service NOT_SERVING.
func (h *HealthReporter) Shutdown() {
	h.server.Shutdown()
}

func (h *HealthReporter) Server() healthpb.HealthServer {
	return h.server
}

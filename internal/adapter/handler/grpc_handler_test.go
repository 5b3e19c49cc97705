package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/smart-pos/internal/adapter/storage"
)

type downStore struct {
	*storage.MemoryAdapter
	down bool
}

func (s *downStore) Ping(ctx context.Context) error {
	if s.down {
		return context.DeadlineExceeded
	}
	return s.MemoryAdapter.Ping(ctx)
}

func TestHealthReporter_FollowsStore(t *testing.T) {
	store := &downStore{MemoryAdapter: storage.NewMemoryAdapter()}
	reporter := NewHealthReporter(store, newTestLogger())
	ctx := context.Background()

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, reporter.Check(ctx))
	resp, err := reporter.Server().Check(ctx, &healthpb.HealthCheckRequest{Service: StoreServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	store.down = true
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, reporter.Check(ctx))
	resp, err = reporter.Server().Check(ctx, &healthpb.HealthCheckRequest{Service: StoreServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestHealthReporter_RunStopsWithContext(t *testing.T) {
	reporter := NewHealthReporter(storage.NewMemoryAdapter(), newTestLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		reporter.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		resp, err := reporter.Server().Check(context.Background(), &healthpb.HealthCheckRequest{Service: StoreServiceName})
		return err == nil && resp.Status == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

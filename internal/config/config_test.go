package config

import (
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	logger, _ := test.NewNullLogger()

	cfg, err := Load(logger)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, "spos_", cfg.KeyPrefix)
	assert.Equal(t, ":8080", cfg.HTTPPort)
	assert.Equal(t, 2, cfg.ReceiptWorkers)
	assert.Equal(t, 10*time.Second, cfg.HealthInterval)
}

func TestLoad_FromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE_BACKEND", " Memory ")
	t.Setenv("STORE_KEY_PREFIX", "shop1_")
	t.Setenv("RECEIPT_WORKERS", "4")
	t.Setenv("HEALTH_INTERVAL", "250ms")
	logger, _ := test.NewNullLogger()

	cfg, err := Load(logger)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, "shop1_", cfg.KeyPrefix)
	assert.Equal(t, 4, cfg.ReceiptWorkers)
	assert.Equal(t, 250*time.Millisecond, cfg.HealthInterval)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"backend":  {"STORE_BACKEND": "postgres"},
		"workers":  {"RECEIPT_WORKERS": "0"},
		"queue":    {"RECEIPT_QUEUE_SIZE": "-1"},
		"bad int":  {"REDIS_POOL_SIZE": "many"},
		"duration": {"HEALTH_INTERVAL": "soon"},
		"interval": {"HEALTH_INTERVAL": "0s"},
		"negative": {"HEALTH_INTERVAL": "-5s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range env {
				t.Setenv(k, v)
			}
			logger, _ := test.NewNullLogger()

			_, err := Load(logger)
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("chatty").GetLevel())
	_, ok := NewLogger("info").Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
}

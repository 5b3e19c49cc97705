package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
	BackendMemory = "memory"
)

type Config struct {
	StoreBackend   string        `envconfig:"STORE_BACKEND"      default:"redis"`
	KeyPrefix      string        `envconfig:"STORE_KEY_PREFIX"   default:"spos_"`
	RedisAddr      string        `envconfig:"REDIS_ADDR"         default:"localhost:6379"`
	RedisPoolSize  int           `envconfig:"REDIS_POOL_SIZE"    default:"20"`
	MySQLDSN       string        `envconfig:"MYSQL_DSN"          default:"root:root@tcp(localhost:3306)/smartpos?parseTime=true"`
	HTTPPort       string        `envconfig:"HTTP_PORT"          default:":8080"`
	GRPCPort       string        `envconfig:"GRPC_PORT"          default:":50051"`
	LogLevel       string        `envconfig:"LOG_LEVEL"          default:"info"`
	ReceiptWorkers int           `envconfig:"RECEIPT_WORKERS"    default:"2"`
	ReceiptQueue   int           `envconfig:"RECEIPT_QUEUE_SIZE" default:"100"`
	HealthInterval time.Duration `envconfig:"HEALTH_INTERVAL"    default:"10s"`
}

// Load reads an optional .env file and then the process environment.
func Load(logger *logrus.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warnf("error loading .env file (continuing): %v", err)
	} else if err == nil {
		logger.Info("loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"backend":   cfg.StoreBackend,
		"http_port": cfg.HTTPPort,
		"grpc_port": cfg.GRPCPort,
		"log_level": cfg.LogLevel,
	}).Info("configuration loaded")
	return &cfg, nil
}

func (c *Config) validate() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	switch c.StoreBackend {
	case BackendRedis, BackendMySQL, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.ReceiptWorkers < 1 {
		return fmt.Errorf("RECEIPT_WORKERS must be at least 1, got %d", c.ReceiptWorkers)
	}
	if c.HealthInterval <= 0 {
		return fmt.Errorf("HEALTH_INTERVAL must be positive, got %s", c.HealthInterval)
	}
	if c.ReceiptQueue < 0 {
		return fmt.Errorf("RECEIPT_QUEUE_SIZE must not be negative, got %d", c.ReceiptQueue)
	}
	return nil
}

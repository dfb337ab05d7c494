package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	BackendFile     = "file"
	BackendDynamoDB = "dynamodb"
)

// Config is read from the environment once at startup.
type Config struct {
	RunLocal bool   `env:"RUN_LOCAL" envDefault:"false"`
	Addr     string `env:"ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Env      string `env:"APP_ENV" envDefault:"production"`

	StorageBackend string   `env:"STORAGE_BACKEND" envDefault:"file"`
	StorageDirs    []string `env:"STORAGE_DIRS" envSeparator:","`
	OrdersTable    string   `env:"ORDERS_TABLE" envDefault:"orders"`

	IdempotencyTable string        `env:"IDEMPOTENCY_TABLE"`
	IdempotencyTTL   time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"48h"`

	QueueURL string `env:"ORDERS_QUEUE_URL"`

	SheetsURL     string        `env:"GOOGLE_SHEETS_API_URL"`
	SheetsAPIKey  string        `env:"GOOGLE_SHEETS_API_KEY"`
	SheetsTimeout time.Duration `env:"SHEETS_TIMEOUT" envDefault:"8s"`

	MetricsNamespace string `env:"METRICS_NAMESPACE"`

	AuthSecret    string        `env:"AUTH_SECRET"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	DemoOrders bool `env:"DEMO_ORDERS_ENABLED" envDefault:"true"`
}

// Load parses the environment and checks the values that have a fixed set.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = BackendFile
	}
	switch cfg.StorageBackend {
	case BackendFile, BackendDynamoDB:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	if cfg.StorageBackend == BackendDynamoDB && cfg.OrdersTable == "" {
		return nil, fmt.Errorf("ORDERS_TABLE is required for the dynamodb backend")
	}
	return &cfg, nil
}

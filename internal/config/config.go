// Package config reads the service configuration from the environment.
package config

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	Env      string `envconfig:"APP_ENV" default:"dev"`
	Port     string `envconfig:"APP_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	StorageDriver    string        `envconfig:"STORAGE_DRIVER" default:"file"`
	StoragePath      string        `envconfig:"STORAGE_PATH" default:".storefront"`
	DatabaseURL      string        `envconfig:"DATABASE_URL"`
	StorageNamespace string        `envconfig:"STORAGE_NAMESPACE"`
	StorageTimeout   time.Duration `envconfig:"STORAGE_TIMEOUT" default:"5s"`

	MarketplaceURL     string        `envconfig:"MARKETPLACE_API_URL" default:"http://localhost:3000/api"`
	MarketplaceTimeout time.Duration `envconfig:"MARKETPLACE_TIMEOUT" default:"15s"`
}

// Load reads .env files (when present) and then the process environment. Variables
// already set in the environment win over .env values.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if cfg.StorageNamespace == "" {
		cfg.StorageNamespace = DefaultNamespace()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDev() bool { return c.Env == "dev" }

// Validate checks that the selected storage driver has what it needs.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "memory":
	case "file":
		if c.StoragePath == "" {
			return errors.New("STORAGE_PATH is required for the file driver")
		}
	case "postgres", "mysql":
		if c.DatabaseURL == "" {
			return errors.Errorf("DATABASE_URL is required for the %s driver", c.StorageDriver)
		}
	default:
		return errors.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}

// DefaultNamespace derives a stable per-host namespace so one device keeps reading its
// own rows from a shared database across restarts.
func DefaultNamespace() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(host)).String()
}

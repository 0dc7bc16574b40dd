package infra

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds everything the demo binary needs: logging settings plus
// the sample orders it seeds the book with. The engine itself takes no
// configuration.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`

	Demo struct {
		Orders []DemoOrder `yaml:"orders"`
	} `yaml:"demo"`
}

// DemoOrder is the yaml shape of one sample order.
type DemoOrder struct {
	OrderID    string          `yaml:"order_id"`
	SecurityID string          `yaml:"security_id"`
	Side       string          `yaml:"side"`
	Quantity   int64           `yaml:"quantity"`
	User       string          `yaml:"user"`
	Company    string          `yaml:"company"`
	Price      decimal.Decimal `yaml:"price"`
}

// LoadConfig reads and parses the configuration file.
// Priority: ENV > .env file > yaml values.
func LoadConfig(path string) (*Config, error) {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.Logging.Level)
	}

	for i, o := range c.Demo.Orders {
		if o.OrderID == "" {
			return fmt.Errorf("demo order %d: order id is required", i)
		}
		if o.SecurityID == "" {
			return fmt.Errorf("demo order %d: security id is required", i)
		}
		if o.Side != "BUY" && o.Side != "SELL" {
			return fmt.Errorf("demo order %d: side must be BUY or SELL, got %q", i, o.Side)
		}
		if o.Quantity < 0 {
			return fmt.Errorf("demo order %d: quantity must be non-negative", i)
		}
	}

	return nil
}

// overrideWithEnv applies environment variable overrides when present.
func overrideWithEnv(cfg *Config) {
	if level := os.Getenv("MATCHBOOK_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if dir := os.Getenv("MATCHBOOK_LOG_DIR"); dir != "" {
		cfg.Logging.Dir = dir
	}
}

// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Report  ReportConfig  `yaml:"report"`
	Logging LoggingConfig `yaml:"logging"`
}

type StoreConfig struct {
	Type         string        `yaml:"type" env:"CRYSTALSTATS_STORE"`
	Addr         string        `yaml:"addr" env:"CRYSTALSTATS_ADDR"`
	Password     string        `yaml:"password" env:"CRYSTALSTATS_PASSWORD"`
	DB           int           `yaml:"db" env:"CRYSTALSTATS_DB"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	ScanCount    int           `yaml:"scan_count" env:"CRYSTALSTATS_SCAN_COUNT"`
	// Seed is the append-only file replayed into the memory store.
	Seed string `yaml:"seed" env:"CRYSTALSTATS_SEED"`
}

type ReportConfig struct {
	AverageKeySize int64 `yaml:"average_key_size" env:"CRYSTALSTATS_AVG_KEY_SIZE"`
	// AvailableMemory pins the memory figure; 0 reads it from the host.
	AvailableMemory int64    `yaml:"available_memory" env:"CRYSTALSTATS_AVAILABLE_MEMORY"`
	Summary         bool     `yaml:"summary" env:"CRYSTALSTATS_SUMMARY"`
	Models          []string `yaml:"models" env:"CRYSTALSTATS_MODELS" envSeparator:","`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"CRYSTALSTATS_LOG_LEVEL"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Type:         StoreRedis,
			Addr:         "127.0.0.1:6379",
			DialTimeout:  5 * time.Second,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Report: ReportConfig{
			AverageKeySize: 222,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// LoadConfig layers the YAML file at path (skipped when path is empty) and
// then CRYSTALSTATS_* environment variables over the defaults.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	return config, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Type {
	case StoreRedis:
		if c.Store.Addr == "" {
			errs = append(errs, errors.New("store.addr is required"))
		}
	case StoreMemory:
		if c.Store.DB != 0 {
			errs = append(errs, fmt.Errorf("store.db %d is not available: the memory store has only db 0", c.Store.DB))
		}
	default:
		errs = append(errs, fmt.Errorf("store.type %q is not one of %s, %s", c.Store.Type, StoreRedis, StoreMemory))
	}
	if c.Store.DB < 0 {
		errs = append(errs, fmt.Errorf("store.db must not be negative, got %d", c.Store.DB))
	}
	if c.Store.ScanCount < 0 {
		errs = append(errs, fmt.Errorf("store.scan_count must not be negative, got %d", c.Store.ScanCount))
	}
	if c.Report.AverageKeySize <= 0 {
		errs = append(errs, fmt.Errorf("report.average_key_size must be positive, got %d", c.Report.AverageKeySize))
	}
	if c.Report.AvailableMemory < 0 {
		errs = append(errs, fmt.Errorf("report.available_memory must not be negative, got %d", c.Report.AvailableMemory))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not console or json", c.Logging.Format))
	}

	return errors.Join(errs...)
}

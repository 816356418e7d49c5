package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNegativeCapacity is returned when capacity is negative
	ErrNegativeCapacity = errors.New("capacity must not be negative")

	// ErrNegativeRefillRate is returned when refill rate is negative
	ErrNegativeRefillRate = errors.New("refill rate must not be negative")
)

// Defaults match the original service's startup parameters.
const (
	DefaultCapacity   = 5
	DefaultRefillRate = 0.5
	DefaultListenAddr = ":8000"
)

// Config holds the service configuration.
type Config struct {
	// Capacity is the token bucket's burst ceiling
	Capacity int64 `yaml:"capacity"`

	// RefillRate is the number of tokens added per second
	RefillRate float64 `yaml:"refill_rate"`

	// ListenAddr is the HTTP listen address
	ListenAddr string `yaml:"listen_addr,omitempty"`
}

// Default returns a Config with the default values.
func Default() Config {
	return Config{
		Capacity:   DefaultCapacity,
		RefillRate: DefaultRefillRate,
		ListenAddr: DefaultListenAddr,
	}
}

// LoadFromFile loads configuration from a YAML file.
// Fields absent from the file keep their default values.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: failed to read config file: %v", ErrInvalidConfig, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: failed to parse YAML: %v", ErrInvalidConfig, err)
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
// Zero values pass: capacity 0 admits nothing and rate 0 never refills,
// both documented degenerate configurations rather than errors.
func (c Config) Validate() error {
	if c.Capacity < 0 {
		return ErrNegativeCapacity
	}
	if c.RefillRate < 0 {
		return ErrNegativeRefillRate
	}
	return nil
}

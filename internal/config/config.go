package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	HTTP     HTTPConfig     `yaml:"http"`

	// Timezone decides when the service day rolls over; queue semantics
	// depend entirely on this partitioning. Empty means server local time.
	Timezone string `yaml:"timezone" env:"SERVICE_TIMEZONE"`

	// RequestTimeoutSec bounds every store operation reached from a
	// request; past it the caller sees a transient failure.
	RequestTimeoutSec int `yaml:"request_timeout_sec" env:"REQUEST_TIMEOUT_SEC"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASS"`
	Database string `yaml:"database" env:"DB_NAME"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host" env:"RABBITMQ_HOST"`
	Port     int    `yaml:"port" env:"RABBITMQ_PORT"`
	User     string `yaml:"user" env:"RABBITMQ_USER"`
	Password string `yaml:"password" env:"RABBITMQ_PASS"`
}

type HTTPConfig struct {
	Port        int      `yaml:"port" env:"PORT"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
}

// Load reads the YAML config file, then applies environment overrides on
// top. A missing file is not an error; env vars alone can configure the
// service.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host: "localhost",
			Port: 5432,
		},
		RabbitMQ: RabbitMQConfig{
			Host: "localhost",
			Port: 5672,
			User: "guest",
		},
		HTTP: HTTPConfig{
			Port:        3000,
			CORSOrigins: []string{"http://localhost:5173"},
		},
		RequestTimeoutSec: 5,
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RequestTimeout returns the bounded per-request store timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

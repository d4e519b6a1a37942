package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		Secret               string `yaml:"secret"`
		TokenLifetimeSeconds int64  `yaml:"token_lifetime_seconds"`
		BcryptCost           int    `yaml:"bcrypt_cost"`
	} `yaml:"auth"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// TokenLifetime returns the configured token lifetime as a duration. A zero
// or negative value is passed through unchanged: it means every issued token
// is already expired, which the test suite relies on.
func (c *Config) TokenLifetime() time.Duration {
	return time.Duration(c.Auth.TokenLifetimeSeconds) * time.Second
}

// LoadConfig reads configuration from the specified YAML file. DATABASE_URL
// and AUTH_SECRET environment variables override the file values when set.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.Database.URL = url
	}
	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		config.Auth.Secret = secret
	}

	if config.Auth.Secret == "" {
		return nil, fmt.Errorf("auth secret must not be empty")
	}

	return config, nil
}

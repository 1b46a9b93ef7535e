package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// AuthConfig turns on JWT verification of API requests when JwksURL is set.
type AuthConfig struct {
	JwksURL         string        `env:"JWKS_URL"`
	RefreshInterval time.Duration `env:"JWKS_REFRESH_INTERVAL" envDefault:"1h"`
	Issuer          string        `env:"JWT_ISSUER"`
	Audience        string        `env:"JWT_AUDIENCE"`
}

func (c *AuthConfig) Enabled() bool {
	return c != nil && c.JwksURL != ""
}

func GetAuthConfig() (*AuthConfig, error) {
	var cfg AuthConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse auth config: %w", err)
	}
	return &cfg, nil
}

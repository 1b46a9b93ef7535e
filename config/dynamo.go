package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type DynamoConfig struct {
	TableName  string `env:"DYNAMO_TABLE_NAME"`
	TtlMinutes int    `env:"DYNAMO_TTL_MINUTES" envDefault:"10080"`
}

func (c *DynamoConfig) Enabled() bool {
	return c != nil && c.TableName != ""
}

func GetDynamoConfig() (*DynamoConfig, error) {
	var cfg DynamoConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse dynamo config: %w", err)
	}
	if cfg.TtlMinutes <= 0 {
		return nil, fmt.Errorf("DYNAMO_TTL_MINUTES must be positive, got %d", cfg.TtlMinutes)
	}
	return &cfg, nil
}

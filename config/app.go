package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	WorkDir        string `env:"WORK_DIR" envDefault:"/tmp/explainers"`
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":8080"`
	WorkerPoolSize int    `env:"WORKER_POOL_SIZE" envDefault:"16"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
}

func GetAppConfig() (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse app config: %w", err)
	}
	if cfg.WorkDir == "" {
		return nil, fmt.Errorf("WORK_DIR must not be empty")
	}
	if cfg.WorkerPoolSize < 2 {
		return nil, fmt.Errorf("WORKER_POOL_SIZE must be at least 2, got %d", cfg.WorkerPoolSize)
	}
	return &cfg, nil
}

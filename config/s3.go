package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// S3Config enables archiving of final videos when BucketName is set.
type S3Config struct {
	BucketName string `env:"BUCKET_NAME"`
	Region     string `env:"REGION"`
}

func (c *S3Config) Enabled() bool {
	return c != nil && c.BucketName != ""
}

func GetS3Config() (*S3Config, error) {
	var cfg S3Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse s3 config: %w", err)
	}
	if cfg.BucketName != "" && cfg.Region == "" {
		return nil, fmt.Errorf("REGION must be set when BUCKET_NAME is set")
	}
	return &cfg, nil
}

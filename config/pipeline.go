package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// PipelineConfig tunes the orchestrator. CharBudget bounds the text prefix
// used for body narration, counted in characters. ReleaseArchived drops the
// local job directory once the final video is archived.
type PipelineConfig struct {
	MaxAttempts     int           `env:"PIPELINE_MAX_ATTEMPTS" envDefault:"1"`
	CharBudget      int           `env:"STORYBOARD_CHAR_BUDGET" envDefault:"500"`
	IntroFormat     string        `env:"STORYBOARD_INTRO_FORMAT" envDefault:"%s explained simply."`
	BodyTitle       string        `env:"STORYBOARD_BODY_TITLE" envDefault:"Explanation"`
	ReleaseArchived bool          `env:"ARCHIVE_RELEASE_LOCAL" envDefault:"false"`
	JobRetention    time.Duration `env:"JOB_RETENTION" envDefault:"24h"`
}

func GetPipelineConfig() (*PipelineConfig, error) {
	var cfg PipelineConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline config: %w", err)
	}
	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("PIPELINE_MAX_ATTEMPTS must be at least 1, got %d", cfg.MaxAttempts)
	}
	if cfg.CharBudget < 0 {
		return nil, fmt.Errorf("STORYBOARD_CHAR_BUDGET must not be negative, got %d", cfg.CharBudget)
	}
	if strings.Count(cfg.IntroFormat, "%s") != 1 {
		return nil, fmt.Errorf("STORYBOARD_INTRO_FORMAT must contain exactly one %%s verb")
	}
	if cfg.JobRetention <= 0 {
		return nil, fmt.Errorf("JOB_RETENTION must be positive, got %s", cfg.JobRetention)
	}
	return &cfg, nil
}

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type ElevenLabsConfig struct {
	ApiUrl          string  `env:"ELEVEN_LABS_API_URL,required"`
	ApiKey          string  `env:"ELEVEN_LABS_API_KEY,required"`
	ModelId         string  `env:"ELEVEN_LABS_MODEL_ID,required"`
	VoiceId         string  `env:"ELEVEN_LABS_VOICE_ID,required"`
	Stability       float64 `env:"ELEVEN_LABS_STABILITY" envDefault:"0.5"`
	SimilarityBoost float64 `env:"ELEVEN_LABS_SIMILARITY_BOOST" envDefault:"0.75"`
}

func GetElevenLabsConfig() (*ElevenLabsConfig, error) {
	var cfg ElevenLabsConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse eleven labs config: %w", err)
	}
	if cfg.Stability < 0 || cfg.Stability > 1 {
		return nil, fmt.Errorf("ELEVEN_LABS_STABILITY must be within [0, 1], got %v", cfg.Stability)
	}
	if cfg.SimilarityBoost < 0 || cfg.SimilarityBoost > 1 {
		return nil, fmt.Errorf("ELEVEN_LABS_SIMILARITY_BOOST must be within [0, 1], got %v", cfg.SimilarityBoost)
	}
	return &cfg, nil
}

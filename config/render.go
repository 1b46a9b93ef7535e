package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// RenderConfig points at the animation engine. The binary is invoked as
// `<binary> <args...> --scene <scene.json> --output <video.mp4>`.
type RenderConfig struct {
	Binary string   `env:"RENDER_BINARY" envDefault:"explainer-render"`
	Args   []string `env:"RENDER_ARGS" envSeparator:" "`
}

type MediaConfig struct {
	FFmpegBinary  string `env:"FFMPEG_BINARY" envDefault:"ffmpeg"`
	FFprobeBinary string `env:"FFPROBE_BINARY" envDefault:"ffprobe"`
}

func GetRenderConfig() (*RenderConfig, error) {
	var cfg RenderConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse render config: %w", err)
	}
	return &cfg, nil
}

func GetMediaConfig() (*MediaConfig, error) {
	var cfg MediaConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse media config: %w", err)
	}
	return &cfg, nil
}

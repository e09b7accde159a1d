package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Image   ImageConfig   `yaml:"image"`
	Video   VideoConfig   `yaml:"video"`
	Compose ComposeConfig `yaml:"compose"`
	Paths   PathsConfig   `yaml:"paths"`
}

type ImageConfig struct {
	Model       string `yaml:"model"`
	Resolution  string `yaml:"resolution"`   // 2K | 4K
	AspectRatio string `yaml:"aspect_ratio"` // fixed 16:9 for slides
}

type VideoConfig struct {
	Model           string `yaml:"model"`
	Duration        string `yaml:"duration"` // "5" | "10"
	Mode            string `yaml:"mode"`     // std | pro
	MaxConcurrent   int    `yaml:"max_concurrent"`
	PollIntervalSec int    `yaml:"poll_interval_sec"`
	TimeoutSec      int    `yaml:"timeout_sec"`
}

type ComposeConfig struct {
	Resolution           string `yaml:"resolution"` // WxH
	FPS                  int    `yaml:"fps"`
	SlideDurationSec     int    `yaml:"slide_duration_sec"`
	FFmpegPath           string `yaml:"ffmpeg_path"`
	FFmpegTimeoutSec     int    `yaml:"ffmpeg_timeout_sec"`
	MaxFailedTransitions int    `yaml:"max_failed_transitions"` // -1 = compose no matter how many failed
}

type PathsConfig struct {
	OutputBase string `yaml:"output_base"`
	Templates  string `yaml:"templates"`
}

// Default returns the configuration used when no config.yaml is present.
// Values mirror the provider defaults (Kling concurrency ceiling of 3,
// 5s poll, 300s job timeout).
func Default() *Config {
	return &Config{
		Image: ImageConfig{
			Model:       "gemini-3-pro-image-preview",
			Resolution:  "2K",
			AspectRatio: "16:9",
		},
		Video: VideoConfig{
			Model:           "kling-v2-6",
			Duration:        "5",
			Mode:            "pro",
			MaxConcurrent:   3,
			PollIntervalSec: 5,
			TimeoutSec:      300,
		},
		Compose: ComposeConfig{
			Resolution:           "1920x1080",
			FPS:                  24,
			SlideDurationSec:     5,
			FFmpegPath:           "ffmpeg",
			FFmpegTimeoutSec:     300,
			MaxFailedTransitions: -1,
		},
		Paths: PathsConfig{
			OutputBase: "outputs",
			Templates:  "templates",
		},
	}
}

// Load reads a yaml config file over the defaults. A missing file is not an
// error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

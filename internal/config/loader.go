package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if SURFGUARD_CONFIG is set
//  3. env (prefix SURFGUARD_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SURFGUARD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SURFGUARD_ADDR, SURFGUARD_MIN_FACES_FOR_ALERT, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("SURFGUARD_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "surfguard_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MinFacesForAlert < 1:
		return fmt.Errorf("%w: min_faces_for_alert must be at least 1", ErrInvalidConfig)
	case c.FrameSkip < 1:
		return fmt.Errorf("%w: frame_skip must be at least 1", ErrInvalidConfig)
	case c.FaceConfidence <= 0 || c.FaceConfidence > 1:
		return fmt.Errorf("%w: face_confidence must be in (0,1]", ErrInvalidConfig)
	case c.IoUThreshold <= 0 || c.IoUThreshold >= 1:
		return fmt.Errorf("%w: iou_threshold must be in (0,1)", ErrInvalidConfig)
	case c.BlurOpacity < 0 || c.BlurOpacity > 1:
		return fmt.Errorf("%w: blur_opacity must be in [0,1]", ErrInvalidConfig)
	}
	return nil
}

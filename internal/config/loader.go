package config

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/batsim/internal/domain/scoring"
)

const (
	envPrefix = "BATSIM_"
	envFile   = "BATSIM_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BATSIM_CONFIG is set
//  3. env (prefix BATSIM_)
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(envFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// BATSIM_QUEUE_SIZE -> queue_size. Keys stay flat so underscores match
	// the struct tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path itself is not a setting.
	k.Delete("config")

	// Decode onto defaults. Curves start empty so a shorter list in the file
	// is not merged into the default points.
	cfg := New()
	cfg.Model.HRCurve = nil
	cfg.Model.BABIPCurve = nil
	cfg.Model.BBCurve = nil
	cfg.Model.KEyeCurve = nil
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrLoadConfig, err)
	}
	cfg.Model.fillCurves()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if c.Addr == "" {
		return invalid("addr must not be empty")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return invalid("log_format %q must be text or json", c.LogFormat)
	}

	positive := []struct {
		name string
		v    int
	}{
		{"worker_count", c.WorkerCount},
		{"queue_size", c.QueueSize},
		{"season_pa", c.SeasonPA},
		{"top_n", c.TopN},
		{"stage_one_iterations", c.StageOneIterations},
		{"stage_one_seasons", c.StageOneSeasons},
		{"stage_two_seasons", c.StageTwoSeasons},
		{"final_seasons", c.FinalSeasons},
		{"sweep_max_seasons", c.SweepMaxSeasons},
		{"calibrate_burst", c.CalibrateBurst},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return invalid("%s must be positive, got %d", p.name, p.v)
		}
	}
	if c.StageOneIterations > c.QueueSize {
		return invalid("stage_one_iterations %d exceeds queue_size %d", c.StageOneIterations, c.QueueSize)
	}
	if c.CalibrateRatePerSec <= 0 || math.IsNaN(c.CalibrateRatePerSec) {
		return invalid("calibrate_rate_per_sec must be positive")
	}
	if c.SearchDelta < 0 || math.IsNaN(c.SearchDelta) {
		return invalid("search_delta must not be negative")
	}
	if c.HBPDefault < 0 || c.HBPDefault > 1 || math.IsNaN(c.HBPDefault) {
		return invalid("hbp_default %g outside [0,1]", c.HBPDefault)
	}
	if c.StageOnePenalty < 0 || c.StageTwoPenalty < 0 {
		return invalid("stage penalties must not be negative")
	}
	if err := scoring.ValidateWeights(c.StageOneWeights); err != nil {
		return fmt.Errorf("%w: stage_one_weights: %w", ErrInvalidConfig, err)
	}
	if err := scoring.ValidateWeights(c.StageTwoWeights); err != nil {
		return fmt.Errorf("%w: stage_two_weights: %w", ErrInvalidConfig, err)
	}
	return c.Model.validate(c.HBPDefault)
}

func (m ModelConfig) validate(hbp float64) error {
	bounds := []struct {
		name     string
		min, max float64
	}{
		{"model.babip", m.BABIP.Min, m.BABIP.Max},
		{"model.bb", m.BB.Min, m.BB.Max},
		{"model.k", m.K.Min, m.K.Max},
		{"model.double_share", m.DoubleShare.Min, m.DoubleShare.Max},
	}
	for _, b := range bounds {
		if b.min > b.max {
			return fmt.Errorf("%w: %s min %g > max %g", ErrInvalidConfig, b.name, b.min, b.max)
		}
	}
	if m.HRMax <= 0 {
		return fmt.Errorf("%w: model.hr_max must be positive", ErrInvalidConfig)
	}
	if m.KHitWeight < 0 || m.KHitWeight > 1 {
		return fmt.Errorf("%w: model.k_hit_weight %g outside [0,1]", ErrInvalidConfig, m.KHitWeight)
	}
	_, err := m.Params(hbp)
	return err
}

// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and BATSIM_* env vars.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"slices"

	"github.com/okian/batsim/internal/domain/curve"
	"github.com/okian/batsim/internal/domain/probability"
	"github.com/okian/batsim/internal/domain/scoring"
	"github.com/okian/batsim/internal/domain/search"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// WorkerCount sets the number of stage-1 workers per calibration.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the stage-1 trial queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the set of in-flight calibration names.
	DedupeSize int `koanf:"dedupe_size"`

	// CalibrateRatePerSec and CalibrateBurst throttle POST /calibrate.
	CalibrateRatePerSec float64 `koanf:"calibrate_rate_per_sec"`
	CalibrateBurst      int     `koanf:"calibrate_burst"`

	// SeasonPA is used when a target does not carry its own PA.
	SeasonPA int `koanf:"season_pa"`

	// HBPDefault is the HBP rate used when none is supplied.
	HBPDefault float64 `koanf:"hbp_default"`

	// SearchDelta is the half-width of the search box around the anchor.
	SearchDelta float64 `koanf:"search_delta"`

	// Seed drives every random stream of a calibration.
	Seed uint64 `koanf:"seed"`

	// AtBatSeed fixes the single at-bat stream. Zero picks one per process.
	AtBatSeed uint64 `koanf:"at_bat_seed"`

	// TopN is the number of stage-1 candidates kept for stage 2.
	TopN int `koanf:"top_n"`

	StageOneIterations int                `koanf:"stage_one_iterations"`
	StageOneSeasons    int                `koanf:"stage_one_seasons"`
	StageOneWeights    map[string]float64 `koanf:"stage_one_weights"`
	StageOnePenalty    float64            `koanf:"stage_one_penalty"`

	StageTwoSeasons int                `koanf:"stage_two_seasons"`
	StageTwoWeights map[string]float64 `koanf:"stage_two_weights"`
	StageTwoPenalty float64            `koanf:"stage_two_penalty"`

	// FinalSeasons is the length of the confirmation run after a calibration.
	FinalSeasons int `koanf:"final_seasons"`

	// SweepMaxSeasons caps GET /sweep?seasons.
	SweepMaxSeasons int `koanf:"sweep_max_seasons"`

	// Model holds the probability model tunables.
	Model ModelConfig `koanf:"model"`
}

// ModelConfig mirrors probability.Params in a loadable shape.
type ModelConfig struct {
	HRCurve    []curve.Point `koanf:"hr_curve"`
	BABIPCurve []curve.Point `koanf:"babip_curve"`
	BBCurve    []curve.Point `koanf:"bb_curve"`
	KEyeCurve  []curve.Point `koanf:"k_eye_curve"`

	HRMax float64            `koanf:"hr_max"`
	BABIP probability.Bounds `koanf:"babip"`
	BB    probability.Bounds `koanf:"bb"`
	K     probability.Bounds `koanf:"k"`
	KMid  float64            `koanf:"k_mid"`

	KHitWeight float64        `koanf:"k_hit_weight"`
	KHit       curve.Modifier `koanf:"k_hit"`

	HREye curve.Modifier `koanf:"hr_eye"`
	HRHit curve.Modifier `koanf:"hr_hit"`

	DoubleShareMid float64            `koanf:"double_share_mid"`
	DoubleShare    probability.Bounds `koanf:"double_share"`
	XBHPow         curve.Modifier     `koanf:"xbh_pow"`
	XBHHit         curve.Modifier     `koanf:"xbh_hit"`
	XBHPowWeight   float64            `koanf:"xbh_pow_weight"`
	XBHHitWeight   float64            `koanf:"xbh_hit_weight"`
}

// New creates a Config with production defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "json",
		Addr:                ":9080",
		WorkerCount:         runtime.NumCPU(),
		QueueSize:           10_000,
		DedupeSize:          1024,
		CalibrateRatePerSec: 2,
		CalibrateBurst:      4,
		SeasonPA:            600,
		HBPDefault:          probability.LeagueHBPRate,
		SearchDelta:         30,
		Seed:                1,
		TopN:                100,

		StageOneIterations: 1500,
		StageOneSeasons:    15,
		StageOneWeights: map[string]float64{
			scoring.KeyBA:  1.5,
			scoring.KeyOBP: 1.8,
			scoring.KeySLG: 1.5,
			scoring.KeyHR:  2.0,
			scoring.KeyOPS: 1.0,
			scoring.KeyBB:  0.2,
			scoring.KeyK:   0.2,
		},
		StageOnePenalty: 0.01,

		StageTwoSeasons: 40,
		StageTwoWeights: map[string]float64{
			scoring.KeyBA:  1.5,
			scoring.KeyOBP: 1.8,
			scoring.KeySLG: 1.5,
			scoring.KeyHR:  2.0,
			scoring.KeyBB:  0.8,
			scoring.KeyK:   0.8,
		},
		StageTwoPenalty: 0.075,

		FinalSeasons:    200,
		SweepMaxSeasons: 500,

		Model: DefaultModel(),
	}
}

// DefaultModel returns the loadable form of probability.DefaultParams.
func DefaultModel() ModelConfig {
	p := probability.DefaultParams()
	m := ModelConfig{
		HRMax:          p.HRMax,
		BABIP:          p.BABIP,
		BB:             p.BB,
		K:              p.K,
		KMid:           p.KMid,
		KHitWeight:     p.KHitWeight,
		KHit:           p.KHit,
		HREye:          p.HREye,
		HRHit:          p.HRHit,
		DoubleShareMid: p.DoubleShareMid,
		DoubleShare:    p.DoubleShare,
		XBHPow:         p.XBHPow,
		XBHHit:         p.XBHHit,
		XBHPowWeight:   p.XBHPowWeight,
		XBHHitWeight:   p.XBHHitWeight,
	}
	m.fillCurves()
	return m
}

// fillCurves sets every empty curve to a private copy of its default.
func (m *ModelConfig) fillCurves() {
	if len(m.HRCurve) == 0 {
		m.HRCurve = slices.Clone(probability.DefaultHRPoints)
	}
	if len(m.BABIPCurve) == 0 {
		m.BABIPCurve = slices.Clone(probability.DefaultBABIPPoints)
	}
	if len(m.BBCurve) == 0 {
		m.BBCurve = slices.Clone(probability.DefaultBBPoints)
	}
	if len(m.KEyeCurve) == 0 {
		m.KEyeCurve = slices.Clone(probability.DefaultKEyePoints)
	}
}

// Params builds probability model parameters. HBPDefault is taken from hbp.
func (m ModelConfig) Params(hbp float64) (probability.Params, error) {
	curves := []struct {
		name   string
		points []curve.Point
		dst    *curve.SCurve
	}{
		{name: "hr_curve", points: m.HRCurve},
		{name: "babip_curve", points: m.BABIPCurve},
		{name: "bb_curve", points: m.BBCurve},
		{name: "k_eye_curve", points: m.KEyeCurve},
	}
	p := probability.Params{
		HRMax:          m.HRMax,
		BABIP:          m.BABIP,
		BB:             m.BB,
		K:              m.K,
		KMid:           m.KMid,
		KHitWeight:     m.KHitWeight,
		KHit:           m.KHit,
		HREye:          m.HREye,
		HRHit:          m.HRHit,
		DoubleShareMid: m.DoubleShareMid,
		DoubleShare:    m.DoubleShare,
		XBHPow:         m.XBHPow,
		XBHHit:         m.XBHHit,
		XBHPowWeight:   m.XBHPowWeight,
		XBHHitWeight:   m.XBHHitWeight,
		HBPDefault:     hbp,
	}
	curves[0].dst = &p.HRCurve
	curves[1].dst = &p.BABIPCurve
	curves[2].dst = &p.BBCurve
	curves[3].dst = &p.KEyeCurve

	for _, c := range curves {
		sc, err := curve.New(c.points...)
		if err != nil {
			return probability.Params{}, fmt.Errorf("model.%s: %w: %w", c.name, ErrInvalidConfig, err)
		}
		*c.dst = sc
	}
	return p, nil
}

// Search returns the calibration search configuration.
func (c *Config) Search() search.Config {
	return search.Config{
		StageOne: search.Stage{
			Iterations: c.StageOneIterations,
			Seasons:    c.StageOneSeasons,
			Weights:    c.StageOneWeights,
			Penalty:    c.StageOnePenalty,
		},
		StageTwo: search.Stage{
			Seasons: c.StageTwoSeasons,
			Weights: c.StageTwoWeights,
			Penalty: c.StageTwoPenalty,
		},
		TopN:    c.TopN,
		Workers: c.WorkerCount,
		Seed:    c.Seed,
	}
}

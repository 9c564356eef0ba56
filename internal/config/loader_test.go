package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/batsim/internal/config"
	"github.com/okian/batsim/internal/domain/probability"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StageOneIterations, convey.ShouldEqual, 1500)
				convey.So(cfg.Model.HRCurve, convey.ShouldResemble, probability.DefaultHRPoints)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("BATSIM_ADDR", ":8080")
			_ = os.Setenv("BATSIM_WORKER_COUNT", "16")
			_ = os.Setenv("BATSIM_SEED", "42")
			_ = os.Setenv("BATSIM_SEARCH_DELTA", "12.5")
			_ = os.Setenv("BATSIM_LOG_FORMAT", "text")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.Seed, convey.ShouldEqual, uint64(42))
				convey.So(cfg.SearchDelta, convey.ShouldEqual, 12.5)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
top_n: 50
stage_one_iterations: 400
stage_two_weights:
  OPS: 0.5
  BB: 0
model:
  hr_max: 0.15
  k:
    min: 0.05
    max: 0.40
  hr_curve:
    - {x: 0, y: 0.001}
    - {x: 150, y: 0.09}
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("BATSIM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.TopN, convey.ShouldEqual, 50)
				convey.So(cfg.StageOneIterations, convey.ShouldEqual, 400)
				convey.So(cfg.Model.HRMax, convey.ShouldEqual, 0.15)
				convey.So(cfg.Model.K.Min, convey.ShouldEqual, 0.05)
				convey.So(cfg.Model.K.Max, convey.ShouldEqual, 0.40)
			})

			convey.Convey("Then a shorter curve replaces the default", func() {
				convey.So(cfg.Model.HRCurve, convey.ShouldHaveLength, 2)
				convey.So(cfg.Model.HRCurve[1].Y, convey.ShouldEqual, 0.09)
				convey.So(cfg.Model.BBCurve, convey.ShouldResemble, probability.DefaultBBPoints)
			})

			convey.Convey("Then weight maps merge with the defaults", func() {
				convey.So(cfg.StageTwoWeights["OPS"], convey.ShouldEqual, 0.5)
				convey.So(cfg.StageTwoWeights["BB"], convey.ShouldEqual, 0)
				convey.So(cfg.StageTwoWeights["HR"], convey.ShouldEqual, 2.0)
			})

			convey.Convey("Then package defaults are untouched", func() {
				convey.So(probability.DefaultHRPoints, convey.ShouldHaveLength, 11)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
worker_count: 24
top_n: 60
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BATSIM_CONFIG", tmpFile)
			_ = os.Setenv("BATSIM_ADDR", ":8080")
			_ = os.Setenv("BATSIM_WORKER_COUNT", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")  // env
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32) // env
				convey.So(cfg.TopN, convey.ShouldEqual, 60)        // file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BATSIM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the YAML file repeats a key", func() {
			tmpFile := createTempConfigFile("top_n: 10\ntop_n: 20\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BATSIM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then the parser rejects it", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a missing file", func() {
			_ = os.Setenv("BATSIM_CONFIG", "/nonexistent/batsim.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("BATSIM_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("BATSIM_TOP_N", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When iterations exceed the queue", func() {
			_ = os.Setenv("BATSIM_QUEUE_SIZE", "100")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "batsim-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = tmpFile.Close() }()

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}

func clearConfigEnvVars() {
	for _, name := range []string{
		"BATSIM_CONFIG",
		"BATSIM_ADDR",
		"BATSIM_WORKER_COUNT",
		"BATSIM_QUEUE_SIZE",
		"BATSIM_SEED",
		"BATSIM_SEARCH_DELTA",
		"BATSIM_LOG_FORMAT",
		"BATSIM_TOP_N",
	} {
		_ = os.Unsetenv(name)
	}
}

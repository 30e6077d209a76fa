package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/edithlab/growthboard/internal/config"
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
				convey.So(cfg.DatabaseDSN, convey.ShouldEqual, "growthboard.db")
				convey.So(cfg.ContentAPIBaseURL, convey.ShouldEqual, "https://api.socialdata.tools")
				convey.So(cfg.FetchTimeoutMS, convey.ShouldEqual, 10_000)
				convey.So(cfg.CodeAttempts, convey.ShouldEqual, 5)
				convey.So(cfg.TopRankedLimit, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GROWTHBOARD_ADDR", ":8080")
			_ = os.Setenv("GROWTHBOARD_DATABASE_DSN", ":memory:")
			_ = os.Setenv("GROWTHBOARD_CONTENT_API_TOKEN", "secret")
			_ = os.Setenv("GROWTHBOARD_CODE_ATTEMPTS", "9")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DatabaseDSN, convey.ShouldEqual, ":memory:")
				convey.So(cfg.ContentAPIToken, convey.ShouldEqual, "secret")
				convey.So(cfg.CodeAttempts, convey.ShouldEqual, 9)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
database_dsn: "board.db"
fetch_timeout_ms: 5000
top_ranked_limit: 10
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GROWTHBOARD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DatabaseDSN, convey.ShouldEqual, "board.db")
				convey.So(cfg.FetchTimeoutMS, convey.ShouldEqual, 5000)
				convey.So(cfg.TopRankedLimit, convey.ShouldEqual, 10)
				convey.So(cfg.CodeAttempts, convey.ShouldEqual, 5) // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
code_attempts: 3
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GROWTHBOARD_CONFIG", tmpFile)
			_ = os.Setenv("GROWTHBOARD_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")   // Overridden by env
				convey.So(cfg.CodeAttempts, convey.ShouldEqual, 3) // From file
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("GROWTHBOARD_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("GROWTHBOARD_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an invalid numeric env var", func() {
			_ = os.Setenv("GROWTHBOARD_CODE_ATTEMPTS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"GROWTHBOARD_CONFIG",
		"GROWTHBOARD_ADDR",
		"GROWTHBOARD_DATABASE_DSN",
		"GROWTHBOARD_CONTENT_API_BASE_URL",
		"GROWTHBOARD_CONTENT_API_TOKEN",
		"GROWTHBOARD_FETCH_TIMEOUT_MS",
		"GROWTHBOARD_CODE_ATTEMPTS",
		"GROWTHBOARD_TOP_RANKED_LIMIT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "growthboard-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}

package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/recall/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"RECALL_CONFIG",
		"RECALL_ADDR",
		"RECALL_AGENT_ADDR",
		"RECALL_ORIGIN",
		"RECALL_DATABASE_DRIVER",
		"RECALL_DATABASE_DSN",
		"RECALL_AUTH_TOKEN",
		"RECALL_STREAK_WINDOW",
		"RECALL_QUEUE_PATH",
		"RECALL_REQUEST_TIMEOUT_MS",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "recall-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp config: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	_ = f.Close()
	return f.Name()
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.AgentAddr, convey.ShouldEqual, ":8090")
				convey.So(cfg.DatabaseDriver, convey.ShouldEqual, "sqlite3")
				convey.So(cfg.StreakWindow, convey.ShouldEqual, 100)
				convey.So(cfg.StaticVersion, convey.ShouldEqual, "static-v1")
				convey.So(cfg.ReconcileIntervalSeconds, convey.ShouldEqual, 60)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			clearConfigEnvVars()
			_ = os.Setenv("RECALL_ADDR", ":7070")
			_ = os.Setenv("RECALL_STREAK_WINDOW", "25")
			_ = os.Setenv("RECALL_DATABASE_DRIVER", "postgres")
			_ = os.Setenv("RECALL_DATABASE_DSN", "postgres://localhost/recall?sslmode=disable")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.StreakWindow, convey.ShouldEqual, 25)
				convey.So(cfg.DatabaseDriver, convey.ShouldEqual, "postgres")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			clearConfigEnvVars()
			yamlContent := `
addr: ":9191"
streak_window: 50
queue_path: "/tmp/recall-queue.json"
static_version: "static-v2"
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("RECALL_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9191")
				convey.So(cfg.StreakWindow, convey.ShouldEqual, 50)
				convey.So(cfg.QueuePath, convey.ShouldEqual, "/tmp/recall-queue.json")
				convey.So(cfg.StaticVersion, convey.ShouldEqual, "static-v2")
			})

			convey.Convey("And env vars override the file", func() {
				_ = os.Setenv("RECALL_ADDR", ":6060")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
			})
		})

		convey.Convey("When the config is invalid", func() {
			clearConfigEnvVars()
			_ = os.Setenv("RECALL_DATABASE_DRIVER", "oracle")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then a validation error is reported", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(config.IsInvalid(err), convey.ShouldBeTrue)
			})
		})
	})
}

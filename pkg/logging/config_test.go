package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tasksync/pkg/logging"
)

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TASKSYNC_LOG_LEVEL", "debug")
	t.Setenv("TASKSYNC_LOG_FORMAT", "json")

	cfg := logging.ConfigFromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
}

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	t.Run("file output with default fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasksync.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "debug",
			Format: "json",
			Output: path,
			Fields: map[string]any{"service": "tasksync", "pid": 7},
		})
		logger.Info().Msg("test message")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		output := string(content)
		assert.Contains(t, output, "test message")
		assert.Contains(t, output, `"service":"tasksync"`)
		assert.Contains(t, output, `"pid":7`)
		assert.Contains(t, output, `"caller"`)
	})

	t.Run("level filtering", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "errors.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "error",
			Format: "json",
			Output: path,
		})
		logger.Info().Msg("info")
		logger.Error().Msg("boom")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(content), `"level":"info"`)
		assert.Contains(t, string(content), "boom")
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(nil)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("level parsing", func(t *testing.T) {
		cases := map[string]zerolog.Level{
			"trace":   zerolog.TraceLevel,
			"DEBUG":   zerolog.DebugLevel,
			"warning": zerolog.WarnLevel,
			"off":     zerolog.Disabled,
			"bogus":   zerolog.InfoLevel,
			"":        zerolog.InfoLevel,
		}
		for in, want := range cases {
			logger := logging.NewLoggerFromConfig(&logging.Config{Level: in, Output: "discard", Format: "json"})
			assert.Equal(t, want, logger.GetLevel(), "level %q", in)
		}
	})
}

func TestConfigure(t *testing.T) {
	original := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(original)
		zerolog.SetGlobalLevel(originalLevel)
	})

	path := filepath.Join(t.TempDir(), "configured.log")
	logging.Configure(&logging.Config{Level: "info", Format: "json", Output: path})
	logging.Info().Str("status", "open").Msg("configured")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"status":"open"`)
}

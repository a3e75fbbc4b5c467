package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env and restore after test
	origEnv := os.Environ()
	t.Cleanup(func() {
		os.Clearenv()
		for _, e := range origEnv {
			for i := 0; i < len(e); i++ {
				if e[i] == '=' {
					os.Setenv(e[:i], e[i+1:])
					break
				}
			}
		}
	})

	t.Run("defaults", func(t *testing.T) {
		os.Clearenv()
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, DeployFile, cfg.DeployMode)
		assert.Equal(t, "single", cfg.GenerationMode)
		assert.Equal(t, "data/rednotebot.db", cfg.DatabasePath)
		assert.Equal(t, "trading", cfg.Catalog)
		assert.Equal(t, "accounts.json", cfg.AccountsFile)
		assert.Equal(t, "Growth", cfg.OutputDir)
		assert.Equal(t, ProviderDeepSeek, cfg.Provider)
		assert.Equal(t, "https://api.deepseek.com", cfg.DeepSeekBaseURL)
		assert.Equal(t, "deepseek-chat", cfg.DeepSeekModel)
		assert.Equal(t, 30*time.Second, cfg.GeneratorTimeout)
		assert.Equal(t, time.Second, cfg.CallSpacing)
		assert.Equal(t, "0 17 * * *", cfg.ScheduleSpec)
		assert.Equal(t, ":5000", cfg.HTTPAddr)
		assert.Equal(t, 20, cfg.RecentLimit)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("memory mode uses in-memory database", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("DEPLOY_MODE", "memory")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":memory:", cfg.DatabasePath)
		assert.False(t, cfg.FileMode())
	})

	t.Run("custom values", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("DATABASE_PATH", "/custom/path.db")
		os.Setenv("GENERATOR_PROVIDER", "anthropic")
		os.Setenv("ANTHROPIC_API_KEY", "sk-test")
		os.Setenv("GENERATION_MODE", "daily")
		os.Setenv("CALL_SPACING", "250ms")
		os.Setenv("RECENT_LIMIT", "50")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "/custom/path.db", cfg.DatabasePath)
		assert.Equal(t, "sk-test", cfg.APIKey())
		assert.Equal(t, "ANTHROPIC_API_KEY", cfg.APIKeyVar())
		assert.Equal(t, "daily", cfg.GenerationMode)
		assert.Equal(t, 250*time.Millisecond, cfg.CallSpacing)
		assert.Equal(t, 50, cfg.RecentLimit)
	})

	t.Run("invalid duration", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("GENERATOR_TIMEOUT", "invalid")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "GENERATOR_TIMEOUT")
	})

	t.Run("invalid integer", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("RECENT_LIMIT", "notanumber")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "RECENT_LIMIT")
	})
}

func validConfig() *Config {
	return &Config{
		DeployMode:     DeployFile,
		GenerationMode: "single",
		DatabasePath:   "test.db",
		AccountsFile:   "accounts.json",
		OutputDir:      "Growth",
		Provider:       ProviderDeepSeek,
		RecentLimit:    20,
		HTTPAddr:       ":5000",
		ScheduleSpec:   "0 17 * * *",
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing database path", func(t *testing.T) {
		cfg := validConfig()
		cfg.DatabasePath = ""
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_PATH")
	})

	t.Run("invalid deploy mode", func(t *testing.T) {
		cfg := validConfig()
		cfg.DeployMode = "cloud"
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "DEPLOY_MODE")
	})

	t.Run("invalid generation mode", func(t *testing.T) {
		cfg := validConfig()
		cfg.GenerationMode = "hourly"
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "GENERATION_MODE")
	})

	t.Run("invalid provider", func(t *testing.T) {
		cfg := validConfig()
		cfg.Provider = "openai"
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "GENERATOR_PROVIDER")
	})

	t.Run("memory mode needs no paths", func(t *testing.T) {
		cfg := validConfig()
		cfg.DeployMode = DeployMemory
		cfg.AccountsFile = ""
		cfg.OutputDir = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestConfig_ValidateForGeneration(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := validConfig()
		cfg.DeepSeekAPIKey = "sk-test"
		assert.NoError(t, cfg.ValidateForGeneration())
	})

	t.Run("missing api key", func(t *testing.T) {
		err := validConfig().ValidateForGeneration()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "DEEPSEEK_API_KEY")
	})

	t.Run("missing anthropic key", func(t *testing.T) {
		cfg := validConfig()
		cfg.Provider = ProviderAnthropic
		cfg.DeepSeekAPIKey = "sk-test"
		err := cfg.ValidateForGeneration()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
	})
}

func TestConfig_ValidateForServe(t *testing.T) {
	t.Run("credential is optional", func(t *testing.T) {
		assert.NoError(t, validConfig().ValidateForServe())
	})

	t.Run("missing schedule", func(t *testing.T) {
		cfg := validConfig()
		cfg.ScheduleSpec = ""
		err := cfg.ValidateForServe()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "SCHEDULE_SPEC")
	})
}

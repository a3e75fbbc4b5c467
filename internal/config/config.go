package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Deployment modes.
const (
	DeployFile   = "file"
	DeployMemory = "memory"
)

// Generator providers.
const (
	ProviderDeepSeek  = "deepseek"
	ProviderAnthropic = "anthropic"
)

// Config holds all application configuration.
type Config struct {
	// Deployment
	DeployMode     string // "file" or "memory" (default: file)
	GenerationMode string // "single" or "daily" (default: single)

	// Database
	DatabasePath string

	// Catalog
	Catalog     string // Built-in catalog name (default: trading)
	CatalogFile string // External catalog YAML, overrides Catalog

	// Storage
	AccountsFile string
	OutputDir    string
	PDFFontPath  string

	// Generator
	Provider         string
	DeepSeekAPIKey   string
	DeepSeekBaseURL  string
	DeepSeekModel    string
	AnthropicAPIKey  string
	AnthropicModel   string
	GeneratorTimeout time.Duration
	CallSpacing      time.Duration

	// Post library (VecLite), disabled when LibraryPath is empty
	LibraryPath   string
	VecLiteConfig string

	// Scheduler
	ScheduleSpec string

	// Dashboard
	HTTPAddr    string
	RecentLimit int

	// Notification settings
	NotifyWebhookURL string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DeployMode:       getEnv("DEPLOY_MODE", DeployFile),
		GenerationMode:   getEnv("GENERATION_MODE", "single"),
		Catalog:          getEnv("CATALOG", "trading"),
		CatalogFile:      getEnv("CATALOG_FILE", ""),
		AccountsFile:     getEnv("ACCOUNTS_FILE", "accounts.json"),
		OutputDir:        getEnv("OUTPUT_DIR", "Growth"),
		PDFFontPath:      getEnv("PDF_FONT_PATH", ""),
		Provider:         getEnv("GENERATOR_PROVIDER", ProviderDeepSeek),
		DeepSeekAPIKey:   getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekBaseURL:  getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
		DeepSeekModel:    getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		LibraryPath:      getEnv("LIBRARY_PATH", ""),
		VecLiteConfig:    getEnv("VECLITE_CONFIG", ""),
		ScheduleSpec:     getEnv("SCHEDULE_SPEC", "0 17 * * *"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":5000"),
		NotifyWebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", ""),
	}

	// The history database lives in process memory unless one is named
	defaultDB := "data/rednotebot.db"
	if cfg.DeployMode == DeployMemory {
		defaultDB = ":memory:"
	}
	cfg.DatabasePath = getEnv("DATABASE_PATH", defaultDB)

	var err error
	cfg.GeneratorTimeout, err = time.ParseDuration(getEnv("GENERATOR_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GENERATOR_TIMEOUT: %w", err)
	}

	cfg.CallSpacing, err = time.ParseDuration(getEnv("CALL_SPACING", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CALL_SPACING: %w", err)
	}

	limit, err := strconv.Atoi(getEnv("RECENT_LIMIT", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECENT_LIMIT: %w", err)
	}
	cfg.RecentLimit = limit

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	switch c.DeployMode {
	case DeployFile:
		if c.AccountsFile == "" {
			return fmt.Errorf("ACCOUNTS_FILE is required in file mode")
		}
		if c.OutputDir == "" {
			return fmt.Errorf("OUTPUT_DIR is required in file mode")
		}
	case DeployMemory:
	default:
		return fmt.Errorf("invalid DEPLOY_MODE: %s (must be 'file' or 'memory')", c.DeployMode)
	}
	switch c.GenerationMode {
	case "single", "daily":
	default:
		return fmt.Errorf("invalid GENERATION_MODE: %s (must be 'single' or 'daily')", c.GenerationMode)
	}
	switch c.Provider {
	case ProviderDeepSeek, ProviderAnthropic:
	default:
		return fmt.Errorf("invalid GENERATOR_PROVIDER: %s (must be 'deepseek' or 'anthropic')", c.Provider)
	}
	if c.RecentLimit <= 0 {
		return fmt.Errorf("RECENT_LIMIT must be positive")
	}
	return nil
}

// ValidateForGeneration checks configuration needed to call the generator.
func (c *Config) ValidateForGeneration() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey() == "" {
		return fmt.Errorf("%s is required for generation", c.APIKeyVar())
	}
	return nil
}

// ValidateForServe checks configuration needed for the dashboard and scheduler.
// A missing credential is reported per request instead.
func (c *Config) ValidateForServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.ScheduleSpec == "" {
		return fmt.Errorf("SCHEDULE_SPEC is required")
	}
	return nil
}

// APIKey returns the credential for the selected provider.
func (c *Config) APIKey() string {
	if c.Provider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.DeepSeekAPIKey
}

// APIKeyVar names the environment variable holding the selected provider's credential.
func (c *Config) APIKeyVar() string {
	if c.Provider == ProviderAnthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "DEEPSEEK_API_KEY"
}

// FileMode reports whether artifacts and assignments are written to disk.
func (c *Config) FileMode() bool {
	return c.DeployMode == DeployFile
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

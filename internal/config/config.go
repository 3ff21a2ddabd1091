package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// AniList
	AniListURL         string
	RequestTimeout     time.Duration
	MinRequestInterval time.Duration // Minimum gap between two outbound requests
	MaxRetries         int           // Retries on HTTP 429
	RetryDelay         time.Duration // Delay step, multiplied by the attempt number
	CacheTTL           time.Duration

	// Browsing
	PageSize int

	// Server
	ServerPort string

	// Scheduler
	WarmupSchedule string
	BackupSchedule string

	// Paths
	ConfigDir     string
	DatabaseFile  string // $CONFIG_DIR/tempus.db
	BackupFile    string // $CONFIG_DIR/backup.json
	BlacklistFile string // $CONFIG_DIR/blacklist.txt

	// Logging
	LogLevel  string
	LogFormat string

	// Tracing
	TracingEnabled bool
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Missing .env is fine
	_ = viper.ReadInConfig()

	viper.SetDefault("ANILIST_URL", "https://graphql.anilist.co")
	viper.SetDefault("ANILIST_TIMEOUT", "30s")
	viper.SetDefault("ANILIST_MIN_INTERVAL", "700ms")
	viper.SetDefault("ANILIST_MAX_RETRIES", 2)
	viper.SetDefault("ANILIST_RETRY_DELAY", "1s")
	viper.SetDefault("ANILIST_CACHE_TTL", "5m")
	viper.SetDefault("PAGE_SIZE", 20)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("WARMUP_SCHEDULE", "*/5 * * * *")
	viper.SetDefault("BACKUP_SCHEDULE", "0 * * * *")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("TRACING_ENABLED", false)

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "tempus")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		AniListURL:         viper.GetString("ANILIST_URL"),
		RequestTimeout:     viper.GetDuration("ANILIST_TIMEOUT"),
		MinRequestInterval: viper.GetDuration("ANILIST_MIN_INTERVAL"),
		MaxRetries:         viper.GetInt("ANILIST_MAX_RETRIES"),
		RetryDelay:         viper.GetDuration("ANILIST_RETRY_DELAY"),
		CacheTTL:           viper.GetDuration("ANILIST_CACHE_TTL"),

		PageSize: viper.GetInt("PAGE_SIZE"),

		ServerPort: viper.GetString("SERVER_PORT"),

		WarmupSchedule: viper.GetString("WARMUP_SCHEDULE"),
		BackupSchedule: viper.GetString("BACKUP_SCHEDULE"),

		ConfigDir:     configDir,
		DatabaseFile:  filepath.Join(configDir, "tempus.db"),
		BackupFile:    filepath.Join(configDir, "backup.json"),
		BlacklistFile: filepath.Join(configDir, "blacklist.txt"),

		LogLevel:  viper.GetString("LOG_LEVEL"),
		LogFormat: viper.GetString("LOG_FORMAT"),

		TracingEnabled: viper.GetBool("TRACING_ENABLED"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the values that would make the client misbehave
func (c *Config) Validate() error {
	if c.AniListURL == "" {
		return fmt.Errorf("ANILIST_URL is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("ANILIST_TIMEOUT must be positive")
	}
	if c.MinRequestInterval < 0 {
		return fmt.Errorf("ANILIST_MIN_INTERVAL must not be negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("ANILIST_MAX_RETRIES must not be negative")
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("ANILIST_RETRY_DELAY must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("ANILIST_CACHE_TTL must be positive")
	}
	if c.PageSize <= 0 || c.PageSize > 50 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 50")
	}
	return nil
}

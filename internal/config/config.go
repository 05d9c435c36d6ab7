package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       App       `mapstructure:"app"`
	Server    Server    `mapstructure:"server"`
	Database  Database  `mapstructure:"database"`
	AI        AI        `mapstructure:"ai"`
	Wikipedia Wikipedia `mapstructure:"wikipedia"`
	Cache     Cache     `mapstructure:"cache"`
	Pipeline  Pipeline  `mapstructure:"pipeline"`
	Logging   Logging   `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     string `mapstructure:"read_timeout"`
	WriteTimeout    string `mapstructure:"write_timeout"`
	RequestTimeout  string `mapstructure:"request_timeout"` // Per-request middleware deadline
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
}

// Database holds Postgres configuration; when the connection string is empty
// the service falls back to the local SQLite store.
type Database struct {
	ConnectionString string `mapstructure:"connection_string"`
}

// AI holds AI gateway configuration
type AI struct {
	Provider string       `mapstructure:"provider"` // "gemini" or "openai"
	Gemini   GeminiConfig `mapstructure:"gemini"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

// Wikipedia holds encyclopedia lookup configuration
type Wikipedia struct {
	BaseURL   string `mapstructure:"base_url"`
	Timeout   string `mapstructure:"timeout"`
	RateLimit string `mapstructure:"rate_limit"` // Fixed inter-call delay
	UserAgent string `mapstructure:"user_agent"`
}

// Cache holds cache configuration
type Cache struct {
	Directory string `mapstructure:"directory"` // SQLite fallback location
	Retention string `mapstructure:"retention"` // Staleness window for generated entries
}

// Pipeline holds fact-generation tuning knobs
type Pipeline struct {
	TargetFacts    int    `mapstructure:"target_facts"`    // Cap on returned facts
	MinFacts       int    `mapstructure:"min_facts"`       // Below this the fallback bank fills in
	FanOut         int    `mapstructure:"fan_out"`         // Concurrent generation requests (1-2)
	MaxValidations int    `mapstructure:"max_validations"` // Cross-check at most this many candidates
	MaxRetries     int    `mapstructure:"max_retries"`     // Retries per gateway call
	RetryBaseDelay string `mapstructure:"retry_base_delay"`
	ValidationGap  string `mapstructure:"validation_gap"` // Delay between cross-check calls
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from .env, config file, and environment variables
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".isthatstilltrue")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = viper.ConfigFileUsed()

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".isthatstilltrue-cache")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "90s")
	viper.SetDefault("server.request_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "10s")

	// AI defaults
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", "25s")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.openai.model", "gpt-4o-mini")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.timeout", "25s")

	// Wikipedia defaults
	viper.SetDefault("wikipedia.base_url", "https://en.wikipedia.org")
	viper.SetDefault("wikipedia.timeout", "10s")
	viper.SetDefault("wikipedia.rate_limit", "300ms")
	viper.SetDefault("wikipedia.user_agent", "isthatstilltrue/1.0")

	// Cache defaults
	viper.SetDefault("cache.directory", ".isthatstilltrue-cache")
	viper.SetDefault("cache.retention", "168h") // 7 days

	// Pipeline defaults
	viper.SetDefault("pipeline.target_facts", 8)
	viper.SetDefault("pipeline.min_facts", 5)
	viper.SetDefault("pipeline.fan_out", 2)
	viper.SetDefault("pipeline.max_validations", 12)
	viper.SetDefault("pipeline.max_retries", 2)
	viper.SetDefault("pipeline.retry_base_delay", "1s")
	viper.SetDefault("pipeline.validation_gap", "300ms")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	// OpenAI API key
	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	// Database connection
	bindEnvKeys("database.connection_string", []string{
		"DATABASE_URL",
		"POSTGRES_URL",
	})

	bindEnvKeys("ai.provider", []string{
		"AI_PROVIDER",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.Cache.Directory != "" {
		config.Cache.Directory = expandPath(config.Cache.Directory)
	}
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}

	durations := map[string]string{
		"server.read_timeout":       config.Server.ReadTimeout,
		"server.write_timeout":      config.Server.WriteTimeout,
		"server.request_timeout":    config.Server.RequestTimeout,
		"server.shutdown_timeout":   config.Server.ShutdownTimeout,
		"ai.gemini.timeout":         config.AI.Gemini.Timeout,
		"ai.openai.timeout":         config.AI.OpenAI.Timeout,
		"wikipedia.timeout":         config.Wikipedia.Timeout,
		"wikipedia.rate_limit":      config.Wikipedia.RateLimit,
		"cache.retention":           config.Cache.Retention,
		"pipeline.retry_base_delay": config.Pipeline.RetryBaseDelay,
		"pipeline.validation_gap":   config.Pipeline.ValidationGap,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	switch config.AI.Provider {
	case "gemini":
		if config.AI.Gemini.APIKey == "" {
			errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
		}
	case "openai":
		if config.AI.OpenAI.APIKey == "" {
			errors = append(errors, "OpenAI API key is required. Set OPENAI_API_KEY environment variable or ai.openai.api_key in config file")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown AI provider: %s. Supported: gemini, openai", config.AI.Provider))
	}

	if config.Pipeline.FanOut < 1 || config.Pipeline.FanOut > 2 {
		errors = append(errors, "pipeline.fan_out must be 1 or 2")
	}
	if config.Pipeline.MinFacts > config.Pipeline.TargetFacts {
		errors = append(errors, "pipeline.min_facts must not exceed pipeline.target_facts")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Duration parses a duration config value, falling back when unset or invalid.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Convenience getters for commonly used configuration values
func GetServer() Server       { return Get().Server }
func GetDatabase() Database   { return Get().Database }
func GetAI() AI               { return Get().AI }
func GetWikipedia() Wikipedia { return Get().Wikipedia }
func GetCache() Cache         { return Get().Cache }
func GetPipeline() Pipeline   { return Get().Pipeline }
func GetLogging() Logging     { return Get().Logging }

func GetCacheDirectory() string { return Get().Cache.Directory }
func IsDebugMode() bool         { return Get().App.Debug }

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}

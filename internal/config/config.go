package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete gcpath configuration
type Config struct {
	UseAssetAPI bool `json:"useAssetApi" mapstructure:"useAssetApi"`

	Organizations []string      `json:"organizations" mapstructure:"organizations"`
	Cache         CacheConfig   `json:"cache" mapstructure:"cache"`
	Logging       LoggingConfig `json:"logging" mapstructure:"logging"`
}

// CacheConfig contains hierarchy cache configuration
type CacheConfig struct {
	Enabled  bool `json:"enabled" mapstructure:"enabled"`
	TtlHours int  `json:"ttlHours" mapstructure:"ttlHours"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		UseAssetAPI:   true,
		Organizations: []string{},
		Cache: CacheConfig{
			Enabled:  true,
			TtlHours: 72,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Dir returns the per-user configuration directory, also home to the
// hierarchy cache.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gcpath"), nil
}

// LoadConfig loads configuration from <dir>/config.json
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("useAssetApi", true)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttlHours", 72)
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <dir>/config.json
func (c *Config) Save(dir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Cache.TtlHours <= 0 {
		return &ConfigError{Field: "cache.ttlHours", Message: "must be positive"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be 'human' or 'json'"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the hostreamly-admin API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Provider ProviderConfig `yaml:"provider"`
	Billing  BillingConfig  `yaml:"billing"`
	Logs     LogsConfig     `yaml:"logs"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis, memory (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// ProviderConfig holds payment provider settings.
type ProviderConfig struct {
	BaseURL           string  `yaml:"base_url"`
	SecretKey         string  `yaml:"secret_key"` // fallback when no credential is stored
	KeyPrefix         string  `yaml:"key_prefix"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	TestRatePerMinute float64 `yaml:"test_rate_per_minute"`
	SuccessURL        string  `yaml:"success_url"`
	CancelURL         string  `yaml:"cancel_url"`
}

// BillingConfig holds default overage pricing.
type BillingConfig struct {
	Currency              string  `yaml:"currency"`
	Locale                string  `yaml:"locale"`
	StoragePricePerGB     float64 `yaml:"storage_price_per_gb"`
	BandwidthPricePerGB   float64 `yaml:"bandwidth_price_per_gb"`
	NotificationThreshold float64 `yaml:"notification_threshold"`
}

// LogsConfig holds system log viewer settings.
type LogsConfig struct {
	SeedSample bool `yaml:"seed_sample"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, expands env vars, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "hostreamly:"
	}
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = "https://api.stripe.com"
	}
	if c.Provider.KeyPrefix == "" {
		c.Provider.KeyPrefix = "sk_"
	}
	if c.Provider.TimeoutSec <= 0 {
		c.Provider.TimeoutSec = 15
	}
	if c.Provider.TestRatePerMinute <= 0 {
		c.Provider.TestRatePerMinute = 6
	}
	if c.Billing.Currency == "" {
		c.Billing.Currency = "usd"
	}
	if c.Billing.Locale == "" {
		c.Billing.Locale = "en-US"
	}
	if c.Billing.StoragePricePerGB == 0 {
		c.Billing.StoragePricePerGB = 0.10
	}
	if c.Billing.BandwidthPricePerGB == 0 {
		c.Billing.BandwidthPricePerGB = 0.05
	}
	if c.Billing.NotificationThreshold == 0 {
		c.Billing.NotificationThreshold = 0.8
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "valkey", "redis":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case "memory":
		// ok
	default:
		return fmt.Errorf("database.driver must be \"valkey\", \"redis\" or \"memory\", got %q", c.Database.Driver)
	}
	if c.Provider.SecretKey != "" && !strings.HasPrefix(c.Provider.SecretKey, c.Provider.KeyPrefix) {
		return fmt.Errorf("provider.secret_key must start with %q", c.Provider.KeyPrefix)
	}
	if c.Billing.StoragePricePerGB < 0 || c.Billing.BandwidthPricePerGB < 0 {
		return fmt.Errorf("billing prices must not be negative")
	}
	if c.Billing.NotificationThreshold <= 0 || c.Billing.NotificationThreshold > 1 {
		return fmt.Errorf("billing.notification_threshold must be in (0, 1], got %v", c.Billing.NotificationThreshold)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

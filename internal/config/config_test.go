package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingValkeyAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing valkey addrs")
	}
}

func TestValidate_MemoryDriverNeedsNoAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "memory"
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "postgres"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	expected := `database.driver must be "valkey", "redis" or "memory", got "postgres"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_SecretKeyPrefix(t *testing.T) {
	cfg := validConfig()
	cfg.Provider.SecretKey = "pk_test_123"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for secret key without sk_ prefix")
	}

	cfg.Provider.SecretKey = "sk_test_123"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Threshold(t *testing.T) {
	for _, th := range []float64{-0.1, 1.5} {
		cfg := validConfig()
		cfg.Billing.NotificationThreshold = th
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for threshold %v", th)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Database.Driver != "valkey" {
		t.Errorf("expected driver valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Storage.KeyPrefix != "hostreamly:" {
		t.Errorf("expected KeyPrefix 'hostreamly:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Provider.BaseURL != "https://api.stripe.com" {
		t.Errorf("unexpected provider base url %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.KeyPrefix != "sk_" {
		t.Errorf("expected key prefix sk_, got %q", cfg.Provider.KeyPrefix)
	}
	if cfg.Billing.NotificationThreshold != 0.8 {
		t.Errorf("expected threshold 0.8, got %v", cfg.Billing.NotificationThreshold)
	}
	if cfg.Billing.Currency != "usd" {
		t.Errorf("expected currency usd, got %q", cfg.Billing.Currency)
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("HOSTREAMLY_TEST_PORT", "9090")
	data := []byte(`
http:
  port: ${HOSTREAMLY_TEST_PORT}
database:
  driver: memory
provider:
  secret_key: ${HOSTREAMLY_MISSING_KEY:-sk_test_fallback}
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Provider.SecretKey != "sk_test_fallback" {
		t.Errorf("expected default secret, got %q", cfg.Provider.SecretKey)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("http:\n  port: 0\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("expected invalid config error, got %v", err)
	}
}

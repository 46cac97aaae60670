package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.App.Name != "Niarobi Liquor Store" {
		t.Fatalf("unexpected app name: %s", cfg.App.Name)
	}
	if cfg.Paystack.APIBaseURL != "https://api.paystack.co" {
		t.Fatalf("unexpected paystack base url: %s", cfg.Paystack.APIBaseURL)
	}
	if cfg.Order.StrictStatusTransitions {
		t.Fatalf("strict status transitions should default to false")
	}
	if cfg.Queue.Queues["critical"] != 5 {
		t.Fatalf("unexpected critical queue weight: %d", cfg.Queue.Queues["critical"])
	}
	if cfg.Paystack.Timeout().Seconds() != 15 {
		t.Fatalf("unexpected paystack timeout: %v", cfg.Paystack.Timeout())
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_env")
	t.Setenv("SECURITY_PROMO_RATE_LIMIT_MAX_REQUESTS", "3")

	cfg, err := LoadFrom(viper.New())
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.Paystack.SecretKey != "sk_test_env" {
		t.Fatalf("env override not applied: %q", cfg.Paystack.SecretKey)
	}
	if cfg.Security.PromoRateLimit.MaxRequests != 3 {
		t.Fatalf("nested env override not applied: %d", cfg.Security.PromoRateLimit.MaxRequests)
	}
}

func TestLoadFromDotEnvFile(t *testing.T) {
	const key = "ORDER_STRICT_STATUS_TRANSITIONS"
	if _, exists := os.LookupEnv(key); exists {
		t.Skipf("%s already set in environment", key)
	}
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte(key+"=true\n"), 0o600); err != nil {
		t.Fatalf("write env file failed: %v", err)
	}

	cfg, err := LoadFrom(viper.New(), envFile, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if !cfg.Order.StrictStatusTransitions {
		t.Fatalf(".env value not applied")
	}
}

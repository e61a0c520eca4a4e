package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if cfg.API.BaseURL != "https://api.farmstore.test" {
		t.Fatalf("unexpected API base url: %q", cfg.API.BaseURL)
	}
	if got := cfg.API.Timeout; got != 15*time.Second {
		t.Fatalf("expected default timeout 15s, got %v", got)
	}
	if cfg.API.Source != "mobile" {
		t.Fatalf("unexpected source %q", cfg.API.Source)
	}
	if cfg.Cart.Store != CartStoreDB {
		t.Fatalf("expected db cart store, got %q", cfg.Cart.Store)
	}
	if cfg.DB.DSN != "file:farmstore.db?_foreign_keys=on" {
		t.Fatalf("expected sqlite dsn derived from path, got %q", cfg.DB.DSN)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsNonHTTPBaseURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvAPIBaseURL, "ftp://api.farmstore.test")

	if _, err := Load(); err == nil {
		t.Fatal("expected non-http base url to be rejected")
	}
}

func TestLoad_RedisStoreRequiresURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartStore, CartStoreRedis)

	if _, err := Load(); err == nil {
		t.Fatal("expected redis cart store without url to fail")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvDBDriver, DBDriverPostgres)

	if _, err := Load(); err == nil {
		t.Fatal("expected postgres driver without dsn to fail")
	}
}

func TestLoad_UnknownCartStore(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartStore, "floppy")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown cart store to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvAPIBaseURL, "https://api.farmstore.test")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}

func TestMediaConfigMaxUploadBytes(t *testing.T) {
	if got := (MediaConfig{MaxUploadMB: 2}).MaxUploadBytes(); got != 2<<20 {
		t.Fatalf("expected 2MiB, got %d", got)
	}
	if got := (MediaConfig{}).MaxUploadBytes(); got != 0 {
		t.Fatalf("expected 0 for unset limit, got %d", got)
	}
}

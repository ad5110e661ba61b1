package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("REVIEW_MODE", "moderated")
	t.Setenv("SLUG_POLICY", "suffix")
	t.Setenv("DB_MAX_LIFETIME", "90s")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Policy.ReviewMode != ReviewModerated {
		t.Errorf("Expected moderated review mode, got %s", cfg.Policy.ReviewMode)
	}
	if cfg.Policy.SlugPolicy != SlugSuffix {
		t.Errorf("Expected suffix slug policy, got %s", cfg.Policy.SlugPolicy)
	}
	if cfg.Database.MaxLifetime != 90*time.Second {
		t.Errorf("Expected 90s lifetime, got %s", cfg.Database.MaxLifetime)
	}
	if cfg.Server.RateLimit != 2.5 {
		t.Errorf("Expected rate limit 2.5, got %v", cfg.Server.RateLimit)
	}
	if cfg.Database.Name != "devnovate" {
		t.Errorf("Expected default database name, got %s", cfg.Database.Name)
	}
	if !cfg.Server.TrustProxyHeaders {
		t.Error("Expected proxy headers to be trusted")
	}
}

func TestLoad_ProxyHeadersUntrustedByDefault(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("ENV", "production")
	t.Setenv("TRUST_PROXY_HEADERS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.TrustProxyHeaders {
		t.Error("Expected proxy headers to be untrusted outside development")
	}
}

func TestLoad_YAMLFileWithExpansion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "7000"
  session_secret: ${TEST_SECRET}
database:
  name: blogdb
policy:
  review_mode: moderated
events:
  enabled: true
  exchange: blog-x
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TEST_SECRET", "from-yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "7000" || cfg.Server.SessionSecret != "from-yaml" {
		t.Errorf("YAML server section not applied: %+v", cfg.Server)
	}
	if cfg.Database.Name != "blogdb" {
		t.Errorf("Expected blogdb, got %s", cfg.Database.Name)
	}
	if !cfg.Events.Enabled || cfg.Events.Exchange != "blog-x" {
		t.Errorf("YAML events section not applied: %+v", cfg.Events)
	}
	if cfg.Events.RoutingKey != "blog.events" {
		t.Errorf("Unset YAML keys should keep defaults, got %q", cfg.Events.RoutingKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing secret", func(c *Config) { c.Server.SessionSecret = "" }, true},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, true},
		{"bad review mode", func(c *Config) { c.Policy.ReviewMode = "sometimes" }, true},
		{"bad slug policy", func(c *Config) { c.Policy.SlugPolicy = "random" }, true},
		{"events without url", func(c *Config) { c.Events.Enabled = true; c.Events.URL = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			cfg.Server.SessionSecret = "s"
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=h port=5432 user=u password=p dbname=n sslmode=disable"
	if got := db.GetDSN(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	v := viper.New()
	SetDefaults(v, "test")
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &cfg
}

func TestDefaults_Valid(t *testing.T) {
	cfg := defaultConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	area := cfg.ServiceArea.Area()
	if area.Name != "Akure" || area.North != 7.32 || area.West != 5.12 {
		t.Errorf("unexpected service area %+v", area)
	}
	if cfg.Resolver.LocalLimit != 5 || cfg.Resolver.MaxResults != 10 {
		t.Errorf("unexpected resolver limits %+v", cfg.Resolver)
	}
	if cfg.Resolver.Debounce().Milliseconds() != 300 {
		t.Errorf("expected 300ms debounce, got %v", cfg.Resolver.Debounce())
	}
	if cfg.Location.OutsidePolicy != OutsidePolicyFallback {
		t.Errorf("expected fallback policy, got %q", cfg.Location.OutsidePolicy)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Server.Port = 0
	cfg.Resolver.MaxResults = 2
	cfg.ServiceArea.South = 8
	cfg.Location.OutsidePolicy = "ignore"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "resolver.max_results", "service_area.south", "location.outside_policy"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestValidate_DatabaseOnlyWhenEnabled(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Database.Host = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled database should not be validated: %v", err)
	}

	cfg.Database.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled database without host")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AKUREROUTE_ORS_API_KEY", "secret")
	t.Setenv("AKUREROUTE_RESOLVER_LOCAL_LIMIT", "3")

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ORS.APIKey != "secret" {
		t.Errorf("expected api key from env, got %q", cfg.ORS.APIKey)
	}
	if cfg.Resolver.LocalLimit != 3 {
		t.Errorf("expected local limit 3, got %d", cfg.Resolver.LocalLimit)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "akure.yaml")
	body := "resolver:\n  local_limit: 4\nlocation:\n  outside_policy: reject\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile("test", path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Resolver.LocalLimit != 4 {
		t.Errorf("expected local limit 4, got %d", cfg.Resolver.LocalLimit)
	}
	if cfg.Location.OutsidePolicy != OutsidePolicyReject {
		t.Errorf("expected reject policy, got %q", cfg.Location.OutsidePolicy)
	}
	if cfg.Resolver.MaxResults != 10 {
		t.Errorf("unset keys should keep defaults, got max_results %d", cfg.Resolver.MaxResults)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile("test", filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5432, DBName: "db", SSLMode: "disable"}
	if got := d.DSN(); got != "postgres://u:p@h:5432/db?sslmode=disable" {
		t.Errorf("unexpected dsn %s", got)
	}
}

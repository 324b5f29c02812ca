package config

import "testing"

func TestValidateRequiresBackendCredentials(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://localhost/juridico", APIKey: "anon-key"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg.DatabaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}

	cfg.DatabaseURL = "postgres://localhost/juridico"
	cfg.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing JURIDICO_API_KEY")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/juridico")
	t.Setenv("JURIDICO_API_KEY", "anon-key")

	cfg := Load()
	if cfg.RedisURL == "" {
		t.Fatal("expected default redis url")
	}
	if cfg.DataDir != "" {
		t.Fatalf("expected empty data dir by default, got %q", cfg.DataDir)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		t.Fatal("expected positive token TTLs")
	}
}

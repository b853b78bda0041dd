package config

import "testing"

func TestLoadReadsCriticalEnvKeys(t *testing.T) {
	t.Setenv("CADENCE_DB_DSN", "host=localhost user=test dbname=test sslmode=disable")
	t.Setenv("CADENCE_JWT_SIGNING_KEY", "supersecret")
	t.Setenv("CADENCE_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBDSN == "" {
		t.Fatal("expected DB DSN to be set")
	}
	if cfg.JWTSigningKey != "supersecret" {
		t.Fatalf("unexpected jwt signing key: %q", cfg.JWTSigningKey)
	}
	if cfg.TitlePrefix != "Skip Level: " {
		t.Fatalf("unexpected default title prefix: %q", cfg.TitlePrefix)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("CADENCE_DB_DSN", "file::memory:?cache=shared")
	t.Setenv("CADENCE_JWT_SIGNING_KEY", "supersecret")
	t.Setenv("CADENCE_DB_BACKEND", "oracle")

	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail for unknown backend")
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("CADENCE_JWT_SIGNING_KEY", "supersecret")
	t.Setenv("CADENCE_DB_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail without a DSN")
	}
}

package config

import (
	"errors"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"UPSTOX_ACCESS_TOKEN", "GROQ_API_KEY", "REDIS_URL", "LISTEN_ADDR", "CATALOG_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPSTOX_ACCESS_TOKEN", "tok")
	t.Setenv("GROQ_API_KEY", "gk")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.CatalogURL != defaultCatalogURL {
		t.Errorf("CatalogURL = %q", cfg.CatalogURL)
	}
}

func TestLoadFailsFast(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gk")

	// No token and no redis to fetch one from.
	_, err := Load()
	var merr *MissingError
	if !errors.As(err, &merr) || merr.Key != "UPSTOX_ACCESS_TOKEN" {
		t.Fatalf("expected MissingError(UPSTOX_ACCESS_TOKEN), got %v", err)
	}

	// A redis URL stands in for the token, but the advisor key is still required.
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("GROQ_API_KEY", "")
	if _, err := Load(); !errors.As(err, &merr) || merr.Key != "GROQ_API_KEY" {
		t.Fatalf("expected MissingError(GROQ_API_KEY), got %v", err)
	}

	t.Setenv("GROQ_API_KEY", "gk")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with redis fallback: %v", err)
	}
}

func TestBearerTokenPrefersEnv(t *testing.T) {
	cfg := &Config{AccessToken: "env-token"}
	tok, err := cfg.BearerToken(nil)
	if err != nil {
		t.Fatalf("BearerToken: %v", err)
	}
	if tok != "env-token" {
		t.Errorf("token = %q, want env-token", tok)
	}
}

func TestBearerTokenMissing(t *testing.T) {
	cfg := &Config{}
	_, err := cfg.BearerToken(nil)
	var merr *MissingError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MissingError, got %v", err)
	}
}

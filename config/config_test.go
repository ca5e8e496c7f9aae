package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := validate(Default()); err != nil {
		t.Fatalf("expected Default() to satisfy its own validation tags, got %v", err)
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected Load(\"\") to equal Default()")
	}
}

func TestLoadOverlaysYAMLOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := "provider_base_url: https://example.test\ntop_k_refined: 25\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProviderBaseURL != "https://example.test" {
		t.Fatalf("expected overridden base url, got %s", cfg.ProviderBaseURL)
	}
	if cfg.TopKRefined != 25 {
		t.Fatalf("expected overridden top_k_refined, got %d", cfg.TopKRefined)
	}
	if cfg.ProximityRadiusM != Default().ProximityRadiusM {
		t.Fatalf("expected untouched field to keep its default")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := "provider_base_url: not-a-url\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected an invalid base url to fail validation")
	}
}

func TestAPITokenMissingReturnsError(t *testing.T) {
	os.Unsetenv(APITokenEnvVar)
	if _, err := APIToken(); err == nil {
		t.Fatalf("expected an error when the token env var is unset")
	}
}

func TestAPITokenReadsEnv(t *testing.T) {
	os.Setenv(APITokenEnvVar, "test-token-123")
	defer os.Unsetenv(APITokenEnvVar)
	tok, err := APIToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "test-token-123" {
		t.Fatalf("expected test-token-123, got %s", tok)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  directory_url: "https://example.com/shops"
  operator_contacts: ["233200000000"]
database:
  host: "localhost"
  port: 5432
redis:
  addr: "localhost:6379"
ai:
  request_timeout: 10s
  temperature: 0.5
  providers:
    - name: "primary"
      base_url: "https://api.openai.com/v1"
      api_key: "sk-test"
      model: "gpt-4o-mini"
    - name: "fallback"
      base_url: "https://api.groq.com/openai/v1"
      api_key: "gsk-test"
      model: "llama-3.1-70b-versatile"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.AI.Providers) != 2 {
		t.Fatalf("providers = %d, want 2", len(cfg.AI.Providers))
	}
	if cfg.AI.Providers[0].Name != "primary" || cfg.AI.Providers[1].Name != "fallback" {
		t.Errorf("provider order = %s, %s", cfg.AI.Providers[0].Name, cfg.AI.Providers[1].Name)
	}
	if cfg.AI.RequestTimeout.Std() != 10*time.Second {
		t.Errorf("request_timeout = %s, want 10s", cfg.AI.RequestTimeout.Std())
	}
	if cfg.App.DirectoryURL != "https://example.com/shops" {
		t.Errorf("directory_url = %q", cfg.App.DirectoryURL)
	}
	if len(cfg.App.OperatorContacts) != 1 {
		t.Errorf("operator_contacts = %v", cfg.App.OperatorContacts)
	}
}

func TestLoad_DefaultsRequestTimeout(t *testing.T) {
	path := writeConfig(t, `
ai:
  providers:
    - name: "only"
      base_url: "https://api.openai.com/v1"
      api_key: "sk-test"
      model: "gpt-4o-mini"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AI.RequestTimeout.Std() != 30*time.Second {
		t.Errorf("request_timeout = %s, want the 30s default", cfg.AI.RequestTimeout.Std())
	}
}

func TestLoad_RequiresProviders(t *testing.T) {
	path := writeConfig(t, `
ai:
  request_timeout: 10s
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error when no ai providers are configured")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

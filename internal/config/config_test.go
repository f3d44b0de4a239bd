package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DBPath != "data/idealab.db" {
		t.Errorf("DBPath = %q, want data/idealab.db", cfg.DBPath)
	}
	if cfg.NextFallback != "/" {
		t.Errorf("NextFallback = %q, want /", cfg.NextFallback)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q, want derived from port", cfg.BaseURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("BASE_URL", "https://ideas.example.com")
	t.Setenv("PATH_PREFIX", "/idealab")
	t.Setenv("JWT_SECRET", "sixteen-characters!!")
	t.Setenv("GITHUB_CLIENT_ID", "gh-id")
	t.Setenv("GITHUB_CLIENT_SECRET", "gh-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.BaseURL != "https://ideas.example.com" {
		t.Errorf("BaseURL = %q, env value should win over the derived default", cfg.BaseURL)
	}
	if cfg.PathPrefix != "/idealab" {
		t.Errorf("PathPrefix = %q", cfg.PathPrefix)
	}
	if !cfg.GitHub.Enabled() {
		t.Error("GitHub provider should be enabled with both credentials set")
	}
	if cfg.Google.Enabled() {
		t.Error("Google provider should be disabled without credentials")
	}
}

func TestCredentials_Enabled(t *testing.T) {
	if (Credentials{ClientID: "id"}).Enabled() {
		t.Error("id without secret must not enable a provider")
	}
	if (Credentials{ClientSecret: "secret"}).Enabled() {
		t.Error("secret without id must not enable a provider")
	}
	if !(Credentials{ClientID: "id", ClientSecret: "secret"}).Enabled() {
		t.Error("both credentials set should enable the provider")
	}
}

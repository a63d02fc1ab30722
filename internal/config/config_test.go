// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if cfg.API.Model != "gemini-1.5-flash" {
		t.Errorf("unexpected default model: %q", cfg.API.Model)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("unexpected default timeout: %d", cfg.API.TimeoutSeconds)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("unexpected default backend: %q", cfg.Storage.Backend)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "https://example.test/v1"
model = "gemini-2.0-flash"
timeout_seconds = 10
requests_per_minute = 30

[storage]
backend = "sqlite"
dir = "/tmp/agentchat-test"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "https://example.test/v1" {
		t.Errorf("unexpected base_url: %q", cfg.API.BaseURL)
	}
	if cfg.API.Model != "gemini-2.0-flash" {
		t.Errorf("unexpected model: %q", cfg.API.Model)
	}
	if cfg.API.RequestsPerMinute != 30 {
		t.Errorf("unexpected rate limit: %d", cfg.API.RequestsPerMinute)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Dir != "/tmp/agentchat-test" {
		t.Errorf("unexpected storage config: %+v", cfg.Storage)
	}
}

func TestLoadFromPath_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api]\nmodel = \"custom\"\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Model != "custom" {
		t.Errorf("override lost: %q", cfg.API.Model)
	}
	if cfg.API.BaseURL != Default().API.BaseURL {
		t.Errorf("unset fields must keep defaults, got %q", cfg.API.BaseURL)
	}
}

func TestLoadFromPath_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("AGENTCHAT_API_KEY", "env-key")
	t.Setenv("AGENTCHAT_MODEL", "env-model")
	t.Setenv("AGENTCHAT_TIMEOUT", "7")
	t.Setenv("AGENTCHAT_STORE_DIR", "/tmp/env-store")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.Key != "env-key" {
		t.Errorf("key override lost: %q", cfg.API.Key)
	}
	if cfg.API.Model != "env-model" {
		t.Errorf("model override lost: %q", cfg.API.Model)
	}
	if cfg.API.TimeoutSeconds != 7 {
		t.Errorf("timeout override lost: %d", cfg.API.TimeoutSeconds)
	}
	if cfg.Storage.Dir != "/tmp/env-store" {
		t.Errorf("store dir override lost: %q", cfg.Storage.Dir)
	}
}

func TestApplyEnvOverrides_BadTimeoutIgnored(t *testing.T) {
	t.Setenv("AGENTCHAT_TIMEOUT", "not-a-number")
	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("invalid timeout must keep default, got %d", cfg.API.TimeoutSeconds)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url"},
		{"non-http base url", func(c *Config) { c.API.BaseURL = "ftp://x" }, "api.base_url"},
		{"empty model", func(c *Config) { c.API.Model = "" }, "api.model"},
		{"zero timeout", func(c *Config) { c.API.TimeoutSeconds = 0 }, "api.timeout_seconds"},
		{"negative rate", func(c *Config) { c.API.RequestsPerMinute = -1 }, "api.requests_per_minute"},
		{"bad backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			errs, ok := err.(ValidateErrors)
			if !ok {
				t.Fatalf("expected ValidateErrors, got %T", err)
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.field, errs)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = ""
	cfg.API.Model = ""
	err := cfg.Validate()
	errs, ok := err.(ValidateErrors)
	if !ok || len(errs) != 2 {
		t.Fatalf("expected 2 collected errors, got %v", err)
	}
}

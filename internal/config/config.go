// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for agentchat.
//
// Configuration lives at ~/.agentchat/config.toml with sensible defaults
// and environment variable overrides. API credentials are normally kept
// in the persistent store under their own key; the optional api.key field
// exists for headless setups.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete agentchat configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
}

// APIConfig configures the completion endpoint.
type APIConfig struct {
	// BaseURL is the OpenAI-compatible endpoint base.
	BaseURL string `toml:"base_url"`
	// Model is the completion model identifier.
	Model string `toml:"model"`
	// Key is an optional API key; the stored credential takes precedence.
	Key string `toml:"key"`
	// TimeoutSeconds bounds each completion request.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// RequestsPerMinute caps client-side request rate (0 = unlimited).
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// StorageConfig selects the persistent store backend.
type StorageConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `toml:"backend"`
	// Dir is the store directory (empty = ~/.agentchat/store).
	Dir string `toml:"dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://generativelanguage.googleapis.com/v1beta/openai",
			Model:             "gemini-1.5-flash",
			TimeoutSeconds:    30,
			RequestsPerMinute: 0,
		},
		Storage: StorageConfig{
			Backend: "file",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the agentchat configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".agentchat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the configuration directory if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file if present, applies environment overrides,
// and validates. A missing file yields the defaults.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := loadTOML(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath reads configuration from an explicit file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := loadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// Save writes the configuration to the default path with 0600 permissions:
// the optional API key must not be world-readable.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# agentchat configuration file")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies overrides from the environment:
//
//   - AGENTCHAT_API_KEY: overrides api.key
//   - AGENTCHAT_BASE_URL: overrides api.base_url
//   - AGENTCHAT_MODEL: overrides api.model
//   - AGENTCHAT_TIMEOUT: overrides api.timeout_seconds
//   - AGENTCHAT_STORE_DIR: overrides storage.dir
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("AGENTCHAT_API_KEY"); key != "" {
		c.API.Key = key
	}
	if url := os.Getenv("AGENTCHAT_BASE_URL"); url != "" {
		c.API.BaseURL = url
	}
	if model := os.Getenv("AGENTCHAT_MODEL"); model != "" {
		c.API.Model = model
	}
	if timeout := os.Getenv("AGENTCHAT_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil && secs > 0 {
			c.API.TimeoutSeconds = secs
		}
	}
	if dir := os.Getenv("AGENTCHAT_STORE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks field values, returning all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.API.BaseURL == "" {
		errs = append(errs, ValidationError{"api.base_url", "must not be empty"})
	} else if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		errs = append(errs, ValidationError{"api.base_url", "must be an http(s) URL"})
	}
	if c.API.Model == "" {
		errs = append(errs, ValidationError{"api.model", "must not be empty"})
	}
	if c.API.TimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{"api.timeout_seconds", "must be positive"})
	}
	if c.API.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{"api.requests_per_minute", "must not be negative"})
	}

	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		errs = append(errs, ValidationError{"storage.backend", `must be "file" or "sqlite"`})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

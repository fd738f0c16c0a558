package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads the file at path over the defaults and then applies the
// environment. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.ListenAddr = ":" + port
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.Backend.DataDir = dir
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if kind := os.Getenv("RECIPES_BACKEND"); kind != "" {
		cfg.Backend.Kind = kind
	}
	if url := os.Getenv("SUPABASE_URL"); url != "" {
		cfg.Backend.URL = url
	}
	if key := os.Getenv("SUPABASE_KEY"); key != "" {
		cfg.Backend.Key = key
	}
	if email := os.Getenv("RECIPES_ADMIN_EMAIL"); email != "" {
		cfg.Admin.Email = email
	}
	if hash := os.Getenv("RECIPES_ADMIN_PASSWORD_HASH"); hash != "" {
		cfg.Admin.PasswordHash = hash
	}
}

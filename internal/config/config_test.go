package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_DIR", "LOG_LEVEL", "RECIPES_BACKEND", "SUPABASE_URL", "SUPABASE_KEY", "RECIPES_ADMIN_EMAIL", "RECIPES_ADMIN_PASSWORD_HASH"} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileOverDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  listen_addr: ":9000"
backend:
  kind: supabase
  url: https://demo.supabase.co
  key: anon
  timeout: 3s
listing:
  search_delay: 250ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, BackendSupabase, cfg.Backend.Kind)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Listing.SearchDelay)
	assert.Equal(t, "images", cfg.Backend.Bucket)
	assert.Equal(t, 5, cfg.Listing.PageSize)
	assert.NoError(t, cfg.Validate())
}

func TestEnvironmentWins(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  listen_addr: \":9000\"\n")
	t.Setenv("PORT", "8181")
	t.Setenv("DATA_DIR", "/var/lib/recipes")
	t.Setenv("RECIPES_ADMIN_EMAIL", "chef@ricette.it")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8181", cfg.Server.ListenAddr)
	assert.Equal(t, "/var/lib/recipes", cfg.Backend.DataDir)
	assert.Equal(t, "chef@ricette.it", cfg.Admin.Email)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Admin.Email = "admin@example.com"
	valid.Admin.PasswordHash = "$2a$10$hash"
	require.NoError(t, valid.Validate())

	cases := map[string]func(*Config){
		"unknown backend":      func(c *Config) { c.Backend.Kind = "mysql" },
		"supabase without key": func(c *Config) { c.Backend.Kind = BackendSupabase; c.Backend.URL = "https://x" },
		"sqlite without admin": func(c *Config) { c.Admin.PasswordHash = "" },
		"zero page size":       func(c *Config) { c.Listing.PageSize = 0 },
		"bad log level":        func(c *Config) { c.Log.Level = "loud" },
		"bad log format":       func(c *Config) { c.Log.Format = "xml" },
		"bad palette colour":   func(c *Config) { c.Site.Palette = []string{"#fff", "red;x:y"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestIsColor(t *testing.T) {
	assert.True(t, IsColor("#6b4f3a"))
	assert.True(t, IsColor("#FFF"))
	assert.True(t, IsColor("#6b4f3a80"))
	assert.False(t, IsColor("#6b4f3"))
	assert.False(t, IsColor("6b4f3a"))
	assert.False(t, IsColor("#fff; background:url(x)"))
}

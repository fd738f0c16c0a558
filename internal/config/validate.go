package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
)

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// IsColor reports whether s is a hex colour usable in a style attribute.
func IsColor(s string) bool {
	return colorPattern.MatchString(s)
}

func (c Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return errors.New("server.listen_addr must be set")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format %q: must be console or json", c.Log.Format)
	}

	switch c.Backend.Kind {
	case BackendSQLite:
		if c.Backend.DataDir == "" {
			return errors.New("backend.data_dir must be set for the sqlite backend")
		}
		if c.Admin.Email == "" || c.Admin.PasswordHash == "" {
			return errors.New("admin.email and admin.password_hash must be set for the sqlite backend")
		}
	case BackendSupabase:
		if c.Backend.URL == "" || c.Backend.Key == "" {
			return errors.New("backend.url and backend.key must be set for the supabase backend")
		}
	default:
		return fmt.Errorf("unknown backend.kind %q", c.Backend.Kind)
	}

	if c.Backend.Bucket == "" {
		return errors.New("backend.bucket must be set")
	}
	if c.Admin.SessionTTL <= 0 {
		return errors.New("admin.session_ttl must be positive")
	}
	if c.Listing.PageSize <= 0 {
		return fmt.Errorf("listing.page_size must be positive, got %d", c.Listing.PageSize)
	}
	for _, color := range c.Site.Palette {
		if !IsColor(color) {
			return fmt.Errorf("invalid site.palette colour %q: must be #rgb, #rgba, #rrggbb or #rrggbbaa", color)
		}
	}
	if c.Listing.SearchDelay < 0 {
		return errors.New("listing.search_delay must not be negative")
	}
	return nil
}

// Package config loads the server configuration from an optional YAML file,
// applies environment overrides and fills in defaults.
package config

import "time"

const DefaultPath = "recipes.yaml"

const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
)

type ServerSection struct {
	ListenAddr string `yaml:"listen_addr"`
	StaticDir  string `yaml:"static_dir"`
}

type LogSection struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
	Path   string `yaml:"path"`
}

// BackendSection selects where records and images live: a local sqlite
// database with images on disk, or a hosted Supabase project.
type BackendSection struct {
	Kind    string        `yaml:"kind"`
	DataDir string        `yaml:"data_dir"`
	URL     string        `yaml:"url"`
	Key     string        `yaml:"key"`
	Bucket  string        `yaml:"bucket"`
	Timeout time.Duration `yaml:"timeout"`
}

// AdminSection holds the single admin account of the sqlite backend.
// PasswordHash is a bcrypt hash, see the hash-password command.
type AdminSection struct {
	Email        string        `yaml:"email"`
	PasswordHash string        `yaml:"password_hash"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

type SiteSection struct {
	Name    string   `yaml:"name"`
	Palette []string `yaml:"palette"`
}

type ListingSection struct {
	PageSize    int           `yaml:"page_size"`
	SearchDelay time.Duration `yaml:"search_delay"`
}

type Config struct {
	Server  ServerSection  `yaml:"server"`
	Log     LogSection     `yaml:"log"`
	Backend BackendSection `yaml:"backend"`
	Admin   AdminSection   `yaml:"admin"`
	Site    SiteSection    `yaml:"site"`
	Listing ListingSection `yaml:"listing"`
}

func Default() Config {
	return Config{
		Server: ServerSection{ListenAddr: ":8080", StaticDir: "static"},
		Log:    LogSection{Level: "info", Format: "console"},
		Backend: BackendSection{
			Kind:    BackendSQLite,
			DataDir: "./data",
			Bucket:  "images",
			Timeout: 10 * time.Second,
		},
		Admin: AdminSection{SessionTTL: 12 * time.Hour},
		Site: SiteSection{
			Name:    "Ricettario",
			Palette: []string{"#6b4f3a", "#c0392b", "#e67e22", "#f1c40f", "#27ae60", "#2980b9"},
		},
		Listing: ListingSection{PageSize: 5, SearchDelay: time.Second},
	}
}

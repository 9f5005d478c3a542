package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string `env:"TS_HTTP_ADDR" envDefault:":8080"`
	// StatsAddr serves expvar diagnostics; bind it on localhost.
	StatsAddr string `env:"TS_STATS_ADDR" envDefault:"127.0.0.1:8081"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"INFO"`

	Store    StoreConfig    `envPrefix:"TS_STORE_"`
	Assets   AssetConfig    `envPrefix:"TS_ASSET_"`
	Admin    AdminConfig    `envPrefix:"TS_ADMIN_"`
	Geocoder GeocoderConfig `envPrefix:"TS_GEOCODER_"`
	Backup   BackupConfig   `envPrefix:"TS_BACKUP_"`
}

type StoreConfig struct {
	Driver string `env:"DRIVER" envDefault:"bolt"` // bolt | sqlite
	Path   string `env:"PATH" envDefault:"data/content.db"`
}

type AssetConfig struct {
	Driver string `env:"DRIVER" envDefault:"local"` // local | gcs
	// Dir is the local asset root, served under /assets/.
	Dir string `env:"DIR" envDefault:"data/assets"`
	// BucketPrefix is prepended to logical bucket names on GCS.
	BucketPrefix    string `env:"BUCKET_PREFIX"`
	CredentialsFile string `env:"CREDENTIALS_FILE"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
}

type AdminConfig struct {
	Email         string        `env:"EMAIL"`
	PasswordHash  string        `env:"PASSWORD_HASH"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	SecureCookie  bool          `env:"SECURE_COOKIE" envDefault:"false"`
}

type GeocoderConfig struct {
	Enabled   bool   `env:"ENABLED" envDefault:"false"`
	Endpoint  string `env:"ENDPOINT" envDefault:"https://nominatim.openstreetmap.org"`
	UserAgent string `env:"USER_AGENT" envDefault:"traine-savates-admin/1.0"`
	// CachePath keeps answers across restarts; empty keeps them in memory.
	CachePath string `env:"CACHE_PATH" envDefault:"data/geocache.db"`
}

type BackupConfig struct {
	Enabled  bool   `env:"ENABLED" envDefault:"false"`
	CronSpec string `env:"CRON" envDefault:"0 3 * * *"`
	Dir      string `env:"DIR" envDefault:"data/backups"`
	Keep     int    `env:"KEEP" envDefault:"7"`
}

// FromEnv parses configuration from the process environment.
func FromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Assets.Driver = strings.ToLower(strings.TrimSpace(c.Assets.Driver))
	c.Assets.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Assets.PublicBaseURL), "/")
	return c, nil
}

// Validate checks the settings needed to serve the site.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "bolt", "sqlite":
	default:
		return fmt.Errorf("TS_STORE_DRIVER %q is not one of bolt, sqlite", c.Store.Driver)
	}
	switch c.Assets.Driver {
	case "local":
	case "gcs":
		if c.Assets.BucketPrefix == "" {
			return fmt.Errorf("TS_ASSET_BUCKET_PREFIX is required for the gcs driver")
		}
	default:
		return fmt.Errorf("TS_ASSET_DRIVER %q is not one of local, gcs", c.Assets.Driver)
	}
	if c.Admin.Email == "" {
		return fmt.Errorf("TS_ADMIN_EMAIL is empty")
	}
	if c.Admin.PasswordHash == "" {
		return fmt.Errorf("TS_ADMIN_PASSWORD_HASH is empty")
	}
	if len(c.Admin.SessionSecret) < 32 {
		return fmt.Errorf("TS_ADMIN_SESSION_SECRET must be at least 32 bytes")
	}
	if c.Admin.SessionTTL <= 0 {
		return fmt.Errorf("TS_ADMIN_SESSION_TTL must be positive")
	}
	return nil
}

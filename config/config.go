package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	AssetsLocal = "local"
	AssetsGCS   = "gcs"
)

type Config struct {
	Port              string        `env:"PORT" envDefault:"8083"`
	GinMode           string        `env:"GIN_MODE" envDefault:"debug"`
	LogMode           string        `env:"LOG_MODE" envDefault:"development"`
	APIPrefix         string        `env:"API_URL" envDefault:"/api"`
	AllowedOrigins    []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"10s"`

	Database DatabaseOptions
	Assets   AssetOptions
}

type DatabaseOptions struct {
	Driver string `env:"DB_DRIVER" envDefault:"postgres"`
	DSN    string `env:"DATABASE_DSN" envDefault:"host=localhost user=postgres password=postgres dbname=cafe port=5432 sslmode=disable"`
}

type AssetOptions struct {
	Backend      string `env:"ASSET_BACKEND" envDefault:"local"`
	UploadDir    string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	GCSBucket    string `env:"GCS_BUCKET"`
	GCSPrefix    string `env:"GCS_PREFIX" envDefault:"uploads"`
	MaxLogoBytes int64  `env:"MAX_LOGO_BYTES" envDefault:"5242880"`
}

// Load reads the given dotenv files (missing ones are ignored) and then parses the
// process environment into a Config.
func Load(envFiles ...string) (*Config, error) {
	existing := make([]string, 0, len(envFiles))
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("load env files: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch strings.ToLower(c.Assets.Backend) {
	case AssetsLocal:
	case AssetsGCS:
		if c.Assets.GCSBucket == "" {
			return errors.New("GCS_BUCKET is required when ASSET_BACKEND=gcs")
		}
	default:
		return fmt.Errorf("unsupported ASSET_BACKEND %q", c.Assets.Backend)
	}
	if c.ReadHeaderTimeout <= 0 {
		return errors.New("READ_HEADER_TIMEOUT must be positive")
	}
	if c.Assets.MaxLogoBytes <= 0 {
		return errors.New("MAX_LOGO_BYTES must be positive")
	}
	return nil
}

// Origins always includes the local frontend dev server.
func (c *Config) Origins() []string {
	origins := []string{"http://localhost:3000"}
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file:test.db")
	t.Setenv("ALLOWED_ORIGINS", "https://cafe.example.com, ,https://admin.example.com")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("READ_HEADER_TIMEOUT", "5s")
	t.Setenv("ASSET_BACKEND", "local")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "file:test.db", cfg.Database.DSN)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5*time.Second, cfg.ReadHeaderTimeout)
	assert.Equal(t, []string{
		"http://localhost:3000",
		"https://cafe.example.com",
		"https://admin.example.com",
	}, cfg.Origins())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("API_URL=/v2\nMAX_LOGO_BYTES=1024\n"), 0644))
	t.Setenv("API_URL", "")
	os.Unsetenv("API_URL")
	t.Setenv("MAX_LOGO_BYTES", "")
	os.Unsetenv("MAX_LOGO_BYTES")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("ASSET_BACKEND", "local")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/v2", cfg.APIPrefix)
	assert.EqualValues(t, 1024, cfg.Assets.MaxLogoBytes)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			ReadHeaderTimeout: time.Second,
			Database:          DatabaseOptions{Driver: DriverPostgres},
			Assets:            AssetOptions{Backend: AssetsLocal, MaxLogoBytes: 1},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Database.Driver = "mysql"
	assert.ErrorContains(t, cfg.Validate(), "DB_DRIVER")

	cfg = base()
	cfg.Assets.Backend = AssetsGCS
	assert.ErrorContains(t, cfg.Validate(), "GCS_BUCKET")
	cfg.Assets.GCSBucket = "logos"
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Assets.Backend = "s3"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Assets.MaxLogoBytes = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.ReadHeaderTimeout = 0
	assert.ErrorContains(t, cfg.Validate(), "READ_HEADER_TIMEOUT")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"HTTP_ADDR", "PORT", "DB_DSN", "DB_AUTOMIGRATE", "JWT_SECRET", "JWT_ISSUER",
	"TIMEZONE", "SCAN_DEFAULT_FIRST_PLACE", "CORS_ALLOWED_ORIGINS", "SEED_DEV_DATA",
	"SHUTDOWN_TIMEOUT",
}

// clearEnv deja las keys vacías durante el test (t.Setenv restaura al final).
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.DBDSN)
	assert.True(t, cfg.DBAutoMigrate)
	assert.True(t, cfg.SeedDevData, "memory mode seeds by default")
	assert.False(t, cfg.ScanDefaultFirstPlace)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "America/Santiago", cfg.Location.String())
}

func TestLoad_FromFileAndEnv(t *testing.T) {
	clearEnv(t)

	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte(
		"DB_DSN=postgres://u:p@localhost:5432/visitas?sslmode=disable\n"+
			"SCAN_DEFAULT_FIRST_PLACE=true\n"+
			"CORS_ALLOWED_ORIGINS=https://a.cl, https://b.cl\n"+
			"TIMEZONE=UTC\n",
	), 0o600))

	// godotenv no pisa variables ya definidas; las vacías de clearEnv cuentan como definidas
	for _, k := range []string{"DB_DSN", "SCAN_DEFAULT_FIRST_PLACE", "CORS_ALLOWED_ORIGINS", "TIMEZONE"} {
		require.NoError(t, os.Unsetenv(k))
	}
	t.Cleanup(func() {
		for _, k := range []string{"DB_DSN", "SCAN_DEFAULT_FIRST_PLACE", "CORS_ALLOWED_ORIGINS", "TIMEZONE"} {
			_ = os.Unsetenv(k)
		}
	})
	t.Setenv("PORT", "9090")

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "postgres://u:p@localhost:5432/visitas?sslmode=disable", cfg.DBDSN)
	assert.False(t, cfg.SeedDevData)
	assert.True(t, cfg.ScanDefaultFirstPlace)
	assert.Equal(t, []string{"https://a.cl", "https://b.cl"}, cfg.CORSOrigins)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	_, err := Load("")
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("DB_AUTOMIGRATE", "maybe")
	_, err = Load("")
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = Load("")
	assert.Error(t, err)
}

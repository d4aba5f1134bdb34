package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	DBDSN         string // vacío => repos en memoria
	DBAutoMigrate bool

	JWTSecret string // vacío => modo dev (X-Debug-User-ID)
	JWTIssuer string

	Location *time.Location

	// Toggle sin lugar usa el primer lugar por id.
	ScanDefaultFirstPlace bool

	CORSOrigins []string

	SeedDevData     bool
	ShutdownTimeout time.Duration
}

// Load lee envFile (si existe) y luego el entorno. Las variables ya
// definidas en el entorno tienen prioridad sobre el archivo.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Config{
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		DBDSN:       strings.TrimSpace(os.Getenv("DB_DSN")),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTIssuer:   strings.TrimSpace(os.Getenv("JWT_ISSUER")),
		CORSOrigins: splitList(env("CORS_ALLOWED_ORIGINS", "*")),
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.HTTPAddr = ":" + port
	}

	var err error
	if cfg.DBAutoMigrate, err = boolEnv("DB_AUTOMIGRATE", true); err != nil {
		return Config{}, err
	}
	if cfg.ScanDefaultFirstPlace, err = boolEnv("SCAN_DEFAULT_FIRST_PLACE", false); err != nil {
		return Config{}, err
	}
	if cfg.SeedDevData, err = boolEnv("SEED_DEV_DATA", cfg.DBDSN == ""); err != nil {
		return Config{}, err
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(env("SHUTDOWN_TIMEOUT", "15s")); err != nil {
		return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	tz := env("TIMEZONE", "America/Santiago")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("TIMEZONE %q: %w", tz, err)
	}

	return cfg, nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/kelas/pkg/httpx"
	"github.com/aussiebroadwan/kelas/pkg/jwtx"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Key storage modes.
const (
	KeyModeEphemeral  = "ephemeral"
	KeyModePersistent = "persistent"
)

type Config struct {
	Issuer   string   // issuer claim for tokens (default: kelas-identity)
	Audience []string // Optional: audiences stamped into and required of every token

	Algorithm      string        // JWT signing algorithm, ES256 or EdDSA (default: EdDSA)
	NumKeys        int           // number of signing keys (default: 3, min: 1, max: 10)
	KeyStorageMode string        // ephemeral or persistent (default: ephemeral)
	KeyGracePeriod time.Duration // lifetime of persisted keys (default: 30 days)
	MasterKeyPath  string        // Optional: master encryption key file for persistent keys
	AccessTTL      time.Duration // access token lifetime (default: 15m)
	RefreshTTL     time.Duration // refresh token lifetime (default: 7 days)

	DatabaseDriver   string // sqlite or postgres (default: sqlite)
	DatabaseFile     string // sqlite database file (default: ./identity.db)
	DatabaseURL      string // postgres DSN, required for the postgres driver
	DatabaseMaxConns int    // pgx pool size (default: 25)
	PepperFile       string // file holding the password pepper (default: ./pepper)
	AutoMigrate      bool   // apply pending migrations on startup (default: true)

	RedisAddr     string // Optional: enables the revocation cache
	RedisPassword string
	RedisDB       int

	BootstrapAdminUsername string // Optional: creates the first admin on startup
	BootstrapAdminPassword string // Optional: generated and logged when empty
	BootstrapAdminEmail    string

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	TrustedProxies       []string      // Optional: CIDRs or addresses allowed to set X-Forwarded-For
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// LoadConfig reads the configuration from the environment. Variables from
// ENV_FILE (default .env) are loaded first without overriding what is
// already set; a missing file is fine.
func LoadConfig() (Config, error) {
	envFile := getEnvOrDefault("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Config{
		Issuer:         getEnvOrDefault("AUTH_ISSUER", "kelas-identity"),
		Audience:       splitList(os.Getenv("AUTH_AUDIENCE")),
		Algorithm:      getEnvOrDefault("AUTH_ALGORITHM", jwtx.AlgorithmEdDSA),
		NumKeys:        getEnvIntOrDefault("AUTH_NUM_KEYS", 3),
		KeyStorageMode: getEnvOrDefault("AUTH_KEY_STORAGE_MODE", KeyModeEphemeral),
		KeyGracePeriod: getEnvDurationOrDefault("AUTH_KEY_GRACE_PERIOD", 30*24*time.Hour),
		MasterKeyPath:  os.Getenv("AUTH_MASTER_KEY_PATH"),
		AccessTTL:      getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:     getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),

		DatabaseDriver:   getEnvOrDefault("AUTH_DATABASE_DRIVER", DriverSQLite),
		DatabaseFile:     getEnvOrDefault("AUTH_DATABASE_FILE", "identity.db"),
		DatabaseURL:      os.Getenv("AUTH_DATABASE_URL"),
		DatabaseMaxConns: getEnvIntOrDefault("AUTH_DATABASE_MAX_CONNS", 25),
		PepperFile:       getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		AutoMigrate:      getEnvBoolOrDefault("AUTH_DATABASE_AUTO_MIGRATE", true),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		BootstrapAdminUsername: os.Getenv("BOOTSTRAP_ADMIN_USERNAME"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		TrustedProxies:       splitList(os.Getenv("TRUSTED_PROXIES")),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	switch c.Algorithm {
	case jwtx.AlgorithmEdDSA, jwtx.AlgorithmES256:
	default:
		return fmt.Errorf("AUTH_ALGORITHM: unsupported algorithm %q (supported: ES256, EdDSA)", c.Algorithm)
	}

	switch c.KeyStorageMode {
	case KeyModeEphemeral, KeyModePersistent:
	default:
		return fmt.Errorf("AUTH_KEY_STORAGE_MODE: unknown mode %q", c.KeyStorageMode)
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("AUTH_DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("AUTH_DATABASE_DRIVER: unknown driver %q", c.DatabaseDriver)
	}

	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("AUTH_ACCESS_TTL and AUTH_REFRESH_TTL must be positive")
	}

	if _, err := httpx.ParseTrustedProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

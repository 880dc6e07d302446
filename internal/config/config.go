// Package config handles application configuration management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oszuidwest/zwfm-lnkgen/internal/bin2lnk"
	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Generator GeneratorConfig
	Archive   ArchiveConfig
	// LogLevel controls logging verbosity ("info" or "debug")
	LogLevel    LogLevel
	Environment Environment
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address string
	// AllowedOrigins is a comma separated CORS allow list; empty disables CORS
	AllowedOrigins string
}

// DatabaseConfig holds MySQL database connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// AuthConfig holds API key configuration.
type AuthConfig struct {
	// APIKeys are parsed from LNKGEN_API_KEYS as comma separated role:bcrypt-hash pairs
	APIKeys []APIKey
}

// APIKey binds a bcrypt hash of a client key to a role.
type APIKey struct {
	Role string
	Hash string
}

// GeneratorConfig holds script generation settings.
type GeneratorConfig struct {
	OutputPath string
	// RouteTemplatePath replaces the built-in route skeleton when set
	RouteTemplatePath string
	BusBitRate        int
	LoopCount         int
	Bin2LnkVersion    int
	// RestoreShapes resets the 192k frame shape patch after every script
	RestoreShapes bool
}

// ArchiveConfig controls how long generated scripts are kept.
type ArchiveConfig struct {
	Retention       time.Duration
	CleanupInterval time.Duration
}

// Load reads configuration from environment variables and creates required directories.
func Load() (*Config, error) {
	var errs []string
	intVar := func(key string, def int) int {
		v, err := getEnvInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	durationVar := func(key string, def time.Duration) time.Duration {
		v, err := getEnvDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}

	keys, err := ParseAPIKeys(getEnv("LNKGEN_API_KEYS", ""))
	if err != nil {
		errs = append(errs, err.Error())
	}

	cfg := &Config{
		Server: ServerConfig{
			Address:        getEnv("LNKGEN_SERVER_ADDRESS", ":8080"),
			AllowedOrigins: getEnv("LNKGEN_ALLOWED_ORIGINS", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("LNKGEN_DB_HOST", "localhost"),
			Port:     intVar("LNKGEN_DB_PORT", 3306),
			User:     getEnv("LNKGEN_DB_USER", "lnkgen"),
			Password: getEnv("LNKGEN_DB_PASSWORD", "lnkgen"),
			Database: getEnv("LNKGEN_DB_NAME", "lnkgen"),
		},
		Auth: AuthConfig{
			APIKeys: keys,
		},
		Generator: GeneratorConfig{
			OutputPath:        getEnv("LNKGEN_OUTPUT_PATH", "./scripts"),
			RouteTemplatePath: getEnv("LNKGEN_ROUTE_TEMPLATE", ""),
			BusBitRate:        intVar("LNKGEN_BUS_BIT_RATE", swire.DefaultBusBitRate),
			LoopCount:         intVar("LNKGEN_LOOP_COUNT", swire.DefaultLoopCount),
			Bin2LnkVersion:    intVar("LNKGEN_BIN2LNK_VERSION", bin2lnk.DefaultVersion),
			RestoreShapes:     getEnv("LNKGEN_RESTORE_SHAPES", "false") == "true",
		},
		Archive: ArchiveConfig{
			Retention:       durationVar("LNKGEN_ARCHIVE_RETENTION", 720*time.Hour),
			CleanupInterval: durationVar("LNKGEN_ARCHIVE_CLEANUP_INTERVAL", time.Hour),
		},
		LogLevel:    LogLevel(getEnv("LNKGEN_LOG_LEVEL", string(LogLevelInfo))),
		Environment: Environment(getEnv("LNKGEN_ENV", string(EnvDevelopment))),
	}

	if !cfg.Environment.IsValid() {
		errs = append(errs, fmt.Sprintf("LNKGEN_ENV: unknown environment %q", cfg.Environment))
	}
	if !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Sprintf("LNKGEN_LOG_LEVEL: unknown level %q", cfg.LogLevel))
	}
	if cfg.Generator.BusBitRate <= 0 {
		errs = append(errs, "LNKGEN_BUS_BIT_RATE must be positive")
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	// #nosec G301 - 0755 is appropriate for generated scripts shared with the analyzer host
	if err := os.MkdirAll(cfg.Generator.OutputPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", cfg.Generator.OutputPath, err)
	}

	return cfg, nil
}

// ParseAPIKeys parses "role:hash,role:hash". Empty input yields no keys.
func ParseAPIKeys(raw string) ([]APIKey, error) {
	var keys []APIKey
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		role, hash, ok := strings.Cut(entry, ":")
		if !ok || role == "" || hash == "" {
			return nil, fmt.Errorf("LNKGEN_API_KEYS: entry %q is not role:hash", entry)
		}
		keys = append(keys, APIKey{Role: role, Hash: hash})
	}
	return keys, nil
}

// getEnv returns the value of the environment variable key, or defaultValue if unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %q is not an integer", key, value)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %q is not a duration", key, value)
	}
	return d, nil
}

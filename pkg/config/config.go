package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// CookieConfig holds the attributes applied to every session cookie.
type CookieConfig struct {
	Secure   bool   `yaml:"secure"`
	SameSite string `yaml:"same_site"` // lax, strict or none
	Domain   string `yaml:"domain"`
	Path     string `yaml:"path"`
}

type Config struct {
	Port                 string        `yaml:"port"`
	GinMode              string        `yaml:"gin_mode"`
	StorageDriver        string        `yaml:"storage_driver"`
	DatabaseURL          string        `yaml:"database_url"`
	AccessTokenSecret    string        `yaml:"access_token_secret"`
	RefreshTokenSecret   string        `yaml:"refresh_token_secret"`
	AccessTokenExpiry    time.Duration `yaml:"access_token_expiry"`
	RefreshTokenExpiry   time.Duration `yaml:"refresh_token_expiry"`
	BcryptCost           int           `yaml:"bcrypt_cost"`
	Cookie               CookieConfig  `yaml:"cookie"`
	CORSOrigin           string        `yaml:"cors_origin"`
	SessionSweepInterval time.Duration `yaml:"session_sweep_interval"`
	LogLevel             string        `yaml:"log_level"`
	LogFormat            string        `yaml:"log_format"`
}

// Default returns a configuration with every optional value filled in.
// Token secrets and the database URL have no defaults.
func Default() *Config {
	return &Config{
		Port:               "8080",
		GinMode:            "release",
		StorageDriver:      StorageDriverPostgres,
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour, // 7 days
		BcryptCost:         bcrypt.DefaultCost,
		Cookie: CookieConfig{
			Secure:   true,
			SameSite: "lax",
			Path:     "/",
		},
		SessionSweepInterval: time.Hour,
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, a .env file and finally the process environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Default()

	if err := loadYAML(os.Getenv("CONFIG_FILE"), cfg); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML overlays cfg with the file at path. A missing path or file is not an error.
func loadYAML(path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.StorageDriver = strings.ToLower(getEnv("STORAGE_DRIVER", cfg.StorageDriver))
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.AccessTokenSecret = getEnv("ACCESS_TOKEN_SECRET", cfg.AccessTokenSecret)
	cfg.RefreshTokenSecret = getEnv("REFRESH_TOKEN_SECRET", cfg.RefreshTokenSecret)
	cfg.Cookie.SameSite = strings.ToLower(getEnv("COOKIE_SAME_SITE", cfg.Cookie.SameSite))
	cfg.Cookie.Domain = getEnv("COOKIE_DOMAIN", cfg.Cookie.Domain)
	cfg.Cookie.Path = getEnv("COOKIE_PATH", cfg.Cookie.Path)
	cfg.CORSOrigin = getEnv("CORS_ORIGIN", cfg.CORSOrigin)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", cfg.LogFormat))

	var err error
	if cfg.AccessTokenExpiry, err = getEnvDuration("ACCESS_TOKEN_EXPIRY", cfg.AccessTokenExpiry); err != nil {
		return err
	}
	if cfg.RefreshTokenExpiry, err = getEnvDuration("REFRESH_TOKEN_EXPIRY", cfg.RefreshTokenExpiry); err != nil {
		return err
	}
	if cfg.SessionSweepInterval, err = getEnvDuration("SESSION_SWEEP_INTERVAL", cfg.SessionSweepInterval); err != nil {
		return err
	}
	if cfg.BcryptCost, err = getEnvInt("BCRYPT_COST", cfg.BcryptCost); err != nil {
		return err
	}
	if cfg.Cookie.Secure, err = getEnvBool("COOKIE_SECURE", cfg.Cookie.Secure); err != nil {
		return err
	}
	return nil
}

// Validate reports the first setting that would leave the service unable to
// issue or verify sessions.
func (c *Config) Validate() error {
	if c.AccessTokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET is required")
	}
	if c.RefreshTokenSecret == "" {
		return errors.New("REFRESH_TOKEN_SECRET is required")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.AccessTokenExpiry <= 0 {
		return fmt.Errorf("access token expiry must be positive, got %s", c.AccessTokenExpiry)
	}
	if c.RefreshTokenExpiry <= c.AccessTokenExpiry {
		return fmt.Errorf("refresh token expiry (%s) must exceed access token expiry (%s)",
			c.RefreshTokenExpiry, c.AccessTokenExpiry)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost %d out of range [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres storage driver")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	switch c.Cookie.SameSite {
	case "lax", "strict":
	case "none":
		if !c.Cookie.Secure {
			return errors.New("same-site none cookies must be secure")
		}
	default:
		return fmt.Errorf("unknown cookie same-site mode %q", c.Cookie.SameSite)
	}

	if c.SessionSweepInterval < 0 {
		return fmt.Errorf("session sweep interval must not be negative, got %s", c.SessionSweepInterval)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

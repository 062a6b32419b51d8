package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/authsvc/auth-service/util/random"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// bcrypt accepts costs in [4, 31].
const (
	minBcryptCost = 4
	maxBcryptCost = 31
)

// Config is the runtime configuration of the service, read from the environment.
type Config struct {
	Listen   string `env:"AUTH_LISTEN"`
	Port     int    `env:"AUTH_PORT" envDefault:"5501"`
	TLS      TLSConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Cookie   CookieConfig
	Jobs     JobsConfig
}

// TLSConfig enables HTTPS when both files are set.
type TLSConfig struct {
	CertFile string `env:"AUTH_CERT_FILE"`
	KeyFile  string `env:"AUTH_KEY_FILE"`
}

func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// AuthConfig holds token signing and password hashing settings.
type AuthConfig struct {
	JWTSecret          string        `env:"JWT_SECRET"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET"`
	PrivateKeyPath     string        `env:"ACCESS_TOKEN_PRIVATE_KEY_PATH"`
	Issuer             string        `env:"JWT_ISSUER" envDefault:"auth-service"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"8760h"`
	BcryptCost         int           `env:"BCRYPT_COST" envDefault:"10"`
}

// CookieConfig controls the attributes of the token cookies.
type CookieConfig struct {
	Domain string `env:"COOKIE_DOMAIN" envDefault:"localhost"`
	Secure bool   `env:"COOKIE_SECURE" envDefault:"false"`
}

// JobsConfig holds cron specs of background jobs.
type JobsConfig struct {
	RefreshTokenPurgeCron string `env:"REFRESH_TOKEN_PURGE_CRON" envDefault:"@hourly"`
}

// Load reads an optional .env file (AUTH_ENV_FILE, default ".env") and then
// parses the process environment into a Config.
func Load() (*Config, error) {
	envFile := os.Getenv("AUTH_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Database.SQLite.Path == "" {
		cfg.Database.SQLite.Path = getDefaultSQLitePath()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration. In debug mode missing signing secrets are
// replaced with random ones so a local server can start without setup.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("AUTH_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return errors.New("AUTH_CERT_FILE and AUTH_KEY_FILE must be set together")
	}
	if c.Auth.PrivateKeyPath == "" && c.Auth.JWTSecret == "" {
		if !IsDebug() {
			return errors.New("JWT_SECRET or ACCESS_TOKEN_PRIVATE_KEY_PATH must be set")
		}
		c.Auth.JWTSecret = random.Secret(32)
	}
	if c.Auth.RefreshTokenSecret == "" {
		if !IsDebug() {
			return errors.New("REFRESH_TOKEN_SECRET must be set")
		}
		c.Auth.RefreshTokenSecret = random.Secret(32)
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be positive")
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("REFRESH_TOKEN_TTL must be positive")
	}
	if c.Auth.BcryptCost < minBcryptCost || c.Auth.BcryptCost > maxBcryptCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", minBcryptCost, maxBcryptCost)
	}
	if strings.TrimSpace(c.Auth.Issuer) == "" {
		return errors.New("JWT_ISSUER cannot be empty")
	}
	return c.Database.ValidateConfig()
}

// String returns a representation of the config with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Listen: %q, Port: %d, TLS: %t, DB: %s, Auth: *** (masked) ***, Cookie: %s}",
		c.Listen, c.Port, c.TLS.Enabled(), c.Database.Type, c.Cookie.Domain)
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("AUTH_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("AUTH_DEBUG") == "true"
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("AUTH_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

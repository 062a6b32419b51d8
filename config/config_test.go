package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AUTH_DEBUG", "AUTH_PORT", "JWT_SECRET", "REFRESH_TOKEN_SECRET",
		"ACCESS_TOKEN_PRIVATE_KEY_PATH", "ACCESS_TOKEN_TTL", "BCRYPT_COST", "DB_TYPE",
		"DB_SQLITE_PATH",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	// no .env from the working directory
	t.Setenv("AUTH_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5501, cfg.Port)
	assert.Equal(t, DatabaseTypeSQLite, cfg.Database.Type)
	assert.NotEmpty(t, cfg.Database.SQLite.Path)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 365*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "localhost", cfg.Cookie.Domain)
	assert.Equal(t, "@hourly", cfg.Jobs.RefreshTokenPurgeCron)
}

func TestLoad_RequiresSecretsOutsideDebug(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "access")
	_, err = Load()
	require.Error(t, err, "refresh secret is still missing")

	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")
	_, err = Load()
	require.NoError(t, err)
}

func TestLoad_DebugGeneratesSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
	assert.NotEmpty(t, cfg.Auth.RefreshTokenSecret)
	assert.NotEqual(t, cfg.Auth.JWTSecret, cfg.Auth.RefreshTokenSecret)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	content := "JWT_SECRET=from-file\nREFRESH_TOKEN_SECRET=refresh-from-file\nAUTH_PORT=6000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("AUTH_ENV_FILE", path)
	t.Cleanup(func() {
		os.Unsetenv("AUTH_PORT")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 6000, cfg.Port)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	valid := func() *Config {
		return &Config{
			Port: 5501,
			Database: DatabaseConfig{
				Type:   DatabaseTypeSQLite,
				SQLite: SQLiteConfig{Path: "auth.db"},
			},
			Auth: AuthConfig{
				JWTSecret:          "a",
				RefreshTokenSecret: "b",
				Issuer:             "auth-service",
				AccessTokenTTL:     time.Minute,
				RefreshTokenTTL:    time.Hour,
				BcryptCost:         10,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.Auth.BcryptCost = 3 }, wantErr: true},
		{name: "bcrypt cost too high", mutate: func(c *Config) { c.Auth.BcryptCost = 32 }, wantErr: true},
		{name: "zero access ttl", mutate: func(c *Config) { c.Auth.AccessTokenTTL = 0 }, wantErr: true},
		{name: "empty issuer", mutate: func(c *Config) { c.Auth.Issuer = " " }, wantErr: true},
		{name: "key path instead of secret", mutate: func(c *Config) {
			c.Auth.JWTSecret = ""
			c.Auth.PrivateKeyPath = "/keys/private.pem"
		}},
		{name: "cert without key", mutate: func(c *Config) { c.TLS.CertFile = "cert.pem" }, wantErr: true},
		{name: "cert and key", mutate: func(c *Config) {
			c.TLS = TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"}
		}},
		{name: "unsupported database", mutate: func(c *Config) { c.Database.Type = "mysql" }, wantErr: true},
		{name: "postgres without host", mutate: func(c *Config) {
			c.Database.Type = DatabaseTypePostgreSQL
			c.Database.Postgres = PostgresConfig{Database: "auth", Username: "u", Port: 5432}
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{JWTSecret: "super-secret", RefreshTokenSecret: "another"}}
	s := cfg.String()
	assert.NotContains(t, s, "super-secret")
	assert.NotContains(t, s, "another")
}

func TestSQLiteDSN(t *testing.T) {
	file := DatabaseConfig{Type: DatabaseTypeSQLite, SQLite: SQLiteConfig{Path: "db/auth.db"}}
	assert.Equal(t, "db/auth.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL", file.GetDSN())

	mem := DatabaseConfig{Type: DatabaseTypeSQLite, SQLite: SQLiteConfig{Path: "file:x?mode=memory&cache=shared"}}
	assert.True(t, mem.IsMemory())
	assert.Equal(t, "file:x?mode=memory&cache=shared&_busy_timeout=5000&_foreign_keys=on", mem.GetDSN())

	pg := DatabaseConfig{Type: DatabaseTypePostgreSQL, Postgres: PostgresConfig{
		Host: "db", Port: 5432, Database: "auth", Username: "u", Password: "p", SSLMode: "disable", TimeZone: "UTC",
	}}
	assert.Equal(t, "host=db user=u password=p dbname=auth port=5432 sslmode=disable TimeZone=UTC", pg.GetDSN())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "job_listing.db", cfg.Database.Path)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 12*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 10, cfg.Auth.LoginRateLimitPerHour)
	assert.Equal(t, "admin123", cfg.Seed.AdminPassword)
	assert.True(t, cfg.Seed.SampleJobs)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("API_ALLOWED_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_PATH", "/tmp/jobs.db")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "30m")
	t.Setenv("SEED_SAMPLE_JOBS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.API.AllowedOrigins)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/jobs.db", cfg.Database.Path)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.False(t, cfg.Seed.SampleJobs)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
}

func TestValidateDatabase(t *testing.T) {
	assert.Error(t, ValidateDatabase(DatabaseConfig{Driver: DriverSQLite}))
	assert.NoError(t, ValidateDatabase(DatabaseConfig{Driver: DriverSQLite, Path: "x.db"}))

	pg := DatabaseConfig{
		Driver:   DriverPostgres,
		Host:     "db",
		Port:     5432,
		Name:     "jobs",
		User:     "u",
		Password: "p",
		SSLMode:  "disable",
	}
	assert.NoError(t, ValidateDatabase(pg))
	assert.Contains(t, pg.DSN(), "host=db port=5432")

	pg.Host = ""
	assert.Error(t, ValidateDatabase(pg))
}

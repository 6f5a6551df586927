package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
    t.Setenv("APP_ENV", "test")
    t.Setenv("APP_PORT", "8080")
    t.Setenv("SESSION_SECRET", "s3cret")
    t.Setenv("DB_HOST", "")

    cfg := Load()
    assert.Equal(t, "8080", cfg.Port)
    assert.False(t, cfg.UseMySQL())
    assert.Equal(t, 30*time.Minute, cfg.SessionIdle)
    assert.Equal(t, "sha256", cfg.HashAlgorithm)
    assert.Equal(t, "wwwroot/movie-posters", cfg.UploadDir)
    assert.Equal(t, "/movie-posters", cfg.UploadURLPrefix)
}

func TestLoadOverrides(t *testing.T) {
    t.Setenv("APP_ENV", "prod")
    t.Setenv("APP_PORT", "9000")
    t.Setenv("SESSION_SECRET", "s3cret")
    t.Setenv("SESSION_IDLE_MIN", "5")
    t.Setenv("HASH_ALGORITHM", "blake2b")
    t.Setenv("DB_HOST", "db")
    t.Setenv("DB_USER", "cinema")
    t.Setenv("DB_NAME", "bcinema")
    t.Setenv("RABBITMQ_URL", "amqp://mq/")

    cfg := Load()
    assert.True(t, cfg.UseMySQL())
    assert.Equal(t, "3306", cfg.DBPort)
    assert.Equal(t, 5*time.Minute, cfg.SessionIdle)
    assert.Equal(t, "blake2b", cfg.HashAlgorithm)
    assert.Equal(t, "amqp://mq/", cfg.AMQPURL)
}

func TestRateLimitConfigClamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_LOGIN_MAX", "0")
    t.Setenv("RATE_LIMIT_LOGIN_WINDOW", "10ms")
    rl := LoadRateLimitConfig()
    assert.Equal(t, 1, rl.Limit)
    assert.Equal(t, time.Second, rl.Window)

    t.Setenv("CACHE_ENABLED", "off")
    assert.False(t, LoadCacheConfig().Enabled)
}

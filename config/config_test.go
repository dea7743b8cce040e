package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_AUTO_MIGRATE", "REDIS_ADDR", "KAFKA_BROKERS",
		"JAEGER_ENDPOINT", "TRACE_SAMPLE_RATIO", "CORS_ALLOWED_ORIGINS", "ORDER_TOKEN_RETRIES", "TOKEN_LOCK_TTL_SECONDS",
		"IDEMPOTENCY_TTL_SECONDS", "REPORT_CACHE_TTL_SECONDS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.Empty(t, cfg.Observ.JaegerEndpoint)
	assert.Equal(t, 1.0, cfg.Observ.TraceSampleRatio)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000", "http://127.0.0.1:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 3, cfg.Business.TokenRetries)
	assert.Equal(t, 5*time.Second, cfg.Business.TokenLockTTL)
	assert.Equal(t, 24*time.Hour, cfg.Business.IdempotencyTTL)
	assert.Equal(t, time.Minute, cfg.Business.ReportCacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "5000")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://pos.example.com")
	t.Setenv("ORDER_TOKEN_RETRIES", "5")
	t.Setenv("TRACE_SAMPLE_RATIO", "0.25")
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "0")

	cfg := Load()

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, []string{"https://pos.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5, cfg.Business.TokenRetries)
	assert.Equal(t, 0.25, cfg.Observ.TraceSampleRatio)
	assert.Equal(t, time.Duration(0), cfg.Business.ReportCacheTTL)
}

func TestMalformedNumbersFallBack(t *testing.T) {
	t.Setenv("ORDER_TOKEN_RETRIES", "many")
	t.Setenv("DB_AUTO_MIGRATE", "sometimes")

	cfg := Load()

	assert.Equal(t, 3, cfg.Business.TokenRetries)
	assert.True(t, cfg.Database.AutoMigrate)
}

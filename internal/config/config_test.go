package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6*time.Hour, cfg.Business.RefundWindow)
	assert.Equal(t, 5, cfg.Business.ReviewReportThreshold)
	assert.Equal(t, 3, cfg.Business.SMSMaxRetries)
	assert.Equal(t, 96*time.Hour, cfg.Business.ShippingLeadTime)
	assert.Equal(t, "guest_session", cfg.Auth.GuestCookieName)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, 20, cfg.Redis.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
	assert.Equal(t, 3*time.Second, cfg.Redis.ReadTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REFUND_WINDOW", "2h")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com")
	t.Setenv("REDIS_POOL_SIZE", "64")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.Business.RefundWindow)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, []string{"https://shop.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 64, cfg.Redis.PoolSize)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SMS_STALE_AFTER", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "SMS_STALE_AFTER")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestConfig_GetDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "shop", SSLMode: "disable"}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=disable", cfg.GetDSN())
}

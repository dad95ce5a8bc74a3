package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env          string
	LogLevel     string
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	NATS         NATSConfig
	Mongo        MongoConfig
	Kafka        KafkaConfig
	Cache        CacheConfig
	Auth         AuthConfig
	Stripe       StripeConfig
	SendGrid     SendGridConfig
	Twilio       TwilioConfig
	Business     BusinessConfig
	Notification NotificationConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	AllowedOrigins  []string
	AutoMigrate     bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL string
}

// MongoConfig holds MongoDB configuration
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// KafkaConfig holds the analytics stream configuration; empty brokers disable it
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether analytics events are streamed to Kafka
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// CacheConfig holds caching TTL configuration
type CacheConfig struct {
	ReviewsListTTL  time.Duration
	WebhookDedupTTL time.Duration
	SMSTickLockTTL  time.Duration
}

// AuthConfig holds token and session settings
type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	CronToken       string
	GuestCookieName string
	GuestCookieTTL  time.Duration
	SecureCookies   bool
}

// StripeConfig holds payment gateway credentials
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

// SendGridConfig holds email sender settings; an empty key logs instead of sending
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// TwilioConfig holds SMS gateway settings; an empty SID logs instead of sending
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// BusinessConfig holds storefront rules
type BusinessConfig struct {
	RefundWindow          time.Duration
	ReviewReportThreshold int
	ShippingLeadTime      time.Duration
	LowStockThreshold     int
	SMSMaxRetries         int
	SMSBatchSize          int
	SMSStaleAfter         time.Duration
	SMSRetryBaseDelay     time.Duration
}

// NotificationConfig holds the JetStream task queue settings
type NotificationConfig struct {
	Subject      string
	Stream       string
	Consumer     string
	MaxDeliver   int
	AckWait      time.Duration
	FetchBatch   int
	FetchMaxWait time.Duration
}

// Load reads configuration from environment variables (and an optional .env file)
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "30s")
	viper.SetDefault("SERVER_REQUEST_TIMEOUT", "30s")
	viper.SetDefault("SERVER_AUTO_MIGRATE", true)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8080")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "storefront")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_POOL_SIZE", 20)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	viper.SetDefault("REDIS_READ_TIMEOUT", "3s")
	viper.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	viper.SetDefault("NATS_URL", "nats://localhost:4222")

	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "storefront")
	viper.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")

	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_ANALYTICS_TOPIC", "product-events")

	viper.SetDefault("CACHE_TTL_REVIEWS_LIST", "120s")
	viper.SetDefault("CACHE_TTL_WEBHOOK_DEDUP", "72h")
	viper.SetDefault("CACHE_TTL_SMS_TICK_LOCK", "2m")

	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_ISSUER", "storefront")
	viper.SetDefault("CRON_TOKEN", "")
	viper.SetDefault("GUEST_COOKIE_NAME", "guest_session")
	viper.SetDefault("GUEST_COOKIE_TTL", "720h")
	viper.SetDefault("SECURE_COOKIES", false)

	viper.SetDefault("STRIPE_SECRET_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("STRIPE_CURRENCY", "usd")

	viper.SetDefault("SENDGRID_API_KEY", "")
	viper.SetDefault("SENDGRID_FROM_EMAIL", "orders@example.com")
	viper.SetDefault("SENDGRID_FROM_NAME", "Storefront")

	viper.SetDefault("TWILIO_ACCOUNT_SID", "")
	viper.SetDefault("TWILIO_AUTH_TOKEN", "")
	viper.SetDefault("TWILIO_FROM_NUMBER", "")

	viper.SetDefault("REFUND_WINDOW", "6h")
	viper.SetDefault("REVIEW_REPORT_THRESHOLD", 5)
	viper.SetDefault("SHIPPING_LEAD_TIME", "96h")
	viper.SetDefault("LOW_STOCK_THRESHOLD", 5)
	viper.SetDefault("SMS_MAX_RETRIES", 3)
	viper.SetDefault("SMS_BATCH_SIZE", 50)
	viper.SetDefault("SMS_STALE_AFTER", "5m")
	viper.SetDefault("SMS_RETRY_BASE_DELAY", "1m")

	viper.SetDefault("NOTIFY_SUBJECT", "notifications.tasks")
	viper.SetDefault("NOTIFY_STREAM", "NOTIFICATIONS")
	viper.SetDefault("NOTIFY_CONSUMER", "notifier")
	viper.SetDefault("NOTIFY_MAX_DELIVER", 3)
	viper.SetDefault("NOTIFY_ACK_WAIT", "30s")
	viper.SetDefault("NOTIFY_FETCH_BATCH", 10)
	viper.SetDefault("NOTIFY_FETCH_MAX_WAIT", "5s")

	durations := make(map[string]time.Duration)
	keys := []string{
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT", "SERVER_REQUEST_TIMEOUT",
		"DB_CONN_MAX_LIFETIME", "MONGO_CONNECT_TIMEOUT",
		"REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
		"CACHE_TTL_REVIEWS_LIST", "CACHE_TTL_WEBHOOK_DEDUP", "CACHE_TTL_SMS_TICK_LOCK",
		"GUEST_COOKIE_TTL", "REFUND_WINDOW", "SHIPPING_LEAD_TIME", "SMS_STALE_AFTER", "SMS_RETRY_BASE_DELAY",
		"NOTIFY_ACK_WAIT", "NOTIFY_FETCH_MAX_WAIT",
	}
	for _, key := range keys {
		d, err := time.ParseDuration(viper.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		durations[key] = d
	}
	dur := func(key string) time.Duration { return durations[key] }

	config := &Config{
		Env:      viper.GetString("ENV"),
		LogLevel: viper.GetString("LOG_LEVEL"),
		Server: ServerConfig{
			Port:            viper.GetString("SERVER_PORT"),
			ReadTimeout:     dur("SERVER_READ_TIMEOUT"),
			WriteTimeout:    dur("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: dur("SERVER_SHUTDOWN_TIMEOUT"),
			RequestTimeout:  dur("SERVER_REQUEST_TIMEOUT"),
			AllowedOrigins:  splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			AutoMigrate:     viper.GetBool("SERVER_AUTO_MIGRATE"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetString("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: dur("DB_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Host:         viper.GetString("REDIS_HOST"),
			Port:         viper.GetString("REDIS_PORT"),
			Password:     viper.GetString("REDIS_PASSWORD"),
			DB:           viper.GetInt("REDIS_DB"),
			PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
			DialTimeout:  dur("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  dur("REDIS_READ_TIMEOUT"),
			WriteTimeout: dur("REDIS_WRITE_TIMEOUT"),
		},
		NATS: NATSConfig{
			URL: viper.GetString("NATS_URL"),
		},
		Mongo: MongoConfig{
			URI:            viper.GetString("MONGO_URI"),
			Database:       viper.GetString("MONGO_DATABASE"),
			ConnectTimeout: dur("MONGO_CONNECT_TIMEOUT"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(viper.GetString("KAFKA_BROKERS")),
			Topic:   viper.GetString("KAFKA_ANALYTICS_TOPIC"),
		},
		Cache: CacheConfig{
			ReviewsListTTL:  dur("CACHE_TTL_REVIEWS_LIST"),
			WebhookDedupTTL: dur("CACHE_TTL_WEBHOOK_DEDUP"),
			SMSTickLockTTL:  dur("CACHE_TTL_SMS_TICK_LOCK"),
		},
		Auth: AuthConfig{
			JWTSecret:       viper.GetString("JWT_SECRET"),
			JWTIssuer:       viper.GetString("JWT_ISSUER"),
			CronToken:       viper.GetString("CRON_TOKEN"),
			GuestCookieName: viper.GetString("GUEST_COOKIE_NAME"),
			GuestCookieTTL:  dur("GUEST_COOKIE_TTL"),
			SecureCookies:   viper.GetBool("SECURE_COOKIES"),
		},
		Stripe: StripeConfig{
			SecretKey:     viper.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: viper.GetString("STRIPE_WEBHOOK_SECRET"),
			Currency:      strings.ToLower(viper.GetString("STRIPE_CURRENCY")),
		},
		SendGrid: SendGridConfig{
			APIKey:    viper.GetString("SENDGRID_API_KEY"),
			FromEmail: viper.GetString("SENDGRID_FROM_EMAIL"),
			FromName:  viper.GetString("SENDGRID_FROM_NAME"),
		},
		Twilio: TwilioConfig{
			AccountSID: viper.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:  viper.GetString("TWILIO_AUTH_TOKEN"),
			FromNumber: viper.GetString("TWILIO_FROM_NUMBER"),
		},
		Business: BusinessConfig{
			RefundWindow:          dur("REFUND_WINDOW"),
			ReviewReportThreshold: viper.GetInt("REVIEW_REPORT_THRESHOLD"),
			ShippingLeadTime:      dur("SHIPPING_LEAD_TIME"),
			LowStockThreshold:     viper.GetInt("LOW_STOCK_THRESHOLD"),
			SMSMaxRetries:         viper.GetInt("SMS_MAX_RETRIES"),
			SMSBatchSize:          viper.GetInt("SMS_BATCH_SIZE"),
			SMSStaleAfter:         dur("SMS_STALE_AFTER"),
			SMSRetryBaseDelay:     dur("SMS_RETRY_BASE_DELAY"),
		},
		Notification: NotificationConfig{
			Subject:      viper.GetString("NOTIFY_SUBJECT"),
			Stream:       viper.GetString("NOTIFY_STREAM"),
			Consumer:     viper.GetString("NOTIFY_CONSUMER"),
			MaxDeliver:   viper.GetInt("NOTIFY_MAX_DELIVER"),
			AckWait:      dur("NOTIFY_ACK_WAIT"),
			FetchBatch:   viper.GetInt("NOTIFY_FETCH_BATCH"),
			FetchMaxWait: dur("NOTIFY_FETCH_MAX_WAIT"),
		},
	}

	if config.Env == "production" && config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

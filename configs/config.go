package configs

import (
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// maskPassword masks the password in a database URL for safe logging.
// Anything that does not parse as a URL with credentials is hidden
// entirely rather than risk echoing part of a secret.
func maskPassword(dsn string) string {
	if dsn == "" {
		return ""
	}
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return "***"
	}
	return u.Redacted()
}

// Config holds all configuration values
type Config struct {
	Port      string
	JWTSecret string
	JWTExpire time.Duration

	DatabaseURL      string
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string

	RedisURL string

	KafkaBrokers      []string
	NotificationTopic string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	BillingWebhookSecret string
}

var (
	ConfigInstance *Config
	once           sync.Once
)

// Load loads configuration from .env file
func Load() *Config {
	once.Do(func() {
		// Viper setup
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
		viper.AddConfigPath(".")

		// Set defaults
		viper.SetDefault("SOUND_PORT", "8080")
		viper.SetDefault("SOUND_JWT_SECRET", "secret")
		viper.SetDefault("SOUND_JWT_EXPIRE", "24h")
		viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
		viper.SetDefault("POSTGRES_USER", "postgres")
		viper.SetDefault("POSTGRES_PASSWORD", "password")
		viper.SetDefault("POSTGRES_HOST", "localhost")
		viper.SetDefault("POSTGRES_PORT", "5432")
		viper.SetDefault("POSTGRES_DB", "postgres")
		viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
		viper.SetDefault("NOTIFICATION_TOPIC", "notification-events")
		viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
		viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
		viper.SetDefault("MINIO_SECRET_KEY", "minioadmin")
		viper.SetDefault("MINIO_BUCKET", "sounds")
		viper.SetDefault("MINIO_USE_SSL", false)
		viper.SetDefault("BILLING_WEBHOOK_SECRET", "whsec")
		viper.AutomaticEnv()

		// Read the .env file
		if err := viper.ReadInConfig(); err != nil {
			log.Printf("Warning: Error reading .env file: %v", err)
			log.Printf("Using environment variables and defaults")
		}

		expire := viper.GetString("SOUND_JWT_EXPIRE")
		jwtExpire, err := time.ParseDuration(expire)
		if err != nil {
			log.Fatal("Invalid SOUND_JWT_EXPIRE format")
		}

		databaseURL := viper.GetString("DATABASE_URL")
		if databaseURL != "" {
			log.Printf("Using DATABASE_URL: %s", maskPassword(databaseURL))
		}

		ConfigInstance = &Config{
			Port:      viper.GetString("SOUND_PORT"),
			JWTSecret: viper.GetString("SOUND_JWT_SECRET"),
			JWTExpire: jwtExpire,

			DatabaseURL:      databaseURL,
			PostgresUser:     viper.GetString("POSTGRES_USER"),
			PostgresPassword: viper.GetString("POSTGRES_PASSWORD"),
			PostgresHost:     viper.GetString("POSTGRES_HOST"),
			PostgresPort:     viper.GetString("POSTGRES_PORT"),
			PostgresDB:       viper.GetString("POSTGRES_DB"),

			RedisURL: viper.GetString("REDIS_URL"),

			KafkaBrokers:      strings.Split(viper.GetString("KAFKA_BROKERS"), ","),
			NotificationTopic: viper.GetString("NOTIFICATION_TOPIC"),

			MinioEndpoint:  viper.GetString("MINIO_ENDPOINT"),
			MinioAccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			MinioSecretKey: viper.GetString("MINIO_SECRET_KEY"),
			MinioBucket:    viper.GetString("MINIO_BUCKET"),
			MinioUseSSL:    viper.GetBool("MINIO_USE_SSL"),

			BillingWebhookSecret: viper.GetString("BILLING_WEBHOOK_SECRET"),
		}
	})
	return ConfigInstance
}

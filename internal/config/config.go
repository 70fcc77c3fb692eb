package config

import (
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret используется, если JWT_SECRET не задан.
const DefaultJWTSecret = "default-secret-change-in-production"

// Config содержит конфигурацию приложения.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	TokenExpiration time.Duration

	CourierAPIURL   string
	CourierAPIKey   string
	CourierTimeout  time.Duration
	CourierCacheTTL time.Duration

	ConversionAPIURL      string
	ConversionPixelID     string
	ConversionAccessToken string

	SMSAPIURL   string
	SMSAPIKey   string
	SMSSenderID string

	EmailAPIURL string
	EmailAPIKey string
	AdminEmail  string

	RabbitMQURL         string
	OrderEventsExchange string

	JaegerEndpoint string
	NotifyTimeout  time.Duration
}

// Load загружает конфигурацию из .env, флагов командной строки и переменных окружения.
// Приоритет: переменные окружения > флаги > значения по умолчанию.
func Load() *Config {
	// .env необязателен
	_ = godotenv.Load()

	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "адрес и порт запуска сервиса")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "строка подключения к PostgreSQL")
	flag.DurationVar(&cfg.TokenExpiration, "t", 24*time.Hour, "время жизни токена администратора")
	flag.Parse()

	stringFromEnv(&cfg.RunAddress, "RUN_ADDRESS")
	stringFromEnv(&cfg.DatabaseURI, "DATABASE_URI")
	durationFromEnv(&cfg.TokenExpiration, "TOKEN_EXPIRATION")

	// JWT секрет
	cfg.JWTSecret = DefaultJWTSecret
	stringFromEnv(&cfg.JWTSecret, "JWT_SECRET")

	cfg.CourierTimeout = 8 * time.Second
	cfg.CourierCacheTTL = 10 * time.Minute
	stringFromEnv(&cfg.CourierAPIURL, "COURIER_API_URL")
	stringFromEnv(&cfg.CourierAPIKey, "COURIER_API_KEY")
	durationFromEnv(&cfg.CourierTimeout, "COURIER_TIMEOUT")
	durationFromEnv(&cfg.CourierCacheTTL, "COURIER_CACHE_TTL")

	stringFromEnv(&cfg.ConversionAPIURL, "CONVERSION_API_URL")
	stringFromEnv(&cfg.ConversionPixelID, "CONVERSION_PIXEL_ID")
	stringFromEnv(&cfg.ConversionAccessToken, "CONVERSION_ACCESS_TOKEN")

	stringFromEnv(&cfg.SMSAPIURL, "SMS_API_URL")
	stringFromEnv(&cfg.SMSAPIKey, "SMS_API_KEY")
	stringFromEnv(&cfg.SMSSenderID, "SMS_SENDER_ID")

	stringFromEnv(&cfg.EmailAPIURL, "EMAIL_API_URL")
	stringFromEnv(&cfg.EmailAPIKey, "EMAIL_API_KEY")
	stringFromEnv(&cfg.AdminEmail, "ADMIN_EMAIL")

	cfg.OrderEventsExchange = "storefront.orders"
	stringFromEnv(&cfg.RabbitMQURL, "RABBITMQ_URL")
	stringFromEnv(&cfg.OrderEventsExchange, "ORDER_EVENTS_EXCHANGE")

	cfg.NotifyTimeout = 15 * time.Second
	stringFromEnv(&cfg.JaegerEndpoint, "JAEGER_ENDPOINT")
	durationFromEnv(&cfg.NotifyTimeout, "NOTIFY_TIMEOUT")

	return cfg
}

func stringFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// durationFromEnv оставляет прежнее значение, если переменная пустая, не парсится или не положительная.
func durationFromEnv(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		*dst = d
	}
}

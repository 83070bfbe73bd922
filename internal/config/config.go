package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"pet-diary/pkg/logger"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	HTTPPort       string
	Env            string
	Timezone       string
	Storage        string
	RequestTimeout time.Duration
	CORSOrigins    []string
	Server         ServerConfig
	Metrics        MetricsConfig
	Alerts         AlertsConfig
	Housekeeping   HousekeepingConfig
	DB             DBConfig
	Auth           AuthConfig
}

type ServerConfig struct {
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

type AlertsConfig struct {
	CacheTTL time.Duration
}

type HousekeepingConfig struct {
	Enabled              bool
	Interval             time.Duration
	IdempotencyRetention time.Duration
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type AuthConfig struct {
	SupabaseURL     string
	SupabaseKey     string
	Timeout         time.Duration
	JWTSecret       string
	JWTIssuer       string
	SkipAuth        bool
	MockUserID      string
	MockUserEmail   string
	MockUserName    string
	AllowDebugUser  bool
	DebugUserHeader string
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	return Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		Timezone:       getEnv("APP_TIMEZONE", "Asia/Tokyo"),
		Storage:        getEnv("STORAGE", StoragePostgres),
		RequestTimeout: getEnvDuration("HTTP_REQUEST_TIMEOUT", 15*time.Second),
		CORSOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		Server: ServerConfig{
			ReadHeaderTimeout: getEnvDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout:   getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		Alerts: AlertsConfig{
			CacheTTL: getEnvDuration("ALERTS_CACHE_TTL", time.Minute),
		},
		Housekeeping: HousekeepingConfig{
			Enabled:              getEnvBool("HOUSEKEEPING_ENABLED", true),
			Interval:             getEnvDuration("HOUSEKEEPING_INTERVAL", time.Hour),
			IdempotencyRetention: getEnvDuration("IDEMPOTENCY_RETENTION", 48*time.Hour),
		},
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "pet_diary"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Auth: AuthConfig{
			SupabaseURL:     getEnv("SUPABASE_URL", ""),
			SupabaseKey:     getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
			Timeout:         getEnvDuration("AUTH_TIMEOUT", 5*time.Second),
			JWTSecret:       getEnv("AUTH_JWT_SECRET", ""),
			JWTIssuer:       getEnv("AUTH_JWT_ISSUER", ""),
			SkipAuth:        getEnvBool("AUTH_SKIP", false),
			MockUserID:      getEnv("AUTH_MOCK_USER_ID", "00000000-0000-0000-0000-000000000001"),
			MockUserEmail:   getEnv("AUTH_MOCK_USER_EMAIL", ""),
			MockUserName:    getEnv("AUTH_MOCK_USER_NAME", ""),
			AllowDebugUser:  getEnvBool("AUTH_ALLOW_DEBUG_USER", false),
			DebugUserHeader: getEnv("AUTH_DEBUG_USER_HEADER", "X-Debug-User-ID"),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	items := splitList(value)
	if len(items) == 0 {
		return fallback
	}
	return items
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}

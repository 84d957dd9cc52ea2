package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Scheduler SchedulerConfig
	Tontine   TontineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port        string
	Env         string
	AutoMigrate bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// SecurityConfig holds secrets shared with other systems
type SecurityConfig struct {
	SessionEncryptionKey string
	WebhookSecret        string
}

// SchedulerConfig drives the round schedule job
type SchedulerConfig struct {
	Enabled            bool
	SweepInterval      time.Duration
	ReminderWindow     time.Duration
	HighPriorityWindow time.Duration
}

// TontineConfig holds tontine creation defaults
type TontineConfig struct {
	DefaultCurrency    string
	InviteCodeAttempts int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			Env:         getEnv("SERVER_ENV", "development"),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "tontine"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
			WebhookSecret:        getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		},
		Scheduler: SchedulerConfig{
			Enabled:            getEnvAsBool("SCHEDULER_ENABLED", true),
			SweepInterval:      getEnvAsDuration("SCHEDULER_SWEEP_INTERVAL", time.Minute),
			ReminderWindow:     getEnvAsDuration("SCHEDULER_REMINDER_WINDOW", 7*24*time.Hour),
			HighPriorityWindow: getEnvAsDuration("SCHEDULER_HIGH_PRIORITY_WINDOW", 2*24*time.Hour),
		},
		Tontine: TontineConfig{
			DefaultCurrency:    strings.ToUpper(getEnv("TONTINE_DEFAULT_CURRENCY", "XOF")),
			InviteCodeAttempts: getEnvAsInt("TONTINE_INVITE_CODE_ATTEMPTS", 5),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

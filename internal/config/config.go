package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string
	LogFile  string

	MongoURI string
	DBName   string

	Razorpay Razorpay

	AdminJWTSecret string
	AdminTokenTTL  time.Duration

	CORSOrigins []string
}

type Razorpay struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

// Configured reports whether both gateway credentials are present.
func (r Razorpay) Configured() bool {
	return r.KeyID != "" && r.KeySecret != ""
}

func (c Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production") || strings.EqualFold(c.AppEnv, "prod")
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not loaded", "err", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() Config {
	return Config{
		Port:     getEnvOrDefault("PORT", "8000"),
		AppEnv:   getEnvOrDefault("APP_ENV", "development"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:  getEnvOrDefault("LOG_FILE", ""),
		MongoURI: getEnvOrDefault("MONGO_URI", getEnvOrDefault("DATABASE_URL", "")),
		DBName:   getEnvOrDefault("DB_NAME", "perfume_store"),
		Razorpay: Razorpay{
			KeyID:     getEnvOrDefault("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnvOrDefault("RAZORPAY_KEY_SECRET", ""),
			BaseURL:   getEnvOrDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			Timeout:   getDurationEnv("RAZORPAY_TIMEOUT_SECONDS", 15, time.Second),
		},
		AdminJWTSecret: getEnvOrDefault("ADMIN_JWT_SECRET", ""),
		AdminTokenTTL:  getDurationEnv("ADMIN_TOKEN_TTL_MINUTES", 60, time.Minute),
		CORSOrigins:    getListEnv("CORS_ORIGINS"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getListEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         string
	DBPath       string
	RedisURL     string
	RedisChannel string
	LogLevel     string

	JWTSecret string
	JWTExpiry time.Duration

	OllamaHost  string
	OllamaModel string
	AITimeout   time.Duration

	ReminderLead time.Duration

	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURL   string
	OutlookClientID     string
	OutlookClientSecret string
	OutlookRedirectURL  string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "7070"),
		DBPath:       getEnv("DB_PATH", "data/calinvite.db"),
		RedisURL:     getEnv("REDIS_URL", ""),
		RedisChannel: getEnv("REDIS_CHANNEL", "calinvite_events"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: time.Duration(getEnvAsInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,

		OllamaHost:  getEnv("OLLAMA_HOST", "http://127.0.0.1:11434"),
		OllamaModel: getEnv("OLLAMA_MODEL", "phi"),
		AITimeout:   time.Duration(getEnvAsInt("AI_TIMEOUT_MS", 10000)) * time.Millisecond,

		ReminderLead: time.Duration(getEnvAsInt("REMINDER_LEAD_MINUTES", 15)) * time.Minute,

		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:   getEnv("GOOGLE_REDIRECT_URI", "http://localhost:7070/api/v1/integrations/google/callback"),
		OutlookClientID:     getEnv("OUTLOOK_CLIENT_ID", ""),
		OutlookClientSecret: getEnv("OUTLOOK_CLIENT_SECRET", ""),
		OutlookRedirectURL:  getEnv("OUTLOOK_REDIRECT_URI", "http://localhost:7070/api/v1/integrations/outlook/callback"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

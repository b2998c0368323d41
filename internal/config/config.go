package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ChatEventsTopic    string
	DisplayTimezone    string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JwtSecret    string
	TokenTTLDays int
}

type AIConfig struct {
	Provider          string // "huggingface" or "ollama"
	Model             string // e.g. "google/flan-t5-base"
	BaseURL           string // provider endpoint override
	HuggingFaceAPIKey string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ChatEventsTopic:    getEnv("CHAT_EVENTS_TOPIC_NAME", "CHAT_EVENTS"),
			DisplayTimezone:    getEnv("DISPLAY_TIMEZONE", "Asia/Karachi"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret:    getEnv("JWT_SECRET", ""),
			TokenTTLDays: getEnvAsInt("TOKEN_TTL_DAYS", 7),
		},
		Ai: AIConfig{
			Provider:          getEnv("LLM_PROVIDER", "huggingface"),
			Model:             getEnv("LLM_MODEL", "google/flan-t5-base"),
			BaseURL:           getEnv("LLM_BASE_URL", ""),
			HuggingFaceAPIKey: getEnv("HUGGINGFACE_API_KEY", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Aggregator  AggregatorConfig
	Extractor   ExtractorConfig
	Attachments AttachmentConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type AggregatorConfig struct {
	BaseURL      string
	APIKey       string
	DefaultModel string
}

type ExtractorConfig struct {
	BaseURL string
}

type AttachmentConfig struct {
	MaxImages        int
	MaxDocuments     int
	ImageMaxBytes    int64
	DocumentMaxBytes int64
	MaxTextChars     int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Aggregator: AggregatorConfig{
			BaseURL:      getEnv("AGGREGATOR_BASE_URL", "https://api.chathub.dev/v1"),
			APIKey:       getEnv("AGGREGATOR_API_KEY", ""),
			DefaultModel: getEnv("AGGREGATOR_DEFAULT_MODEL", "openai/gpt-4o-mini"),
		},
		Extractor: ExtractorConfig{
			BaseURL: getEnv("EXTRACTOR_BASE_URL", "http://localhost:8090"),
		},
		Attachments: AttachmentConfig{
			MaxImages:        getEnvAsInt("ATTACHMENT_MAX_IMAGES", 4),
			MaxDocuments:     getEnvAsInt("ATTACHMENT_MAX_DOCUMENTS", 3),
			ImageMaxBytes:    int64(getEnvAsInt("ATTACHMENT_IMAGE_MAX_BYTES", 10*1024*1024)),
			DocumentMaxBytes: int64(getEnvAsInt("ATTACHMENT_DOCUMENT_MAX_BYTES", 25*1024*1024)),
			MaxTextChars:     getEnvAsInt("ATTACHMENT_MAX_TEXT_CHARS", 100_000),
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

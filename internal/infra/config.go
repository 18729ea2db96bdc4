package infra

import (
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment
// variables. It is resolved once at startup and injected read-only into each
// client; nothing reads the environment after this point.
//
// Provider credentials are deliberately optional: a missing key or endpoint
// is a "feature disabled" state, and the pipelines keep answering through
// their mock/local fallback paths.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	StoragePath      string
	StorageBaseURL   string
	ArkAPIKey        string
	TextEndpoint     string
	ImageEndpoint    string
	TextModel        string
	ImageModel       string
	ImageSize        string
	DefaultLocale    string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. It never fails on absent provider credentials.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StoragePath:      getEnv("STORAGE_PATH", "./data/static"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		ArkAPIKey:        os.Getenv("ARK_API_KEY"),
		TextEndpoint:     getEnv("TEXT_ENDPOINT", "https://ark.cn-beijing.volces.com/api/v3/chat/completions"),
		ImageEndpoint:    os.Getenv("IMAGE_ENDPOINT"),
		TextModel:        getEnv("TEXT_MODEL", "doubao-seed-1-6-flash"),
		ImageModel:       getEnv("IMAGE_MODEL", "doubao-seedream-4-0"),
		ImageSize:        getEnv("IMAGE_SIZE", "1024x1024"),
		DefaultLocale:    getEnv("DEFAULT_LOCALE", "zh"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

package config

import (
	"os"
	"strconv"
	"strings"
)

// Config centralizes runtime settings for the API and the pipeline worker.
type Config struct {
	Port string

	AuthToken          string
	CORSAllowedOrigins []string

	DatabaseURL string

	OpenAIAPIKey             string
	OpenAIBaseURL            string
	OpenAITimeoutMS          int
	OpenAIMaxRetries         int
	OpenAIModelExtraction    string
	OpenAIModelExtractionAlt string
	OpenAIModelFollowup      string
	OpenAIModelFollowupAlt   string
	OpenAIModelDrafting      string
	OpenAIModelDraftingAlt   string

	StorageBaseURL      string
	StorageServiceKey   string
	StorageTimeoutMS    int
	StorageSignedURLTTL int
	StorageDraftBucket  string

	TemplateCacheTTLSeconds int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisStream   string
	RedisGroup    string
	RedisConsumer string

	RateLimitRPS   float64
	RateLimitBurst int

	WorkerEnabled bool
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		AuthToken:          getEnv("API_AUTH_TOKEN", ""),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		OpenAIAPIKey:             getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:            getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAITimeoutMS:          getEnvInt("OPENAI_TIMEOUT_MS", 60000),
		OpenAIMaxRetries:         getEnvInt("OPENAI_MAX_RETRIES", 2),
		OpenAIModelExtraction:    getEnv("OPENAI_MODEL_EXTRACTION", "gpt-4.1-mini"),
		OpenAIModelExtractionAlt: getEnv("OPENAI_MODEL_EXTRACTION_FALLBACK", "gpt-4.1-nano"),
		OpenAIModelFollowup:      getEnv("OPENAI_MODEL_FOLLOWUP", "gpt-4.1-mini"),
		OpenAIModelFollowupAlt:   getEnv("OPENAI_MODEL_FOLLOWUP_FALLBACK", "gpt-4.1-nano"),
		OpenAIModelDrafting:      getEnv("OPENAI_MODEL_DRAFTING", "gpt-4.1"),
		OpenAIModelDraftingAlt:   getEnv("OPENAI_MODEL_DRAFTING_FALLBACK", "gpt-4.1-mini"),

		StorageBaseURL:      getEnv("STORAGE_BASE_URL", ""),
		StorageServiceKey:   getEnv("STORAGE_SERVICE_KEY", ""),
		StorageTimeoutMS:    getEnvInt("STORAGE_TIMEOUT_MS", 30000),
		StorageSignedURLTTL: getEnvInt("STORAGE_SIGNED_URL_TTL_SECONDS", 300),
		StorageDraftBucket:  getEnv("STORAGE_DRAFT_BUCKET", "generated-documents"),

		TemplateCacheTTLSeconds: getEnvInt("TEMPLATE_CACHE_TTL_SECONDS", 600),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisStream:   getEnv("REDIS_STREAM", "ai_tasks"),
		RedisGroup:    getEnv("REDIS_GROUP", "ai_workers"),
		RedisConsumer: getEnv("REDIS_CONSUMER", "api-1"),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),

		WorkerEnabled: getEnvBool("WORKER_ENABLED", true),
	}
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
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

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
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

// Package config reads service configuration from the environment. The
// binaries load a .env file first (godotenv), then Load fills the struct
// with whatever is set.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every knob the binaries read. Optional integrations (Redis,
// Kafka, S3, OpenAI) are enabled by their presence: an empty value disables
// the integration.
type Config struct {
	Port        string
	DatabaseURL string

	// Bloom fast path; disabled when RedisAddr is empty.
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	BloomKey       string
	BloomTTL       time.Duration
	BloomCapacity  int
	BloomErrorRate float64

	// AI classifier; disabled when OpenAIKey is empty.
	OpenAIKey     string
	CohereKey     string
	OpenAIBaseURL string
	ChatModel     string
	EmbedModel    string

	// Event tracking; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Archive; disabled when S3Bucket is empty.
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3Prefix    string
	S3PathStyle bool
}

// Load reads the configuration from environment variables.
func Load() Config {
	return Config{
		Port:        envStr("PORT", "8080"),
		DatabaseURL: envStr("DATABASE_URL", "postgres://localhost:5432/articlevault?sslmode=disable"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASS"),
		RedisDB:        envInt("REDIS_DB", 0),
		BloomKey:       envStr("BLOOM_KEY", "articles:fingerprints"),
		BloomTTL:       time.Duration(envInt("BLOOM_TTL_SECONDS", 86400)) * time.Second,
		BloomCapacity:  envInt("BLOOM_CAPACITY", 100000),
		BloomErrorRate: envFloat("BLOOM_ERROR_RATE", 0.001),

		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		CohereKey:     os.Getenv("COHERE_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		ChatModel:     os.Getenv("CHAT_MODEL"),
		EmbedModel:    os.Getenv("EMBED_MODEL"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envStr("KAFKA_TOPIC", "articles.events"),
		KafkaGroupID: envStr("KAFKA_GROUP_ID", "articlevault-tracker"),

		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    os.Getenv("S3_REGION"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Prefix:    envStr("S3_PREFIX", "articles"),
		S3PathStyle: envBool("S3_PATH_STYLE", false),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

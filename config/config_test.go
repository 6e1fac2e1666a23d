package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "REDIS_ADDR", "OPENAI_API_KEY", "S3_BUCKET", "BLOOM_KEY", "BLOOM_TTL_SECONDS", "KAFKA_TOPIC"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("unexpected default port: %s", cfg.Port)
	}
	if cfg.BloomKey != "articles:fingerprints" || cfg.BloomTTL != 24*time.Hour {
		t.Fatalf("unexpected bloom defaults: %s, %s", cfg.BloomKey, cfg.BloomTTL)
	}
	if cfg.KafkaTopic != "articles.events" {
		t.Fatalf("unexpected kafka topic default: %s", cfg.KafkaTopic)
	}
	if cfg.RedisAddr != "" || cfg.OpenAIKey != "" || cfg.S3Bucket != "" {
		t.Fatal("optional integrations must default to disabled")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("BLOOM_TTL_SECONDS", "60")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("S3_PATH_STYLE", "true")

	cfg := Load()

	if cfg.Port != "9090" || cfg.RedisAddr != "redis:6379" || cfg.RedisDB != 2 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.BloomTTL != time.Minute {
		t.Fatalf("ttl not parsed: %s", cfg.BloomTTL)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("broker list not parsed: %v", cfg.KafkaBrokers)
	}
	if !cfg.S3PathStyle {
		t.Fatal("bool override not applied")
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("BLOOM_ERROR_RATE", "zero")

	cfg := Load()
	if cfg.RedisDB != 0 || cfg.BloomErrorRate != 0.001 {
		t.Fatalf("malformed values should fall back to defaults: %+v", cfg)
	}
}

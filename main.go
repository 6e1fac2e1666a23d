package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"articlevault/api"
	"articlevault/archive"
	"articlevault/classifier"
	"articlevault/common"
	"articlevault/config"
	"articlevault/dedup"
	"articlevault/extractor"
	"articlevault/pipeline"
	"articlevault/store"
	"articlevault/tracker"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	opts := buildPipelineOptions(ctx, cfg)
	p := pipeline.New(st, extractor.New(nil), opts...)

	server := api.NewServer(p, st, st)
	router := api.NewRouter(server)

	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  POST  /api/articles")
	log.Println("  GET   /api/articles")
	log.Println("  GET   /api/articles/:id")
	log.Println("  GET   /api/articles/fingerprint/:fingerprint")
	log.Println("  PATCH /api/articles/:id/counters")
	log.Println("  POST  /api/articles/:id/categories")
	log.Println("  GET   /api/stats")
	log.Println("  GET   /api/health")

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// buildPipelineOptions wires the optional stages. Each integration is
// enabled by its configuration being present and skipped with a log line
// otherwise.
func buildPipelineOptions(ctx context.Context, cfg config.Config) []pipeline.Option {
	var opts []pipeline.Option

	if cfg.RedisAddr != "" {
		filter, err := dedup.NewFingerprintFilter(ctx, dedup.BloomConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Key:       cfg.BloomKey,
			TTL:       cfg.BloomTTL,
			Capacity:  cfg.BloomCapacity,
			ErrorRate: cfg.BloomErrorRate,
		})
		if err != nil {
			log.Printf("bloom filter disabled: %v", err)
		} else {
			log.Printf("bloom filter enabled (key %s)", cfg.BloomKey)
			opts = append(opts, pipeline.WithFilter(filter))
		}
	}

	c := classifier.New(classifier.Config{
		OpenAIKey:  cfg.OpenAIKey,
		CohereKey:  cfg.CohereKey,
		BaseURL:    cfg.OpenAIBaseURL,
		ChatModel:  cfg.ChatModel,
		EmbedModel: cfg.EmbedModel,
	})
	if c.Available() {
		log.Println("AI classifier enabled")
	} else {
		log.Println("AI classifier not configured; keyword categorization only")
	}
	opts = append(opts, pipeline.WithClassifier(c))

	var hooks []pipeline.Hook
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := tracker.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Printf("event tracking disabled: %v", err)
		} else {
			log.Printf("event tracking enabled (topic %s)", cfg.KafkaTopic)
			hooks = append(hooks, publisher.Hook())
		}
	}
	if cfg.S3Bucket != "" {
		s3Client, err := common.NewS3(ctx, common.S3Config{
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			UsePathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			log.Printf("archive disabled: %v", err)
		} else {
			log.Printf("archive enabled (bucket %s)", cfg.S3Bucket)
			hooks = append(hooks, archive.New(s3Client, cfg.S3Bucket, cfg.S3Prefix).Hook())
		}
	}
	if len(hooks) > 0 {
		opts = append(opts, pipeline.WithHooks(hooks...))
	}

	return opts
}

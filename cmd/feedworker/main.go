// Command feedworker fetches an RSS feed and ingests every item through the
// pipeline. Duplicates are expected on repeated runs and counted, not
// treated as failures.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"articlevault/classifier"
	"articlevault/config"
	"articlevault/dedup"
	"articlevault/extractor"
	"articlevault/pipeline"
	"articlevault/rssfeeds"
	"articlevault/store"
)

func main() {
	feed := flag.String("feed", rssfeeds.DefaultFeedPreset, "RSS feed preset name or URL (use -feeds to list presets)")
	count := flag.Int("count", rssfeeds.DefaultCount, "Number of articles to fetch")
	workers := flag.Int("workers", rssfeeds.WorkerCount, "Number of ingestion workers")
	listFeeds := flag.Bool("feeds", false, "List available feed presets and exit")
	flag.Parse()

	if *listFeeds {
		fmt.Println("Available feed presets:")

		names := make([]string, 0, len(rssfeeds.FeedPresets))
		for name := range rssfeeds.FeedPresets {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Printf("  %-10s %s\n", name, rssfeeds.FeedPresets[name].URL)
		}
		fmt.Printf("\nDefault: %s\n", rssfeeds.DefaultFeedPreset)
		os.Exit(0)
	}

	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	st, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer st.Close()
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	opts := []pipeline.Option{
		pipeline.WithClassifier(classifier.New(classifier.Config{
			OpenAIKey:  cfg.OpenAIKey,
			CohereKey:  cfg.CohereKey,
			BaseURL:    cfg.OpenAIBaseURL,
			ChatModel:  cfg.ChatModel,
			EmbedModel: cfg.EmbedModel,
		})),
	}
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
			opts = append(opts, pipeline.WithFilter(filter))
		}
	}
	p := pipeline.New(st, extractor.New(nil), opts...)

	feedURL := rssfeeds.ResolveFeedURL(*feed)
	log.Printf("Fetching feed: %s", feedURL)

	subs, err := rssfeeds.FetchFeed(ctx, feedURL, *count)
	if err != nil {
		log.Fatalf("fetch feed: %v", err)
	}
	log.Printf("Fetched %d items, ingesting with %d workers", len(subs), *workers)

	summary := rssfeeds.IngestAll(ctx, p, subs, *workers)
	log.Printf("Done: %d persisted, %d duplicates, %d failed",
		summary.Persisted, summary.Duplicates, summary.Failed)

	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// Command trackworker consumes article events from Kafka and keeps running
// per-source statistics, logging a snapshot on an interval.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"articlevault/config"
	"articlevault/tracker"
)

func main() {
	interval := flag.Duration("report-interval", time.Minute, "How often to log a statistics snapshot")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}

	stats := tracker.NewSourceStats()
	handler := &tracker.TypedMessageHandler[tracker.ArticleEvent]{
		Validate: func(e *tracker.ArticleEvent) bool {
			return e.Type == tracker.EventTypePersisted && e.ArticleID != 0
		},
		Process: func(_ context.Context, e *tracker.ArticleEvent) error {
			stats.Record(e)
			log.Printf("article %d tracked (source %q, language %s)", e.ArticleID, e.Source, e.Language)
			return nil
		},
		AlwaysMark: true,
	}

	consumer, err := tracker.NewConsumer(tracker.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
		GroupID: cfg.KafkaGroupID,
		Handler: handler,
	})
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("consumer: %v", err)
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			total, bySource, byLanguage := stats.Snapshot()
			log.Printf("tracked %d articles; sources=%v languages=%v", total, bySource, byLanguage)
		case s := <-sig:
			log.Printf("received %s, shutting down", s)
			return
		}
	}
}

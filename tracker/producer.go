package tracker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"

	"articlevault/pipeline"
	"articlevault/types"
)

// Publisher emits article events to a Kafka topic.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher connects a synchronous producer to the given brokers.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Publisher{producer: producer, topic: topic}, nil
}

// NewPublisherWith wraps an existing producer; used by tests with mocks.
func NewPublisherWith(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// Publish sends one event, keyed by fingerprint so events for the same
// article land on the same partition.
func (p *Publisher) Publish(_ context.Context, event ArticleEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Fingerprint),
		Value: sarama.ByteEncoder(payload),
	}
	_, _, err = p.producer.SendMessage(msg)
	return err
}

// Hook adapts the publisher to the pipeline's post-persist hook.
func (p *Publisher) Hook() pipeline.Hook {
	return pipeline.HookFunc(func(ctx context.Context, a *types.Article) error {
		return p.Publish(ctx, ArticleEvent{
			Type:        EventTypePersisted,
			ArticleID:   a.ID,
			Fingerprint: a.Fingerprint,
			Source:      a.Source,
			Language:    a.Language,
			Categories:  a.CategoriesAuto,
			SubmitterID: a.SubmitterID,
			OccurredAt:  time.Now().UTC(),
		})
	})
}

// Close shuts down the underlying producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}

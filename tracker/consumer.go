package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/IBM/sarama"
)

// MessageHandler processes one consumed message. If shouldMark is false or
// an error is returned, the message is not marked and will be redelivered.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message []byte) (shouldMark bool, err error)
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler MessageHandler
}

// Consumer reads article events from a Kafka consumer group.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	topic   string
	groupID string

	startOnce sync.Once
	started   chan struct{}
}

// NewConsumer creates a consumer-group client for the configured topic.
func NewConsumer(config ConsumerConfig) (*Consumer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, cfg)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		handler: config.Handler,
		topic:   config.Topic,
		groupID: config.GroupID,
		started: make(chan struct{}),
	}, nil
}

// Start joins the group and blocks until the first session is assigned or
// the context ends. Consumption then continues in the background, across
// rebalances, until the context is canceled or Close is called.
func (c *Consumer) Start(ctx context.Context) error {
	runner := &claimRunner{handler: c.handler, notify: c.signalStarted}

	go func() {
		for err := range c.group.Errors() {
			log.Printf("tracker: consumer group error: %v", err)
		}
	}()

	go func() {
		for ctx.Err() == nil {
			err := c.group.Consume(ctx, []string{c.topic}, runner)
			switch {
			case err == nil, errors.Is(err, context.Canceled):
			case errors.Is(err, sarama.ErrClosedConsumerGroup):
				return
			default:
				log.Printf("tracker: consume session ended: %v", err)
			}
		}
	}()

	select {
	case <-c.started:
		log.Printf("tracker: consuming topic %s as group %s", c.topic, c.groupID)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// signalStarted closes the started channel on the first session. Rebalances
// trigger Setup again, so later calls are no-ops.
func (c *Consumer) signalStarted() {
	c.startOnce.Do(func() { close(c.started) })
}

// Close gracefully shuts down the consumer.
func (c *Consumer) Close() error {
	return c.group.Close()
}

// claimRunner adapts a MessageHandler to sarama's group handler callbacks.
type claimRunner struct {
	handler MessageHandler
	notify  func()
}

func (r *claimRunner) Setup(sarama.ConsumerGroupSession) error {
	if r.notify != nil {
		r.notify()
	}
	return nil
}

func (r *claimRunner) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim drains the claim until sarama closes it on shutdown or
// rebalance. Messages are marked only when the handler says so; unmarked
// messages are redelivered.
func (r *claimRunner) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		shouldMark, err := r.handler.HandleMessage(session.Context(), message.Value)
		if err != nil {
			log.Printf("tracker: handle message at offset %d: %v", message.Offset, err)
		}
		if shouldMark {
			session.MarkMessage(message, "")
		}
	}
	return nil
}

// TypedMessageHandler decodes JSON messages into T before processing.
type TypedMessageHandler[T any] struct {
	// Validate checks if the message should be processed.
	Validate func(msg *T) bool
	// Process handles the decoded message.
	Process func(ctx context.Context, msg *T) error
	// AlwaysMark marks messages even when decoding or validation fails,
	// skipping them instead of retrying forever.
	AlwaysMark bool
}

// HandleMessage implements MessageHandler.
func (h *TypedMessageHandler[T]) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var msg T
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("tracker: failed to unmarshal message: %v", err)
		return h.AlwaysMark, nil
	}

	if h.Validate != nil && !h.Validate(&msg) {
		return h.AlwaysMark, nil
	}

	if err := h.Process(ctx, &msg); err != nil {
		return false, err
	}
	return true, nil
}

package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"articlevault/types"
)

func TestPublisherSendsKeyedEvent(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var event ArticleEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		if event.Type != EventTypePersisted || event.ArticleID != 12 {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	p := NewPublisherWith(mock, "articles.events")
	err := p.Publish(context.Background(), ArticleEvent{
		Type:        EventTypePersisted,
		ArticleID:   12,
		Fingerprint: "abc",
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
}

func TestPublisherPropagatesSendFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndFail(errors.New("broker down"))

	p := NewPublisherWith(mock, "articles.events")
	if err := p.Publish(context.Background(), ArticleEvent{Fingerprint: "abc"}); err == nil {
		t.Fatal("expected publish failure")
	}
	_ = p.Close()
}

func TestHookPublishesPersistedArticle(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var event ArticleEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		if event.ArticleID != 5 || event.Source != "example.com" || event.Language != "en" {
			return errors.New("article fields not mapped into the event")
		}
		return nil
	})

	p := NewPublisherWith(mock, "articles.events")
	hook := p.Hook()
	err := hook.ArticlePersisted(context.Background(), &types.Article{
		ID:          5,
		Fingerprint: "def",
		Source:      "example.com",
		Language:    "en",
	})
	if err != nil {
		t.Fatalf("hook error: %v", err)
	}
	_ = p.Close()
}

func TestTypedHandlerProcessesValidMessage(t *testing.T) {
	var processed *ArticleEvent
	h := &TypedMessageHandler[ArticleEvent]{
		Validate: func(e *ArticleEvent) bool { return e.Type == EventTypePersisted },
		Process: func(_ context.Context, e *ArticleEvent) error {
			processed = e
			return nil
		},
	}

	payload, _ := json.Marshal(ArticleEvent{Type: EventTypePersisted, ArticleID: 3})
	mark, err := h.HandleMessage(context.Background(), payload)
	if err != nil || !mark {
		t.Fatalf("expected marked success, got mark=%v err=%v", mark, err)
	}
	if processed == nil || processed.ArticleID != 3 {
		t.Fatalf("message not processed: %+v", processed)
	}
}

func TestTypedHandlerSkipsInvalidJSON(t *testing.T) {
	h := &TypedMessageHandler[ArticleEvent]{
		Process:    func(context.Context, *ArticleEvent) error { t.Fatal("must not process"); return nil },
		AlwaysMark: true,
	}
	mark, err := h.HandleMessage(context.Background(), []byte("{broken"))
	if err != nil {
		t.Fatalf("invalid json should not error: %v", err)
	}
	if !mark {
		t.Fatal("AlwaysMark should mark undecodable messages")
	}
}

func TestTypedHandlerRetriesOnProcessError(t *testing.T) {
	h := &TypedMessageHandler[ArticleEvent]{
		Process: func(context.Context, *ArticleEvent) error { return errors.New("db down") },
	}
	payload, _ := json.Marshal(ArticleEvent{Type: EventTypePersisted})
	mark, err := h.HandleMessage(context.Background(), payload)
	if err == nil {
		t.Fatal("expected process error to surface")
	}
	if mark {
		t.Fatal("failed messages must not be marked")
	}
}

type fakeGroupSession struct {
	ctx    context.Context
	marked []int64
}

func (s *fakeGroupSession) Claims() map[string][]int32              { return nil }
func (s *fakeGroupSession) MemberID() string                        { return "member-1" }
func (s *fakeGroupSession) GenerationID() int32                     { return 1 }
func (s *fakeGroupSession) MarkOffset(string, int32, int64, string) {}
func (s *fakeGroupSession) Commit()                                 {}
func (s *fakeGroupSession) ResetOffset(string, int32, int64, string) {
}

func (s *fakeGroupSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

func (s *fakeGroupSession) Context() context.Context { return s.ctx }

type fakeGroupClaim struct {
	messages chan *sarama.ConsumerMessage
}

func (c *fakeGroupClaim) Topic() string                            { return "articles.events" }
func (c *fakeGroupClaim) Partition() int32                         { return 0 }
func (c *fakeGroupClaim) InitialOffset() int64                     { return 0 }
func (c *fakeGroupClaim) HighWaterMarkOffset() int64               { return 0 }
func (c *fakeGroupClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func TestClaimRunnerMarksOnlyHandledMessages(t *testing.T) {
	var processed []int64
	handler := &TypedMessageHandler[ArticleEvent]{
		Process: func(_ context.Context, e *ArticleEvent) error {
			if e.ArticleID == 99 {
				return errors.New("db down")
			}
			processed = append(processed, e.ArticleID)
			return nil
		},
	}

	claim := &fakeGroupClaim{messages: make(chan *sarama.ConsumerMessage, 3)}
	events := []struct {
		offset int64
		id     int64
	}{{1, 10}, {2, 99}, {3, 11}}
	for _, e := range events {
		payload, _ := json.Marshal(ArticleEvent{Type: EventTypePersisted, ArticleID: e.id})
		claim.messages <- &sarama.ConsumerMessage{Offset: e.offset, Value: payload}
	}
	close(claim.messages)

	session := &fakeGroupSession{ctx: context.Background()}
	runner := &claimRunner{handler: handler}
	if err := runner.ConsumeClaim(session, claim); err != nil {
		t.Fatalf("ConsumeClaim error: %v", err)
	}

	if len(session.marked) != 2 || session.marked[0] != 1 || session.marked[1] != 3 {
		t.Fatalf("expected offsets 1 and 3 marked, got %v", session.marked)
	}
	if len(processed) != 2 || processed[0] != 10 || processed[1] != 11 {
		t.Fatalf("unexpected processed events: %v", processed)
	}
}

func TestConsumerStartSignalFiresOnce(t *testing.T) {
	c := &Consumer{started: make(chan struct{})}

	// A rebalance runs Setup again; the second signal must not panic and the
	// channel must stay closed.
	c.signalStarted()
	c.signalStarted()

	select {
	case <-c.started:
	default:
		t.Fatal("started channel should be closed after the first session")
	}
}

func TestSourceStats(t *testing.T) {
	stats := NewSourceStats()
	stats.Record(&ArticleEvent{Source: "example.com", Language: "en"})
	stats.Record(&ArticleEvent{Source: "example.com", Language: "ru"})
	stats.Record(&ArticleEvent{})

	total, bySource, byLanguage := stats.Snapshot()
	if total != 3 {
		t.Fatalf("expected 3 events, got %d", total)
	}
	if bySource["example.com"] != 2 || bySource["direct"] != 1 {
		t.Fatalf("unexpected source counts: %v", bySource)
	}
	if byLanguage["en"] != 1 || byLanguage["ru"] != 1 {
		t.Fatalf("unexpected language counts: %v", byLanguage)
	}
}

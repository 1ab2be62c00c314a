package eventpublisher

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
)

func sampleEvent(id string) *domain.TransactionEvent {
	return domain.NewTransactionEvent(id, domain.EventTypeTransactionCreated, &domain.Transaction{
		ID: "tx-" + id, OwnerID: "u", Type: domain.TransactionTypeIncome, Category: "Salário", Amount: decimal.NewFromInt(10),
	}, time.Now())
}

func TestDispatcherDeliversQueuedEvents(t *testing.T) {
	sink := &stubPublisher{}
	d := newTestDispatcher(sink, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	for _, id := range []string{"a", "b", "c"} {
		if err := d.Publish(context.Background(), sampleEvent(id)); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for len(sink.ids()) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if got := strings.Join(sink.ids(), ","); got != "a,b,c" {
		t.Fatalf("expected events in order, got %s", got)
	}
}

func TestDispatcherRetriesFailedDelivery(t *testing.T) {
	sink := &stubPublisher{failures: map[string]int{"a": 2}}
	d := newTestDispatcher(sink, 1)

	d.deliver(context.Background(), sampleEvent("a"))

	if got := sink.ids(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected delivery after retries, got %v", got)
	}
	if sink.attempts["a"] != 3 {
		t.Fatalf("expected 3 attempts, got %d", sink.attempts["a"])
	}
}

func TestDispatcherGivesUpAfterMaxRetries(t *testing.T) {
	sink := &stubPublisher{failures: map[string]int{"a": 10}}
	d := newTestDispatcher(sink, 1)

	d.deliver(context.Background(), sampleEvent("a"))

	if len(sink.ids()) != 0 {
		t.Fatal("event must not be delivered")
	}
	if sink.attempts["a"] != 4 {
		t.Fatalf("expected 1 attempt plus 3 retries, got %d", sink.attempts["a"])
	}
}

func TestDispatcherPublishQueueFull(t *testing.T) {
	d := newTestDispatcher(&stubPublisher{}, 1)

	if err := d.Publish(context.Background(), sampleEvent("a")); err != nil {
		t.Fatalf("first publish failed: %v", err)
	}
	if err := d.Publish(context.Background(), sampleEvent("b")); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestStartDrainsOnCancel(t *testing.T) {
	sink := &stubPublisher{}
	d := newTestDispatcher(sink, 8)

	for _, id := range []string{"a", "b"} {
		if err := d.Publish(context.Background(), sampleEvent(id)); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if len(sink.ids()) != 2 {
		t.Fatalf("expected queued events to be flushed, got %v", sink.ids())
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	if err := p.Publish(context.Background(), sampleEvent("a")); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"event_type":"transaction.created"`) {
		t.Fatalf("expected event type in log, got %s", buf.String())
	}
}

func TestMultiPublisherJoinsErrors(t *testing.T) {
	failing := &stubPublisher{failures: map[string]int{"a": 1}}
	ok := &stubPublisher{}

	err := MultiPublisher{failing, ok}.Publish(context.Background(), sampleEvent("a"))
	if err == nil {
		t.Fatal("expected error from failing publisher")
	}
	if len(ok.ids()) != 1 {
		t.Fatal("other publishers must still receive the event")
	}
}

func TestDispatcherRetriesEachSinkSeparately(t *testing.T) {
	broker := &stubPublisher{failures: map[string]int{"a": 2}}
	logSink := &stubPublisher{}
	d := NewDispatcher(Config{
		Sink:         MultiPublisher{broker, logSink},
		Logger:       zerolog.Nop(),
		QueueSize:    1,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	})

	d.deliver(context.Background(), sampleEvent("a"))

	if broker.attempts["a"] != 3 || len(broker.ids()) != 1 {
		t.Fatalf("expected broker delivery on the third attempt, got %d attempts", broker.attempts["a"])
	}
	if logSink.attempts["a"] != 1 || len(logSink.ids()) != 1 {
		t.Fatalf("expected the healthy sink to see the event once, got %d", logSink.attempts["a"])
	}
}

func newTestDispatcher(sink *stubPublisher, queueSize int) *Dispatcher {
	return NewDispatcher(Config{
		Sink:         sink,
		Logger:       zerolog.Nop(),
		QueueSize:    queueSize,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
		DrainTimeout: time.Second,
	})
}

type stubPublisher struct {
	mu        sync.Mutex
	published []*domain.TransactionEvent
	failures  map[string]int
	attempts  map[string]int
}

func (s *stubPublisher) Publish(_ context.Context, event *domain.TransactionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempts == nil {
		s.attempts = make(map[string]int)
	}
	s.attempts[event.ID]++
	if s.failures[event.ID] > 0 {
		s.failures[event.ID]--
		return errors.New("broker unavailable")
	}
	s.published = append(s.published, event)
	return nil
}

func (s *stubPublisher) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.published))
	for i, e := range s.published {
		out[i] = e.ID
	}
	return out
}

package eventpublisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// ErrQueueFull is returned by Publish when the dispatcher cannot accept
// more events.
var ErrQueueFull = errors.New("event queue is full")

// Dispatcher queues events in memory and delivers them to a sink on its own
// goroutine, so a slow broker never delays a write.
type Dispatcher struct {
	sink         usecase.EventPublisher
	logger       zerolog.Logger
	queue        chan *domain.TransactionEvent
	maxRetries   uint64
	retryBackoff time.Duration
	drainTimeout time.Duration
}

// Config for Dispatcher.
type Config struct {
	Sink         usecase.EventPublisher
	Logger       zerolog.Logger
	QueueSize    int           // Events buffered before Publish fails
	MaxRetries   uint64        // Delivery attempts after the first
	RetryBackoff time.Duration // Initial retry interval
	DrainTimeout time.Duration // Time allowed to flush the queue on shutdown
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 256
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = 5 * time.Second
	}

	return &Dispatcher{
		sink:         cfg.Sink,
		logger:       cfg.Logger,
		queue:        make(chan *domain.TransactionEvent, cfg.QueueSize),
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		drainTimeout: cfg.DrainTimeout,
	}
}

// Publish enqueues event without blocking.
func (d *Dispatcher) Publish(ctx context.Context, event *domain.TransactionEvent) error {
	select {
	case d.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("%w: dropping %s", ErrQueueFull, event.ID)
	}
}

// Start delivers queued events until ctx is cancelled, then flushes what
// is left within the drain timeout.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info().Int("queue_size", cap(d.queue)).Msg("event dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.drain()
			d.logger.Info().Msg("event dispatcher shutting down")
			return ctx.Err()
		case event := <-d.queue:
			d.deliver(ctx, event)
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), d.drainTimeout)
	defer cancel()

	for {
		select {
		case event := <-d.queue:
			d.deliver(ctx, event)
		default:
			return
		}
	}
}

// deliver publishes a single event to every sink. Each sink of a
// MultiPublisher is retried on its own so one that succeeded is not
// called again because another failed.
func (d *Dispatcher) deliver(ctx context.Context, event *domain.TransactionEvent) {
	sinks, ok := d.sink.(MultiPublisher)
	if !ok {
		sinks = MultiPublisher{d.sink}
	}
	for _, sink := range sinks {
		d.deliverTo(ctx, sink, event)
	}
}

func (d *Dispatcher) deliverTo(ctx context.Context, sink usecase.EventPublisher, event *domain.TransactionEvent) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.retryBackoff

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		return sink.Publish(ctx, event)
	}, backoff.WithContext(backoff.WithMaxRetries(b, d.maxRetries), ctx))
	if err != nil {
		d.logger.Error().Err(err).
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Str("sink", fmt.Sprintf("%T", sink)).
			Int("attempts", attempt).
			Msg("failed to publish event")
		return
	}

	d.logger.Debug().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Msg("event delivered")
}

// LogPublisher is a simple publisher that logs events.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event *domain.TransactionEvent) error {
	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("owner_id", event.OwnerID).
		Str("transaction_id", event.TransactionID).
		Str("type", string(event.Type)).
		Str("category", event.Category).
		Str("amount", event.Amount.String()).
		Msg("event published")

	return nil
}

// MultiPublisher fans an event out to every publisher.
type MultiPublisher []usecase.EventPublisher

// Publish calls every publisher and joins their errors.
func (m MultiPublisher) Publish(ctx context.Context, event *domain.TransactionEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

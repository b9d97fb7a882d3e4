package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
)

// AsyncPublisher buffers events and hands them to a Sink from background
// workers. Publish never waits for delivery: when the buffer is full the event
// is dropped and logged. A failed delivery is retried up to the configured
// number of attempts, so consumers may see an event more than once and should
// de-duplicate on the envelope's event id. An event that exhausts its attempts
// is logged and dropped.
type AsyncPublisher struct {
	sink    Sink
	logger  *slog.Logger
	timeout  time.Duration
	workers  int
	attempts int
	backoff  time.Duration
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan Envelope
	wg     sync.WaitGroup
}

var _ portssvc.EventPublisher = (*AsyncPublisher)(nil)

// PublisherOption configures an AsyncPublisher.
type PublisherOption func(*AsyncPublisher)

// WithWorkers sets the number of delivery goroutines (default 1).
func WithWorkers(n int) PublisherOption {
	return func(p *AsyncPublisher) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithDeliveryTimeout bounds each Sink.Deliver call (default 5s).
func WithDeliveryTimeout(d time.Duration) PublisherOption {
	return func(p *AsyncPublisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithRedelivery sets how many times a delivery is attempted (default 3) and the
// base pause between attempts, which grows linearly (default 200ms).
func WithRedelivery(attempts int, backoff time.Duration) PublisherOption {
	return func(p *AsyncPublisher) {
		if attempts > 0 {
			p.attempts = attempts
		}
		if backoff >= 0 {
			p.backoff = backoff
		}
	}
}

// WithLogger sets the logger for delivery failures and drops.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *AsyncPublisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewAsyncPublisher starts the workers. bufferSize bounds the queue.
func NewAsyncPublisher(sink Sink, bufferSize int, opts ...PublisherOption) *AsyncPublisher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	p := &AsyncPublisher{
		sink:    sink,
		logger:  slog.Default(),
		timeout:  5 * time.Second,
		workers:  1,
		attempts: 3,
		backoff:  200 * time.Millisecond,
		now:      time.Now,
		queue:    make(chan Envelope, bufferSize),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.run()
	}
	return p
}

// Publish enqueues the event. It returns immediately in every case.
func (p *AsyncPublisher) Publish(ctx context.Context, event domain.DomainEvent) {
	envelope, err := NewEnvelope(event, p.now())
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to encode domain event", slog.String("event_type", event.EventType()), slog.String("error", err.Error()))
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.WarnContext(ctx, "Publisher closed, dropping domain event",
			slog.String("event_type", envelope.EventType), slog.String("event_id", envelope.EventID))
		return
	}

	select {
	case p.queue <- envelope:
	default:
		p.logger.WarnContext(ctx, "Event buffer full, dropping domain event",
			slog.String("event_type", envelope.EventType),
			slog.String("event_id", envelope.EventID),
			slog.String("tenant_id", envelope.TenantID),
			slog.Int("buffer_size", cap(p.queue)),
		)
	}
}

func (p *AsyncPublisher) run() {
	defer p.wg.Done()
	for envelope := range p.queue {
		p.deliver(envelope)
	}
}

func (p *AsyncPublisher) deliver(envelope Envelope) {
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err = p.deliverOnce(envelope); err == nil {
			return
		}
		if attempt < p.attempts {
			p.logger.Warn("Retrying domain event delivery",
				slog.String("event_id", envelope.EventID),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			time.Sleep(p.backoff * time.Duration(attempt))
		}
	}

	p.logger.Error("Failed to deliver domain event",
		slog.String("event_type", envelope.EventType),
		slog.String("event_id", envelope.EventID),
		slog.String("tenant_id", envelope.TenantID),
		slog.Int("attempts", p.attempts),
		slog.String("error", err.Error()),
	)
}

func (p *AsyncPublisher) deliverOnce(envelope Envelope) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	return p.sink.Deliver(ctx, envelope)
}

// Close stops accepting events, waits for queued ones to be delivered or for
// ctx to end, then closes the sink.
func (p *AsyncPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		p.logger.Warn("Event publisher closed before the buffer drained", slog.Int("pending", len(p.queue)))
		return ctx.Err()
	}
	return p.sink.Close()
}

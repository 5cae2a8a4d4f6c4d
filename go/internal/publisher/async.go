package publisher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/timerball/go/internal/events"
	"github.com/rs/zerolog/log"
)

type AsyncConfig struct {
	QueueSize  int
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		QueueSize:  1024,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// AsyncPublisher queues events and publishes them from a background worker
// with retries, so callers on a game loop never wait on the broker.
type AsyncPublisher struct {
	next    EventPublisher
	config  AsyncConfig
	clock   clockwork.Clock
	metrics MetricsCollector

	queue chan *events.Event

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewAsyncPublisher(next EventPublisher, cfg AsyncConfig, clock clockwork.Clock, metrics MetricsCollector) *AsyncPublisher {
	if metrics == nil {
		metrics = NoOpMetrics{}
	}
	return &AsyncPublisher{
		next:     next,
		config:   cfg,
		clock:    clock,
		metrics:  metrics,
		queue:    make(chan *events.Event, cfg.QueueSize),
		stopChan: make(chan struct{}),
	}
}

// Publish enqueues the event. It never blocks; a full queue drops the event.
func (p *AsyncPublisher) Publish(ctx context.Context, event *events.Event) error {
	select {
	case p.queue <- event:
		return nil
	default:
		p.metrics.RecordEventDropped(event.Type)
		return fmt.Errorf("%w: dropped %s for session %s", ErrQueueFull, event.Type, event.SessionID)
	}
}

func (p *AsyncPublisher) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("async publisher already running")
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)

	log.Info().
		Int("queue_size", p.config.QueueSize).
		Int("max_retries", p.config.MaxRetries).
		Msg("async publisher started")
	return nil
}

// Stop publishes whatever is still queued, once each, then returns
func (p *AsyncPublisher) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("async publisher not running")
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopChan)
	p.wg.Wait()

	log.Info().Msg("async publisher stopped")
	return nil
}

func (p *AsyncPublisher) run(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			p.drain(ctx)
			return
		case event := <-p.queue:
			if err := p.publishWithRetry(ctx, event); err != nil {
				log.Error().Err(err).
					Str("event_id", event.ID).
					Str("event_type", string(event.Type)).
					Str("session_id", event.SessionID).
					Msg("failed to publish event")
			}
		}
	}
}

func (p *AsyncPublisher) drain(ctx context.Context) {
	for {
		select {
		case event := <-p.queue:
			if err := p.next.Publish(ctx, event); err != nil {
				log.Warn().Err(err).Str("event_id", event.ID).Msg("failed to publish event during shutdown")
			}
		default:
			return
		}
	}
}

func (p *AsyncPublisher) publishWithRetry(ctx context.Context, event *events.Event) error {
	var lastErr error

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-p.clock.After(p.config.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := p.next.Publish(ctx, event); err != nil {
			lastErr = err
			p.metrics.RecordPublishAttempt(event.Type, attempt+1, false)
			log.Warn().Err(err).
				Str("event_id", event.ID).
				Int("attempt", attempt+1).
				Msg("failed to publish event, retrying")
			continue
		}

		p.metrics.RecordPublishAttempt(event.Type, attempt+1, true)
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

package publisher

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/timerball/go/internal/events"
)

// MetricsCollector records publishing activity
type MetricsCollector interface {
	RecordEventPublished(eventType events.EventType, success bool, duration time.Duration)
	RecordPublishAttempt(eventType events.EventType, attempt int, success bool)
	RecordEventDropped(eventType events.EventType)
}

// NoOpMetrics discards everything
type NoOpMetrics struct{}

func (NoOpMetrics) RecordEventPublished(events.EventType, bool, time.Duration) {}
func (NoOpMetrics) RecordPublishAttempt(events.EventType, int, bool)           {}
func (NoOpMetrics) RecordEventDropped(events.EventType)                        {}

// TypeStats counts outcomes for one event type
type TypeStats struct {
	Published uint64 `json:"published"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
	Retries   uint64 `json:"retries"`
}

// Stats is a point-in-time copy of the in-memory counters
type Stats struct {
	ByType        map[events.EventType]TypeStats `json:"by_type"`
	LastPublished time.Time                      `json:"last_published"`
	TotalLatency  time.Duration                  `json:"total_latency"`
}

// InMemoryMetrics keeps counters in process so they can be served on /ws/stats
type InMemoryMetrics struct {
	clock clockwork.Clock

	mu            sync.Mutex
	byType        map[events.EventType]TypeStats
	lastPublished time.Time
	totalLatency  time.Duration
}

func NewInMemoryMetrics(clock clockwork.Clock) *InMemoryMetrics {
	return &InMemoryMetrics{
		clock:  clock,
		byType: make(map[events.EventType]TypeStats),
	}
}

func (m *InMemoryMetrics) RecordEventPublished(eventType events.EventType, success bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.byType[eventType]
	if success {
		s.Published++
		m.lastPublished = m.clock.Now()
	} else {
		s.Failed++
	}
	m.byType[eventType] = s
	m.totalLatency += duration
}

func (m *InMemoryMetrics) RecordPublishAttempt(eventType events.EventType, attempt int, success bool) {
	if attempt <= 1 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.byType[eventType]
	s.Retries++
	m.byType[eventType] = s
}

func (m *InMemoryMetrics) RecordEventDropped(eventType events.EventType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.byType[eventType]
	s.Dropped++
	m.byType[eventType] = s
}

// Stats returns a copy of the counters
func (m *InMemoryMetrics) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := Stats{
		ByType:        make(map[events.EventType]TypeStats, len(m.byType)),
		LastPublished: m.lastPublished,
		TotalLatency:  m.totalLatency,
	}
	for k, v := range m.byType {
		out.ByType[k] = v
	}
	return out
}

// MetricPublisher wraps a publisher and records each outcome
type MetricPublisher struct {
	publisher EventPublisher
	metrics   MetricsCollector
	clock     clockwork.Clock
}

func NewMetricPublisher(publisher EventPublisher, metrics MetricsCollector, clock clockwork.Clock) *MetricPublisher {
	return &MetricPublisher{
		publisher: publisher,
		metrics:   metrics,
		clock:     clock,
	}
}

func (p *MetricPublisher) Publish(ctx context.Context, event *events.Event) error {
	start := p.clock.Now()

	err := p.publisher.Publish(ctx, event)

	p.metrics.RecordEventPublished(event.Type, err == nil, p.clock.Since(start))
	return err
}

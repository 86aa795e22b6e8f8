// Package querylog collects search query events and ships them to Kafka in
// batches for offline analysis of what users search for.
package querylog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AlirezaFarnia/PsyNeuLink/pkg/kafka"
)

// Event records a single executed search.
type Event struct {
	RequestID string    `json:"request_id"`
	Query     string    `json:"query"`
	Terms     []string  `json:"terms"`
	Hits      int       `json:"hits"`
	LatencyMS float64   `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Stamp     string    `json:"stamp"`
	At        time.Time `json:"at"`
}

// Publisher ships a batch of events. *kafka.Producer satisfies it via
// kafkaPublisher; tests supply their own.
type Publisher interface {
	Publish(ctx context.Context, events ...kafka.Event) error
}

// Collector buffers events and flushes them when the batch fills or the
// flush interval elapses. Track never blocks: when the buffer is full the
// event is dropped and counted.
type Collector struct {
	publisher Publisher
	logger    *slog.Logger

	events   chan Event
	interval time.Duration
	size     int

	mu      sync.Mutex
	dropped int64

	done chan struct{}
	once sync.Once
}

// NewCollector creates a Collector flushing batches of up to size events
// every interval.
func NewCollector(publisher Publisher, size int, interval time.Duration) *Collector {
	if size <= 0 {
		size = 100
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Collector{
		publisher: publisher,
		logger:    slog.Default().With("component", "querylog"),
		events:    make(chan Event, size*4),
		interval:  interval,
		size:      size,
		done:      make(chan struct{}),
	}
}

// Track enqueues an event. It never blocks the caller; full buffers drop.
func (c *Collector) Track(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	select {
	case c.events <- ev:
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
	}
}

// Dropped returns how many events were discarded because the buffer was full.
func (c *Collector) Dropped() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Run batches and publishes events until ctx is cancelled, flushing any
// buffered events before returning.
func (c *Collector) Run(ctx context.Context) {
	defer c.once.Do(func() { close(c.done) })

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	batch := make([]Event, 0, c.size)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		c.publish(batch)
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			// drain whatever is already buffered
			for {
				select {
				case ev := <-c.events:
					batch = append(batch, ev)
					if len(batch) >= c.size {
						flush()
					}
				default:
					flush()
					return
				}
			}
		case <-ticker.C:
			flush()
		case ev := <-c.events:
			batch = append(batch, ev)
			if len(batch) >= c.size {
				flush()
			}
		}
	}
}

// Done is closed once Run has flushed and returned.
func (c *Collector) Done() <-chan struct{} {
	return c.done
}

func (c *Collector) publish(batch []Event) {
	events := make([]kafka.Event, 0, len(batch))
	for _, ev := range batch {
		events = append(events, kafka.Event{Key: ev.RequestID, Value: ev})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.publisher.Publish(ctx, events...); err != nil {
		c.logger.Error("failed to publish query events", "count", len(batch), "error", err)
		return
	}
	c.logger.Debug("published query events", "count", len(batch))
}

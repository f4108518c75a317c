// Package broadcast pkg/broadcast/broadcaster.go
package broadcast

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ringview/ringview/pkg/aggregate"
	"github.com/ringview/ringview/pkg/alerts"
	"github.com/ringview/ringview/pkg/collector"
	"github.com/ringview/ringview/pkg/discovery"
	"github.com/ringview/ringview/pkg/health"
	"github.com/ringview/ringview/pkg/stats"
)

const (
	defaultInterval     = 5 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// Broadcaster runs the poll loop and fans results out to subscribers.
// The HTTP API serves the same snapshot each cycle produces, so both
// surfaces always agree.
type Broadcaster struct {
	extractor *collector.Extractor
	connector collector.SessionConnector
	provider  discovery.Provider
	source    Source

	tracker      *alerts.Tracker
	stats        *stats.Metrics
	interval     time.Duration
	writeTimeout time.Duration

	mu          sync.RWMutex
	subscribers map[uuid.UUID]*Subscriber

	snapMu  sync.RWMutex
	lastMet *MetricsPayload
	lastOps *OperationsPayload
}

// BroadcasterOption customizes a Broadcaster.
type BroadcasterOption func(*Broadcaster)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) BroadcasterOption {
	return func(b *Broadcaster) {
		if d > 0 {
			b.interval = d
		}
	}
}

// WithWriteTimeout sets the per-subscriber write deadline.
func WithWriteTimeout(d time.Duration) BroadcasterOption {
	return func(b *Broadcaster) {
		if d > 0 {
			b.writeTimeout = d
		}
	}
}

// WithTracker attaches a health-transition alert tracker; fired alerts are
// also delivered on the alerts topic.
func WithTracker(t *alerts.Tracker) BroadcasterOption {
	return func(b *Broadcaster) {
		b.tracker = t
	}
}

// WithStats attaches self-instrumentation collectors.
func WithStats(m *stats.Metrics) BroadcasterOption {
	return func(b *Broadcaster) {
		b.stats = m
	}
}

// NewBroadcaster creates a broadcaster.
func NewBroadcaster(
	extractor *collector.Extractor,
	connector collector.SessionConnector,
	provider discovery.Provider,
	source Source,
	opts ...BroadcasterOption,
) *Broadcaster {
	b := &Broadcaster{
		extractor:    extractor,
		connector:    connector,
		provider:     provider,
		source:       source,
		interval:     defaultInterval,
		writeTimeout: defaultWriteTimeout,
		subscribers:  make(map[uuid.UUID]*Subscriber),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Run drives the poll loop until the context is canceled. One cycle runs
// immediately so subscribers and the API have data before the first tick.
func (b *Broadcaster) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	b.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.cycle(ctx)
		}
	}
}

// cycle runs one tick with a crash guard so a panic in extraction or
// delivery never kills the loop.
func (b *Broadcaster) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Poll cycle panicked: %v", r)
		}
	}()

	if !b.source.Connected() {
		if b.stats != nil {
			b.stats.PollCyclesSkipped.Inc()
		}

		return
	}

	endpoints, err := b.provider.Endpoints(ctx)
	if err != nil {
		log.Printf("Failed to discover endpoints: %v", err)
		return
	}

	start := time.Now()
	nodes := b.extractor.ExtractCluster(ctx, b.connector, endpoints)

	// The source may have gone away while we were polling; its cluster
	// view is no longer authoritative, so drop the cycle's results.
	if !b.source.Connected() {
		log.Printf("Source disconnected mid-cycle, discarding results")
		return
	}

	agg := aggregate.Aggregate(nodes)
	assessment := health.Score(agg, nodes)

	metricsPayload := &MetricsPayload{Cluster: agg, Health: assessment, Nodes: nodes}
	opsPayload := BuildOperations(nodes)

	b.snapMu.Lock()
	b.lastMet = metricsPayload
	b.lastOps = &opsPayload
	b.snapMu.Unlock()

	if b.stats != nil {
		b.stats.PollCycles.Inc()
		b.stats.PollCycleDuration.Observe(time.Since(start).Seconds())
		b.stats.NodesPolled.Set(float64(agg.NodeCount))
		b.stats.NodesReachable.Set(float64(agg.ReachableCount))
	}

	if b.tracker != nil {
		if alert := b.tracker.Observe(ctx, &assessment); alert != nil {
			b.Publish(TopicAlerts, Envelope{Type: TypeAlert, Data: alert})

			if b.stats != nil {
				b.stats.AlertsFired.WithLabelValues(string(assessment.Status)).Inc()
			}
		}
	}

	b.Publish(TopicMetrics, Envelope{Type: TypeMetricsUpdate, Data: metricsPayload})
	b.Publish(TopicOperations, Envelope{Type: TypeOperationsUpdate, Data: opsPayload})
}

// Publish delivers one envelope concurrently to every subscriber of the
// topic. A failed delivery drops the subscriber before the next tick.
func (b *Broadcaster) Publish(topic string, envelope Envelope) {
	b.mu.RLock()
	targets := make([]*Subscriber, 0, len(b.subscribers))

	for _, sub := range b.subscribers {
		if sub.Subscribed(topic) {
			targets = append(targets, sub)
		}
	}
	b.mu.RUnlock()

	var wg sync.WaitGroup

	wg.Add(len(targets))

	for _, sub := range targets {
		go func(s *Subscriber) {
			defer wg.Done()

			if err := s.Send(envelope, b.writeTimeout); err != nil {
				log.Printf("Dropping subscriber %s: %v", s.ID, err)

				if b.drop(s) && b.stats != nil {
					b.stats.DeliveryFailures.Inc()
				}
			}
		}(sub)
	}

	wg.Wait()
}

// drop removes and closes a subscriber; it reports whether the subscriber
// was still registered so concurrent drops count once.
func (b *Broadcaster) drop(sub *Subscriber) bool {
	b.mu.Lock()
	_, present := b.subscribers[sub.ID]
	delete(b.subscribers, sub.ID)
	b.mu.Unlock()

	if !present {
		return false
	}

	_ = sub.Close()

	if b.stats != nil {
		b.stats.SubscribersActive.Dec()
	}

	return true
}

// Register adds a subscriber and immediately sends it the last snapshot
// for its topics, so a new client does not wait a full interval for data.
func (b *Broadcaster) Register(conn Conn, topics ...string) *Subscriber {
	sub := NewSubscriber(conn, topics...)

	b.mu.Lock()
	b.subscribers[sub.ID] = sub
	b.mu.Unlock()

	if b.stats != nil {
		b.stats.SubscribersActive.Inc()
	}

	metricsPayload, opsPayload := b.Snapshot()

	if metricsPayload != nil && sub.Subscribed(TopicMetrics) {
		if err := sub.Send(Envelope{Type: TypeMetricsUpdate, Data: metricsPayload}, b.writeTimeout); err != nil {
			log.Printf("Failed to send snapshot to %s: %v", sub.ID, err)
		}
	}

	if opsPayload != nil && sub.Subscribed(TopicOperations) {
		if err := sub.Send(Envelope{Type: TypeOperationsUpdate, Data: opsPayload}, b.writeTimeout); err != nil {
			log.Printf("Failed to send snapshot to %s: %v", sub.ID, err)
		}
	}

	return sub
}

// Unregister removes a subscriber, closing its connection.
func (b *Broadcaster) Unregister(sub *Subscriber) {
	_ = b.drop(sub)
}

// HandleControl applies a subscribe/unsubscribe frame.
func (b *Broadcaster) HandleControl(sub *Subscriber, msg ControlMessage) {
	switch msg.Type {
	case TypeSubscribe:
		sub.Subscribe(msg.Channels)
	case TypeUnsubscribe:
		sub.Unsubscribe(msg.Channels)
	default:
		log.Printf("Ignoring unknown control message type %q from %s", msg.Type, sub.ID)
	}
}

// Snapshot returns the last completed cycle's payloads, or nils before the
// first successful cycle.
func (b *Broadcaster) Snapshot() (*MetricsPayload, *OperationsPayload) {
	b.snapMu.RLock()
	defer b.snapMu.RUnlock()

	return b.lastMet, b.lastOps
}

// SubscriberCount reports the number of connected subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscribers)
}

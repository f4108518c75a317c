// Package broadcast pkg/broadcast/subscriber.go
package broadcast

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Subscriber is one connected client with its topic selection. Writes to
// the connection are serialized through the subscriber's mutex.
type Subscriber struct {
	ID   uuid.UUID
	conn Conn

	mu     sync.Mutex
	topics map[string]struct{}
}

// NewSubscriber wraps a connection. Unknown topics are dropped; with no
// valid topic the subscriber defaults to the metrics topic.
func NewSubscriber(conn Conn, topics ...string) *Subscriber {
	s := &Subscriber{
		ID:     uuid.New(),
		conn:   conn,
		topics: make(map[string]struct{}),
	}

	for _, topic := range topics {
		if validTopic(topic) {
			s.topics[topic] = struct{}{}
		}
	}

	if len(s.topics) == 0 {
		s.topics[TopicMetrics] = struct{}{}
	}

	return s
}

// Subscribe adds topics to the subscriber's selection.
func (s *Subscriber) Subscribe(topics []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, topic := range topics {
		if validTopic(topic) {
			s.topics[topic] = struct{}{}
		}
	}
}

// Unsubscribe removes topics from the subscriber's selection.
func (s *Subscriber) Unsubscribe(topics []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, topic := range topics {
		delete(s.topics, topic)
	}
}

// Subscribed reports whether the subscriber wants the given topic.
func (s *Subscriber) Subscribed(topic string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.topics[topic]

	return ok
}

// Send writes one envelope as a JSON text frame, bounded by the write
// deadline so a stuck peer cannot stall the broadcast.
func (s *Subscriber) Send(envelope Envelope, deadline time.Duration) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(deadline)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

// Close closes the underlying connection.
func (s *Subscriber) Close() error {
	return s.conn.Close()
}

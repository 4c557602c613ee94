package bus

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process Bus. Publish delivers synchronously to every
// handler subscribed to the exact topic and records the message.
type Memory struct {
	mu        sync.RWMutex
	handlers  map[string][]Handler
	published []Message
}

// NewMemory returns an empty in-process bus.
func NewMemory() *Memory {
	return &Memory{handlers: make(map[string][]Handler)}
}

// Publish records the message and hands it to the topic's subscribers.
func (m *Memory) Publish(ctx context.Context, topic string, payload []byte) error {
	msg := Message{
		Topic:   topic,
		Payload: slices.Clone(payload),
	}

	m.mu.Lock()
	m.published = append(m.published, msg)
	handlers := slices.Clone(m.handlers[topic])
	m.mu.Unlock()

	for _, h := range handlers {
		h(ctx, msg)
	}

	return nil
}

// Subscribe registers handler for topic.
func (m *Memory) Subscribe(_ context.Context, topic string, handler Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers[topic] = append(m.handlers[topic], handler)

	return nil
}

// Close drops every subscription.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.handlers)
}

// Published returns the messages published to topic so far.
func (m *Memory) Published(topic string) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Message

	for _, msg := range m.published {
		if msg.Topic == topic {
			result = append(result, msg)
		}
	}

	return result
}

var (
	_ Bus = (*Memory)(nil)
	_ Bus = (*Client)(nil)
)

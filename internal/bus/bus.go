package bus

import "context"

// Message is one delivery from the bus.
type Message struct {
	// Topic is the topic the message was published to.
	Topic string
	// Payload is the raw message body.
	Payload []byte
}

// Handler processes one delivery. It must not block for long: deliveries of a
// topic are handed over one at a time, in publication order.
type Handler func(ctx context.Context, msg Message)

// Bus is the publish/subscribe contract shared by Client and Memory.
type Bus interface {
	// Publish sends payload to topic.
	Publish(ctx context.Context, topic string, payload []byte) error
	// Subscribe registers handler for topic.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	// Close disconnects from the bus.
	Close()
}

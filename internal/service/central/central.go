package central

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oshokin/room-control/internal/api/message"
	"github.com/oshokin/room-control/internal/logger"
)

// DefaultQueueSize is the number of control messages buffered before senders wait.
const DefaultQueueSize = 256

// Publisher sends payloads to bus topics.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Central queues relayed control messages and republishes them.
type Central struct {
	// publisher is the bus.
	publisher Publisher
	// fallbackTopic is used when a message names no response topic.
	fallbackTopic string
	// queue decouples the gRPC handlers from the bus.
	queue chan message.Control
	// now is the clock stamped on actuation commands.
	now func() time.Time
}

// New creates a central publishing to publisher.
func New(publisher Publisher, fallbackTopic string, queueSize int) *Central {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	return &Central{
		publisher:     publisher,
		fallbackTopic: fallbackTopic,
		queue:         make(chan message.Control, queueSize),
		now:           time.Now,
	}
}

// Accept queues a control message, waiting while the queue is full.
func (c *Central) Accept(ctx context.Context, ctl message.Control) error {
	select {
	case c.queue <- ctl:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("queue control message: %w", ctx.Err())
	}
}

// Run handles queued messages until ctx is done, then handles whatever is
// still queued and returns.
func (c *Central) Run(ctx context.Context) {
	for {
		select {
		case ctl := <-c.queue:
			c.handle(ctx, ctl)
		case <-ctx.Done():
			c.drain(context.WithoutCancel(ctx))

			return
		}
	}
}

func (c *Central) drain(ctx context.Context) {
	for {
		select {
		case ctl := <-c.queue:
			c.handle(ctx, ctl)
		default:
			return
		}
	}
}

// handle logs the message and republishes it.
func (c *Central) handle(ctx context.Context, ctl message.Control) {
	logger.InfoKV(ctx, Describe(ctl),
		"room_number", ctl.RoomNumber,
		"tipo_controle", ctl.ControlType,
		"acao", ctl.Action,
		"timestamp", ctl.Timestamp)

	topic := ctl.ResponseTopic
	if topic == "" {
		topic = c.fallbackTopic
	}

	payload, err := json.Marshal(message.NewActuation(ctl, c.now()))
	if err != nil {
		logger.ErrorKV(ctx, "Failed to encode actuation", "room_number", ctl.RoomNumber, "error", err)

		return
	}

	if err := c.publisher.Publish(ctx, topic, payload); err != nil {
		logger.ErrorKV(ctx, "Failed to publish actuation", "topic", topic, "room_number", ctl.RoomNumber, "error", err)
	}
}

// Describe renders a control message as an operator-facing sentence.
//
//nolint:cyclop // One case per control type and action.
func Describe(ctl message.Control) string {
	switch ctl.ControlType {
	case message.ControlAC:
		switch ctl.Action {
		case message.ActionDown:
			return fmt.Sprintf("High temperature in room %s, turning the air conditioner on to cool it down", ctl.RoomNumber)
		case message.ActionUp:
			return fmt.Sprintf("Low temperature in room %s, turning the air conditioner on to warm it up", ctl.RoomNumber)
		default:
			return fmt.Sprintf("Temperature back to ideal in room %s, turning the air conditioner off", ctl.RoomNumber)
		}
	case message.ControlHC:
		switch ctl.Action {
		case message.ActionDown:
			return fmt.Sprintf("High humidity in room %s, turning the humidity controller on", ctl.RoomNumber)
		case message.ActionUp:
			return fmt.Sprintf("Low humidity in room %s, turning the humidity controller on", ctl.RoomNumber)
		default:
			return fmt.Sprintf("Humidity back to ideal in room %s, turning the humidity controller off", ctl.RoomNumber)
		}
	case message.ControlDisconnect:
		return fmt.Sprintf("Room %s disconnected, shutting its controllers down", ctl.RoomNumber)
	case message.ControlAlarm:
		if ctl.Action == message.ActionMovement {
			return fmt.Sprintf("Motion detected in room %s, triggering the alarm", ctl.RoomNumber)
		}

		return fmt.Sprintf("Alarm reset in room %s", ctl.RoomNumber)
	case message.ControlData:
		return fmt.Sprintf("Invalid data from room %s discarded", ctl.RoomNumber)
	default:
		return fmt.Sprintf("Control %s/%s for room %s", ctl.ControlType, ctl.Action, ctl.RoomNumber)
	}
}

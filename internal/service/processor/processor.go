package processor

import (
	"context"

	"github.com/oshokin/room-control/internal/api/message"
	"github.com/oshokin/room-control/internal/bus"
	"github.com/oshokin/room-control/internal/domain/alarm"
	"github.com/oshokin/room-control/internal/domain/room"
	"github.com/oshokin/room-control/internal/logger"
)

// alarmShardKey routes every arm and disarm command to the same shard.
const alarmShardKey = "alarm-control"

// Coordinator is the part of the room coordinator the processor drives.
type Coordinator interface {
	Ingest(ctx context.Context, t room.Telemetry, replyTo string) ([]room.Directive, error)
	SetAlarmArmed(ctx context.Context, armed bool, actor *alarm.Actor, replyTo string) ([]room.Directive, error)
	ApplyFeedback(ctx context.Context, d room.Directive) bool
}

// Processor routes bus deliveries to the coordinator.
type Processor struct {
	coordinator Coordinator
	topics      bus.Topics
	dispatcher  *Dispatcher
}

// NewProcessor binds a coordinator to the topics of one group.
func NewProcessor(coordinator Coordinator, topics bus.Topics, dispatcher *Dispatcher) *Processor {
	return &Processor{
		coordinator: coordinator,
		topics:      topics,
		dispatcher:  dispatcher,
	}
}

// Subscribe registers the processor on every inbound and feedback topic.
func (p *Processor) Subscribe(ctx context.Context, b bus.Bus) error {
	topics := append([]string{
		p.topics.RoomData,
		p.topics.OtherRooms,
		p.topics.AlarmControl,
	}, p.topics.Feedback()...)

	for _, topic := range topics {
		if err := b.Subscribe(ctx, topic, p.Handle); err != nil {
			return err
		}
	}

	return nil
}

// Handle decodes one delivery and queues the matching coordinator call.
// Malformed payloads are logged and dropped.
func (p *Processor) Handle(ctx context.Context, msg bus.Message) {
	switch msg.Topic {
	case p.topics.RoomData, p.topics.OtherRooms:
		p.handleTelemetry(ctx, msg)
	case p.topics.AlarmControl:
		p.handleAlarmControl(ctx, msg)
	case p.topics.Actuation, p.topics.OtherRoomsActuation:
		p.handleFeedback(ctx, msg)
	default:
		logger.DebugKV(ctx, "Message on unexpected topic dropped", "topic", msg.Topic)
	}
}

func (p *Processor) handleTelemetry(ctx context.Context, msg bus.Message) {
	t, err := message.ParseRoomData(msg.Payload)
	if err != nil {
		logger.WarnKV(ctx, "Malformed telemetry dropped", "topic", msg.Topic, "error", err)

		return
	}

	replyTo, _ := p.topics.ReplyTo(msg.Topic)

	p.submit(ctx, string(t.RoomKey), func(ctx context.Context) {
		// Failures are logged by the coordinator; ingestion continues.
		_, _ = p.coordinator.Ingest(ctx, t, replyTo) //nolint:errcheck // Already logged.
	})
}

func (p *Processor) handleAlarmControl(ctx context.Context, msg bus.Message) {
	armed, actor, err := message.ParseAlarmCommand(msg.Payload)
	if err != nil {
		logger.WarnKV(ctx, "Malformed alarm command dropped", "topic", msg.Topic, "error", err)

		return
	}

	replyTo, _ := p.topics.ReplyTo(msg.Topic)

	p.submit(ctx, alarmShardKey, func(ctx context.Context) {
		_, _ = p.coordinator.SetAlarmArmed(ctx, armed, actor, replyTo) //nolint:errcheck // Already logged.
	})
}

func (p *Processor) handleFeedback(ctx context.Context, msg bus.Message) {
	d, ok, err := message.ParseActuation(msg.Payload)
	if err != nil {
		logger.WarnKV(ctx, "Malformed actuation dropped", "topic", msg.Topic, "error", err)

		return
	}

	if !ok {
		return
	}

	p.submit(ctx, string(d.RoomKey), func(ctx context.Context) {
		p.coordinator.ApplyFeedback(ctx, d)
	})
}

func (p *Processor) submit(ctx context.Context, key string, job Job) {
	if err := p.dispatcher.Submit(ctx, key, job); err != nil {
		logger.WarnKV(ctx, "Message dropped", "room_number", key, "error", err)
	}
}

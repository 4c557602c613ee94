package console

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oshokin/room-control/internal/api/message"
	"github.com/oshokin/room-control/internal/bus"
	"github.com/oshokin/room-control/internal/domain/alarm"
	"github.com/oshokin/room-control/internal/logger"
)

// Publisher sends raw payloads to a bus topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Subscriber registers handlers for a bus topic.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler bus.Handler) error
}

// Switch publishes an arm (true) or disarm (false) command.
func Switch(ctx context.Context, pub Publisher, topic string, armed bool, actor *alarm.Actor) error {
	payload, err := json.Marshal(message.NewAlarmCommand(armed, actor))
	if err != nil {
		return fmt.Errorf("encode alarm command: %w", err)
	}

	if err := pub.Publish(ctx, topic, payload); err != nil {
		return fmt.Errorf("publish alarm command: %w", err)
	}

	logger.InfoKV(ctx, "Alarm command published", "topic", topic, "is_armed", armed, "actor", formatActor(actor))

	return nil
}

// Watch logs every alarm event published on topic until ctx is done.
func Watch(ctx context.Context, sub Subscriber, topic string) error {
	if err := sub.Subscribe(ctx, topic, logEvent); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	logger.InfoKV(ctx, "Watching alarm events", "topic", topic)

	<-ctx.Done()

	return nil
}

func logEvent(ctx context.Context, msg bus.Message) {
	var a message.Actuation
	if err := json.Unmarshal(msg.Payload, &a); err != nil {
		logger.WarnKV(ctx, "Malformed alarm event", "error", err)

		return
	}

	switch a.Action {
	case message.ActionMovement:
		logger.WarnKV(ctx, "Intrusion detected", "room_number", string(a.RoomNumber), "timestamp", a.Timestamp)
	default:
		logger.InfoKV(ctx, "Alarm event",
			"room_number", string(a.RoomNumber),
			"control", a.ControlType,
			"action", a.Action,
			"timestamp", a.Timestamp)
	}
}

// formatActor renders the actor as username@hostname.
func formatActor(actor *alarm.Actor) string {
	if actor == nil {
		return "<unknown>"
	}

	return fmt.Sprintf("%s@%s", actor.Username, actor.Hostname)
}

package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oshokin/room-control/internal/api/message"
	"github.com/oshokin/room-control/internal/bus"
	"github.com/oshokin/room-control/internal/logger"
)

// Simulator drives one Room over the bus.
type Simulator struct {
	room   *Room
	bus    bus.Bus
	topics bus.Topics
	// interval is the telemetry period.
	interval time.Duration
	// motionInterval is the motion sensor toggle period.
	motionInterval time.Duration
	now            func() time.Time
}

// New creates a simulator.
func New(r *Room, b bus.Bus, topics bus.Topics, interval, motionInterval time.Duration) *Simulator {
	return &Simulator{
		room:           r,
		bus:            b,
		topics:         topics,
		interval:       interval,
		motionInterval: motionInterval,
		now:            time.Now,
	}
}

// Run subscribes to the actuation topic and publishes telemetry until ctx is done.
func (s *Simulator) Run(ctx context.Context) error {
	if err := s.bus.Subscribe(ctx, s.topics.Actuation, s.onActuation); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	telemetry := time.NewTicker(s.interval)
	defer telemetry.Stop()

	motion := time.NewTicker(s.motionInterval)
	defer motion.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-motion.C:
			s.room.ToggleMotion()
		case <-telemetry.C:
			s.room.Step()

			if err := s.publish(ctx); err != nil {
				logger.WarnKV(ctx, "Failed to publish telemetry", "error", err)
			}
		}
	}
}

func (s *Simulator) publish(ctx context.Context) error {
	reading := s.room.Reading(s.now())

	payload, err := json.Marshal(message.NewRoomData(reading))
	if err != nil {
		return fmt.Errorf("encode room data: %w", err)
	}

	if err := s.bus.Publish(ctx, s.topics.RoomData, payload); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Telemetry published",
		"temperature", reading.Temperature,
		"humidity", reading.Humidity,
		"movement", reading.MotionDetected,
		"ac", reading.ACActive,
		"hc", reading.HumidityCtrlActive)

	return nil
}

func (s *Simulator) onActuation(ctx context.Context, msg bus.Message) {
	d, ok, err := message.ParseActuation(msg.Payload)
	if err != nil {
		logger.DebugKV(ctx, "Malformed actuation ignored", "error", err)

		return
	}

	if ok && s.room.Apply(d) {
		logger.InfoKV(ctx, "Actuator command applied", "axis", d.Axis.String(), "action", d.Action.String())
	}
}

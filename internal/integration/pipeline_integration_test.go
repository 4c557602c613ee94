package integration

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/oshokin/room-control/internal/api/grpc/relay"
	"github.com/oshokin/room-control/internal/api/message"
	"github.com/oshokin/room-control/internal/bus"
	"github.com/oshokin/room-control/internal/domain/alarm"
	"github.com/oshokin/room-control/internal/domain/room"
	"github.com/oshokin/room-control/internal/service/central"
	"github.com/oshokin/room-control/internal/service/console"
	"github.com/oshokin/room-control/internal/service/coordinator"
	"github.com/oshokin/room-control/internal/service/processor"
)

// pipeline wires the processor, the relay queue, the gRPC relay and the control central over one in-process bus.
type pipeline struct {
	bus         *bus.Memory
	topics      bus.Topics
	coordinator *coordinator.Coordinator
}

func startPipeline(t *testing.T) *pipeline {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	memory := bus.NewMemory()
	topics := bus.NewTopics("G")

	// Control central behind a real loopback gRPC server.
	svc := central.New(memory, topics.Actuation, central.DefaultQueueSize)
	centralDone := make(chan struct{})

	go func() {
		defer close(centralDone)

		svc.Run(ctx)
	}()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	grpcServer := grpc.NewServer()
	relay.NewServer(svc).Register(grpcServer)

	go func() {
		_ = grpcServer.Serve(lis) //nolint:errcheck // Stopped by cleanup.
	}()

	client, err := relay.Dial(ctx, lis.Addr().String(), relay.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	relayQueue := relay.NewQueue(client, 16)
	queueCtx, stopQueue := context.WithCancel(context.Background())
	queueDone := make(chan struct{})

	go func() {
		defer close(queueDone)

		relayQueue.Run(queueCtx)
	}()

	coord, err := coordinator.New(ctx, relayQueue, nil, coordinator.WithDisconnectChannel(topics.Actuation))
	require.NoError(t, err)

	dispatcher := processor.NewDispatcher(2)
	dispatcher.Start(context.WithoutCancel(ctx))

	require.NoError(t, processor.NewProcessor(coord, topics, dispatcher).Subscribe(ctx, memory))

	t.Cleanup(func() {
		memory.Close()
		dispatcher.Stop()
		stopQueue()
		<-queueDone
		grpcServer.GracefulStop()
		cancel()
		<-centralDone

		_ = client.Close()
	})

	return &pipeline{
		bus:         memory,
		topics:      topics,
		coordinator: coord,
	}
}

func (p *pipeline) publishReading(t *testing.T, reading room.Telemetry) {
	t.Helper()

	payload, err := json.Marshal(message.NewRoomData(reading))
	require.NoError(t, err)
	require.NoError(t, p.bus.Publish(context.Background(), p.topics.RoomData, payload))
}

func (p *pipeline) actuations(t *testing.T, topic string) []message.Actuation {
	t.Helper()

	var result []message.Actuation

	for _, msg := range p.bus.Published(topic) {
		var a message.Actuation
		require.NoError(t, json.Unmarshal(msg.Payload, &a))

		result = append(result, a)
	}

	return result
}

func reading(key room.Key, celsius, humidity float64, motion bool) room.Telemetry {
	return room.Telemetry{
		RoomKey:        key,
		Temperature:    celsius,
		Humidity:       humidity,
		SensorKind:     room.SensorCelsius,
		MotionDetected: motion,
		ObservedAt:     time.Now().Truncate(time.Second),
	}
}

// TestPipeline_ClimateFeedbackLoop sends a hot reading and waits for the AC command to come back as feedback.
func TestPipeline_ClimateFeedbackLoop(t *testing.T) {
	t.Parallel()

	p := startPipeline(t)

	p.publishReading(t, reading("101", 30, 45, false))

	require.Eventually(t, func() bool {
		rec, ok := p.coordinator.Snapshot("101")

		return ok && rec.ACActive
	}, 5*time.Second, 10*time.Millisecond)

	commands := p.actuations(t, p.topics.Actuation)
	require.NotEmpty(t, commands)
	require.Equal(t, message.RoomNumber("101"), commands[0].RoomNumber)
	require.Equal(t, message.ControlAC, commands[0].ControlType)
	require.Equal(t, message.ActionDown, commands[0].Action)

	rec, ok := p.coordinator.Snapshot("101")
	require.True(t, ok)
	require.True(t, rec.Connected)
	require.False(t, rec.HumidityCtrlActive)
	require.InDelta(t, 30.0, rec.LastTemperature, 1e-9)
}

// TestPipeline_IntrusionAndDisarm checks a motion event while armed and the acknowledgement of a console disarm.
func TestPipeline_IntrusionAndDisarm(t *testing.T) {
	t.Parallel()

	p := startPipeline(t)
	ctx := context.Background()

	require.True(t, p.coordinator.AlarmState().IsArmed)

	p.publishReading(t, reading("7", 22, 45, true))

	require.Eventually(t, func() bool {
		for _, a := range p.actuations(t, p.topics.Actuation) {
			if a.ControlType == message.ControlAlarm && a.Action == message.ActionMovement {
				return a.RoomNumber == "7"
			}
		}

		return false
	}, 5*time.Second, 10*time.Millisecond)

	actor := &alarm.Actor{Hostname: "desk-1", Username: "guard"}
	require.NoError(t, console.Switch(ctx, p.bus, p.topics.AlarmControl, false, actor))

	require.Eventually(t, func() bool {
		return len(p.actuations(t, p.topics.AlarmActuation)) > 0
	}, 5*time.Second, 10*time.Millisecond)

	state := p.coordinator.AlarmState()
	require.False(t, state.IsArmed)
	require.Equal(t, actor, state.LastActor)

	ack := p.actuations(t, p.topics.AlarmActuation)[0]
	require.Equal(t, message.RoomNumber("7"), ack.RoomNumber)
	require.Equal(t, message.ControlAlarm, ack.ControlType)
	require.Equal(t, message.ActionOff, ack.Action)
}

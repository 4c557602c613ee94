package simulator

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/room-control/internal/api/message"
	"github.com/oshokin/room-control/internal/bus"
	"github.com/oshokin/room-control/internal/domain/room"
)

func newTestRoom(kind room.SensorKind) *Room {
	return NewRoom("101", kind, rand.New(rand.NewPCG(1, 2)))
}

func actuation(t *testing.T, roomNumber, controlType, action string) []byte {
	t.Helper()

	payload, err := json.Marshal(message.Actuation{
		RoomNumber:  message.RoomNumber(roomNumber),
		ControlType: controlType,
		Action:      action,
		Timestamp:   "2024-05-10T12:00:00Z",
	})
	require.NoError(t, err)

	return payload
}

func TestNewRoom_StartsComfortable(t *testing.T) {
	t.Parallel()

	for seed := range uint64(50) {
		r := NewRoom("1", room.SensorCelsius, rand.New(rand.NewPCG(seed, seed)))
		reading := r.Reading(time.Now())

		require.GreaterOrEqual(t, reading.Temperature, 20.0)
		require.LessOrEqual(t, reading.Temperature, 25.0)
		require.GreaterOrEqual(t, reading.Humidity, 40.0)
		require.LessOrEqual(t, reading.Humidity, 60.0)
		require.False(t, reading.ACActive)
		require.False(t, reading.HumidityCtrlActive)
	}
}

func TestRoom_StepFollowsActuators(t *testing.T) {
	t.Parallel()

	r := newTestRoom(room.SensorCelsius)
	r.temperature = 25
	r.humidity = 50

	require.True(t, r.Apply(room.ClimateAdjust("101", room.AxisAC, room.ActionLower, 0)))
	require.True(t, r.Apply(room.ClimateAdjust("101", room.AxisHumidity, room.ActionRaise, 0)))

	r.Step()
	r.Step()

	reading := r.Reading(time.Now())
	require.InDelta(t, 24.0, reading.Temperature, 1e-9)
	require.InDelta(t, 60.0, reading.Humidity, 1e-9)
	require.True(t, reading.ACActive)
	require.True(t, reading.HumidityCtrlActive)

	require.True(t, r.Apply(room.ClimateAdjust("101", room.AxisAC, room.ActionOff, 0)))
	require.False(t, r.Reading(time.Now()).ACActive)
}

func TestRoom_IdleDriftStaysInRange(t *testing.T) {
	t.Parallel()

	r := newTestRoom(room.SensorCelsius)

	for range 200 {
		before := r.temperature

		r.Step()

		require.GreaterOrEqual(t, r.temperature-before, -0.1-1e-9)
		require.LessOrEqual(t, r.temperature-before, 0.5+1e-9)
		require.GreaterOrEqual(t, r.humidity, 0.0)
		require.LessOrEqual(t, r.humidity, 100.0)
	}
}

func TestRoom_HumidityClamped(t *testing.T) {
	t.Parallel()

	r := newTestRoom(room.SensorCelsius)
	r.humidity = 3

	r.Apply(room.ClimateAdjust("101", room.AxisHumidity, room.ActionLower, 0))
	r.Step()

	require.InDelta(t, 0.0, r.Reading(time.Now()).Humidity, 1e-9)
}

func TestRoom_ApplyIgnoresOtherRooms(t *testing.T) {
	t.Parallel()

	r := newTestRoom(room.SensorCelsius)

	require.False(t, r.Apply(room.ClimateAdjust("102", room.AxisAC, room.ActionRaise, 0)))
	require.False(t, r.Apply(room.Disconnect("101")))
	require.False(t, r.Reading(time.Now()).ACActive)
}

func TestRoom_ReadingInFahrenheit(t *testing.T) {
	t.Parallel()

	r := newTestRoom(room.SensorFahrenheit)
	r.temperature = 20

	reading := r.Reading(time.Date(2024, 5, 10, 12, 0, 0, 500, time.UTC))

	require.Equal(t, room.SensorFahrenheit, reading.SensorKind)
	require.InDelta(t, 68.0, reading.Temperature, 1e-9)
	require.InDelta(t, 20.0, reading.Celsius(), 1e-9)
	require.Equal(t, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC), reading.ObservedAt)
}

func TestRoom_ToggleMotion(t *testing.T) {
	t.Parallel()

	r := newTestRoom(room.SensorCelsius)

	r.ToggleMotion()
	require.True(t, r.Reading(time.Now()).MotionDetected)

	r.ToggleMotion()
	require.False(t, r.Reading(time.Now()).MotionDetected)
}

func TestRound2(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 21.35, round2(21.349), 1e-9)
	require.InDelta(t, -3.13, round2(-3.125), 1e-9)
	require.InDelta(t, 0.0, round2(0), 1e-9)
}

// TestSimulator_PublishesAndFollowsCommands runs the loop on a fake clock.
func TestSimulator_PublishesAndFollowsCommands(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		memory := bus.NewMemory()
		topics := bus.NewTopics("G")
		r := newTestRoom(room.SensorCelsius)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		go func() {
			done <- New(r, memory, topics, time.Second, 3*time.Second).Run(ctx)
		}()

		synctest.Wait()

		require.NoError(t, memory.Publish(ctx, topics.Actuation, actuation(t, "101", message.ControlAC, message.ActionUp)))
		require.NoError(t, memory.Publish(ctx, topics.Actuation, actuation(t, "202", message.ControlHC, message.ActionUp)))
		require.NoError(t, memory.Publish(ctx, topics.Actuation, []byte("not json")))

		time.Sleep(3500 * time.Millisecond)
		synctest.Wait()

		published := memory.Published(topics.RoomData)
		require.Len(t, published, 3)

		reading, err := message.ParseRoomData(published[2].Payload)
		require.NoError(t, err)
		require.Equal(t, room.Key("101"), reading.RoomKey)
		require.Equal(t, room.SensorCelsius, reading.SensorKind)
		require.True(t, reading.ACActive)
		require.False(t, reading.HumidityCtrlActive)

		cancel()
		require.NoError(t, <-done)
	})
}

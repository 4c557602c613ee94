package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/oshokin/room-control/internal/bus"
	"github.com/oshokin/room-control/internal/config"
	"github.com/oshokin/room-control/internal/domain/room"
	"github.com/oshokin/room-control/internal/logger"
)

// serviceName names the logger and the MQTT client.
const serviceName = "room-simulator"

// Options controls the room-simulator process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// RoomNumber identifies the simulated room.
	RoomNumber string
	// SensorKind is 1 for Celsius, 2 for Fahrenheit; anything else publishes rejected readings.
	SensorKind int
	// Interval is the telemetry period.
	Interval time.Duration
	// MotionInterval is the motion sensor toggle period.
	MotionInterval time.Duration
}

var (
	// errRoomNumberRequired is returned when no room is given.
	errRoomNumberRequired = errors.New("room number must be provided")
	// errIntervalRequired is returned for non-positive periods.
	errIntervalRequired = errors.New("intervals must be positive")
)

// Run simulates one room until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	if opts.RoomNumber == "" {
		return errRoomNumberRequired
	}

	if opts.Interval <= 0 || opts.MotionInterval <= 0 {
		return errIntervalRequired
	}

	ctx = logger.WithName(ctx, serviceName)
	ctx = logger.WithKV(ctx, "room_number", opts.RoomNumber)

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logger.Configure(settings.Log.Level, settings.Log.Format)

	client, err := bus.Connect(ctx, bus.OptionsFromConfig(settings.Broker, serviceName))
	if err != nil {
		return fmt.Errorf("connect to bus: %w", err)
	}

	defer client.Close()

	//nolint:gosec // Simulated climate, not security sensitive.
	rnd := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	r := NewRoom(room.Key(opts.RoomNumber), room.SensorKind(opts.SensorKind), rnd)

	logger.InfoKV(ctx, "Room simulator started",
		"group_id", settings.GroupID,
		"interval", opts.Interval,
		"motion_interval", opts.MotionInterval)

	return New(r, client, bus.NewTopics(settings.GroupID), opts.Interval, opts.MotionInterval).Run(ctx)
}

package console

import (
	"context"
	"fmt"

	"github.com/oshokin/room-control/internal/bus"
	"github.com/oshokin/room-control/internal/config"
	"github.com/oshokin/room-control/internal/logger"
)

// serviceName names the logger and the MQTT client.
const serviceName = "alarm-console"

// Options controls the alarm-console process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// Armed is the requested switch value.
	Armed bool
}

// Run publishes the requested alarm switch value and returns.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, serviceName)

	settings, client, err := connect(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	defer client.Close()

	actor, err := DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	return Switch(ctx, client, bus.NewTopics(settings.GroupID).AlarmControl, opts.Armed, actor)
}

// RunWatch follows the alarm events until ctx is canceled.
func RunWatch(ctx context.Context, configPath string) error {
	ctx = logger.WithName(ctx, serviceName)

	settings, client, err := connect(ctx, configPath)
	if err != nil {
		return err
	}

	defer client.Close()

	return Watch(ctx, client, bus.NewTopics(settings.GroupID).AlarmActuation)
}

func connect(ctx context.Context, configPath string) (*config.Config, *bus.Client, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	logger.Configure(settings.Log.Level, settings.Log.Format)

	client, err := bus.Connect(ctx, bus.OptionsFromConfig(settings.Broker, serviceName))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to bus: %w", err)
	}

	return settings, client, nil
}

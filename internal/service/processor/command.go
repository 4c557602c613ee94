package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/oshokin/room-control/internal/api/grpc/relay"
	"github.com/oshokin/room-control/internal/bus"
	"github.com/oshokin/room-control/internal/config"
	"github.com/oshokin/room-control/internal/domain/policy"
	"github.com/oshokin/room-control/internal/domain/room"
	"github.com/oshokin/room-control/internal/logger"
	"github.com/oshokin/room-control/internal/repository/metrics"
	"github.com/oshokin/room-control/internal/repository/state"
	"github.com/oshokin/room-control/internal/service/coordinator"
	"github.com/oshokin/room-control/internal/service/liveness"
	"github.com/oshokin/room-control/internal/version"
)

// serviceName names the logger, the MQTT client and the gRPC user agent.
const serviceName = "room-processor"

// Options controls the room-processor process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// BandsFile overrides the comfort-band file from the settings.
	BandsFile string
	// Workers overrides the number of ingestion shards.
	Workers int
}

// Run connects to the bus, the control central and the metrics sink and
// processes messages until ctx is canceled. Queued messages are drained
// before Run returns.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, serviceName)

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logger.Configure(settings.Log.Level, settings.Log.Format)

	if opts.BandsFile != "" {
		settings.BandsFile = opts.BandsFile
	}

	if opts.Workers > 0 {
		settings.Workers = opts.Workers
	}

	bands, err := loadBands(ctx, settings.BandsFile)
	if err != nil {
		return err
	}

	relayClient, err := relay.Dial(ctx, settings.Relay.Address,
		relay.WithCallTimeout(settings.Relay.Timeout),
		relay.WithRetry(settings.Relay.Attempts, settings.Relay.Backoff),
		relay.WithUserAgent(version.UserAgent(serviceName)))
	if err != nil {
		return fmt.Errorf("create relay client: %w", err)
	}

	defer func() {
		_ = relayClient.Close()
	}()

	sink, err := metrics.New(ctx, settings.Metrics)
	if err != nil {
		return fmt.Errorf("open metrics sink: %w", err)
	}

	defer func() {
		_ = sink.Close()
	}()

	topics := bus.NewTopics(settings.GroupID)

	// Directives wait in the queue so a slow control central never stalls ingestion.
	relayQueue := relay.NewQueue(relayClient, settings.Relay.QueueSize)

	coord, err := coordinator.New(ctx, relayQueue, sink,
		coordinator.WithBands(bands),
		coordinator.WithPricing(room.Pricing{
			UnitCost:          settings.Pricing.UnitCost,
			ACWatts:           settings.Pricing.ACWatts,
			HumidityCtrlWatts: settings.Pricing.HCWatts,
		}),
		coordinator.WithEvaluateRejected(settings.Alarm.EvaluatesRejected()),
		coordinator.WithStateRepository(state.NewFileRepository(settings.Alarm.StateFile)),
		coordinator.WithDisconnectChannel(topics.Actuation))
	if err != nil {
		return fmt.Errorf("initialise coordinator: %w", err)
	}

	client, err := bus.Connect(ctx, bus.OptionsFromConfig(settings.Broker, serviceName))
	if err != nil {
		return fmt.Errorf("connect to bus: %w", err)
	}

	// The relay queue outlives ctx until the dispatcher has drained.
	queueCtx, stopQueue := context.WithCancel(context.WithoutCancel(ctx))

	var queueWG sync.WaitGroup

	queueWG.Go(func() {
		relayQueue.Run(queueCtx)
	})

	// Workers keep their context through shutdown so queued messages still reach the relay.
	dispatcher := NewDispatcher(settings.Workers)
	dispatcher.Start(context.WithoutCancel(ctx))

	if err := NewProcessor(coord, topics, dispatcher).Subscribe(ctx, client); err != nil {
		client.Close()
		dispatcher.Stop()
		stopQueue()
		queueWG.Wait()

		return fmt.Errorf("subscribe: %w", err)
	}

	var wg sync.WaitGroup

	wg.Go(func() {
		liveness.New(coord, settings.Liveness.Window, settings.Liveness.SweepInterval).Run(ctx)
	})

	logger.InfoKV(ctx, "Room processor started",
		"version", version.Short(),
		"group_id", settings.GroupID,
		"workers", settings.Workers,
		"metrics", settings.Metrics.Driver,
		"relay", settings.Relay.Address,
		"relay_queue", settings.Relay.QueueSize)

	<-ctx.Done()

	logger.Info(ctx, "Shutting down room processor")

	client.Close()
	dispatcher.Stop()
	wg.Wait()
	stopQueue()
	queueWG.Wait()

	logger.Info(ctx, "Room processor stopped")

	return nil
}

// loadBands reads the comfort-band file, falling back to the built-in bands when it is missing.
func loadBands(ctx context.Context, path string) (policy.Bands, error) {
	bands, err := config.LoadBands(path)

	switch {
	case err == nil:
		logger.InfoKV(ctx, "Comfort bands loaded", "path", path)

		return bands, nil
	case errors.Is(err, os.ErrNotExist):
		logger.WarnKV(ctx, "Comfort-band file not found, using defaults", "path", path)

		return policy.DefaultBands(), nil
	default:
		return policy.Bands{}, fmt.Errorf("load comfort bands: %w", err)
	}
}

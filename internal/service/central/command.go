package central

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"

	"github.com/oshokin/room-control/internal/api/grpc/relay"
	"github.com/oshokin/room-control/internal/bus"
	"github.com/oshokin/room-control/internal/config"
	"github.com/oshokin/room-control/internal/logger"
	"github.com/oshokin/room-control/internal/version"
)

// serviceName names the logger and the MQTT client.
const serviceName = "control-central"

// Options controls the control-central process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// QueueSize overrides the control message buffer.
	QueueSize int
}

// ErrNoListenAddress indicates missing relay configuration.
var ErrNoListenAddress = errors.New("no listen address configured")

// Run serves the relay and republishes control messages until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, serviceName)

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logger.Configure(settings.Log.Level, settings.Log.Format)

	listenAddress, err := resolveListenAddress(settings.Relay.Address, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	client, err := bus.Connect(ctx, bus.OptionsFromConfig(settings.Broker, serviceName))
	if err != nil {
		return fmt.Errorf("connect to bus: %w", err)
	}

	defer client.Close()

	topics := bus.NewTopics(settings.GroupID)
	svc := New(client, topics.Actuation, opts.QueueSize)

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	relay.NewServer(svc).Register(grpcServer)

	// The worker outlives ctx until the server has stopped accepting messages.
	workerCtx, stopWorker := context.WithCancel(context.WithoutCancel(ctx))

	var wg sync.WaitGroup

	wg.Go(func() {
		svc.Run(workerCtx)
	})

	logger.InfoKV(ctx, "Control central listening",
		"version", version.Short(),
		"group_id", settings.GroupID,
		"listen_address", listenAddress)

	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		stopWorker()
		wg.Wait()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		stopWorker()

		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "Control central stopped")

	return nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise binds every interface
// on the port of the configured relay address.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoListenAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid relay address format %q: %w", configAddr, err)
	}

	return ":" + port, nil
}

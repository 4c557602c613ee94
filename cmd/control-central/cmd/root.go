package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/room-control/internal/config"
	"github.com/oshokin/room-control/internal/service/central"
	"github.com/oshokin/room-control/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// queueSize bounds the number of control messages waiting to be published.
	queueSize int

	// rootCmd represents the base command for running the control central.
	rootCmd = &cobra.Command{
		Use:   "control-central [listen-address]",
		Short: "Receive relayed control messages and publish actuator commands.",
		Long: `Starts the gRPC command relay endpoint used by the room processor.

Each accepted control message is logged and republished as an actuator command on
the response topic it names, or on the actuation topic when none is given.
Only the port from the relay address in the configuration file is used for listening.
Listen address can be provided as argument to override config (e.g., :9090).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return central.Run(ctx, &central.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				QueueSize:     queueSize,
			})
		},
	}
)

// Execute runs the control-central CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().IntVarP(&queueSize, "queue-size", "q", central.DefaultQueueSize, "control message buffer size")
}

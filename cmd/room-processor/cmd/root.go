package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/room-control/internal/config"
	"github.com/oshokin/room-control/internal/service/processor"
	"github.com/oshokin/room-control/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// bandsFile overrides the comfort-band file from the configuration.
	bandsFile string
	// workers overrides the number of ingestion shards.
	workers int

	// rootCmd represents the base command for running the room processor.
	rootCmd = &cobra.Command{
		Use:   "room-processor",
		Short: "Track room state and forward control decisions.",
		Long: `Subscribes to room telemetry, alarm commands and actuator feedback on the bus.

Every reading updates the room's record, is checked against the comfort bands and
may produce AC, humidity or alarm directives that are relayed to the control central.
Rooms that stop reporting are marked disconnected after the liveness window.
Metrics are written to the sink selected in the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return processor.Run(ctx, &processor.Options{
				ConfigPath: configPath,
				BandsFile:  bandsFile,
				Workers:    workers,
			})
		},
	}
)

// Execute runs the room-processor CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&bandsFile, "bands", "b", "", "path to comfort-band file, overrides configuration")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of ingestion shards, overrides configuration")
}
